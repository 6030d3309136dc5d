package jobs

import (
	"context"
	"slices"
	"sync"

	"gorm.io/gorm"

	"talenttrack-backend/models"
)

type Repository interface {
	Create(ctx context.Context, j *Job) error
	FindByID(ctx context.Context, id string) (*Job, error)
	List(ctx context.Context) ([]Job, error)
	Save(ctx context.Context, j *Job) error
	Delete(ctx context.Context, id string) error
	// AppendApplicant adds userID to the job's applicants in one statement, skipping duplicates.
	AppendApplicant(ctx context.Context, jobID, userID string) error
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, j *Job) error {
	if j.Applicants == nil {
		j.Applicants = []string{}
	}
	return models.FromGorm(r.db.WithContext(ctx).Create(j).Error)
}

func (r *GormRepository) FindByID(ctx context.Context, id string) (*Job, error) {
	var j Job
	if err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		return nil, models.FromGorm(err)
	}
	return &j, nil
}

func (r *GormRepository) List(ctx context.Context) ([]Job, error) {
	var list []Job
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, models.FromGorm(err)
	}
	return list, nil
}

func (r *GormRepository) Save(ctx context.Context, j *Job) error {
	return models.FromGorm(r.db.WithContext(ctx).Save(j).Error)
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&Job{}, "id = ?", id)
	if res.Error != nil {
		return models.FromGorm(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *GormRepository) AppendApplicant(ctx context.Context, jobID, userID string) error {
	res := r.db.WithContext(ctx).Model(&Job{}).Where("id = ?", jobID).
		Update("applicants", gorm.Expr(
			"CASE WHEN ? = ANY(applicants) THEN applicants ELSE array_append(applicants, ?) END",
			userID, userID,
		))
	if res.Error != nil {
		return models.FromGorm(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// MemoryRepository keeps jobs in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]Job
	order []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]Job)}
}

func (r *MemoryRepository) Create(_ context.Context, j *Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[j.ID]; ok {
		return models.ErrDuplicate
	}
	if j.Applicants == nil {
		j.Applicants = []string{}
	}
	r.byID[j.ID] = clone(*j)
	r.order = append(r.order, j.ID)
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	j = clone(j)
	return &j, nil
}

// List returns newest first, like the gorm implementation.
func (r *MemoryRepository) List(_ context.Context) ([]Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]Job, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		list = append(list, clone(r.byID[r.order[i]]))
	}
	return list, nil
}

func (r *MemoryRepository) Save(_ context.Context, j *Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[j.ID]; !ok {
		return models.ErrNotFound
	}
	r.byID[j.ID] = clone(*j)
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.byID, id)
	r.order = slices.DeleteFunc(r.order, func(v string) bool { return v == id })
	return nil
}

func (r *MemoryRepository) AppendApplicant(_ context.Context, jobID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.byID[jobID]
	if !ok {
		return models.ErrNotFound
	}
	if j.HasApplicant(userID) {
		return nil
	}
	j.Applicants = append(slices.Clone(j.Applicants), userID)
	r.byID[jobID] = j
	return nil
}

func clone(j Job) Job {
	j.Skills = slices.Clone(j.Skills)
	j.Benefits = slices.Clone(j.Benefits)
	j.Applicants = slices.Clone(j.Applicants)
	return j
}
