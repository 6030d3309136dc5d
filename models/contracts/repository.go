package contracts

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"talenttrack-backend/models"
)

type Repository interface {
	// Create returns models.ErrDuplicate when (JobID, UserID) already has a contract.
	Create(ctx context.Context, c *Contract) error
	FindByID(ctx context.Context, id string) (*Contract, error)
	List(ctx context.Context) ([]Contract, error)
	// ListVisibleTo skips contracts whose DeletedFor contains viewerID.
	ListVisibleTo(ctx context.Context, viewerID string) ([]Contract, error)
	// UpdateStatus moves the contract from → to only if it is still in from.
	// It returns models.ErrStale when the status has changed since it was read.
	UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) error
	// SaveDetails writes JobName, ContactEmail and UpdatedAt. Status and
	// DeletedFor have their own single-statement writes.
	SaveDetails(ctx context.Context, c *Contract) error
	Delete(ctx context.Context, id string) error
	// HideFor adds viewerIDs to DeletedFor in one statement, skipping ids
	// already there.
	HideFor(ctx context.Context, id string, viewerIDs ...string) error
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, c *Contract) error {
	if c.DeletedFor == nil {
		c.DeletedFor = []string{}
	}
	return models.FromGorm(r.db.WithContext(ctx).Create(c).Error)
}

func (r *GormRepository) FindByID(ctx context.Context, id string) (*Contract, error) {
	var c Contract
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, models.FromGorm(err)
	}
	return &c, nil
}

func (r *GormRepository) List(ctx context.Context) ([]Contract, error) {
	var list []Contract
	if err := r.db.WithContext(ctx).Order("updated_at DESC").Find(&list).Error; err != nil {
		return nil, models.FromGorm(err)
	}
	return list, nil
}

func (r *GormRepository) ListVisibleTo(ctx context.Context, viewerID string) ([]Contract, error) {
	var list []Contract
	err := r.db.WithContext(ctx).
		Where("NOT (? = ANY(COALESCE(deleted_for, '{}')))", viewerID).
		Order("updated_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, models.FromGorm(err)
	}
	return list, nil
}

func (r *GormRepository) UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&Contract{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": at})
	if res.Error != nil {
		return models.FromGorm(res.Error)
	}
	if res.RowsAffected == 0 {
		return r.missingOrStale(ctx, id)
	}
	return nil
}

func (r *GormRepository) SaveDetails(ctx context.Context, c *Contract) error {
	res := r.db.WithContext(ctx).Model(&Contract{}).Where("id = ?", c.ID).
		Updates(map[string]any{
			"job_name":      c.JobName,
			"contact_email": c.ContactEmail,
			"updated_at":    c.UpdatedAt,
		})
	if res.Error != nil {
		return models.FromGorm(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *GormRepository) missingOrStale(ctx context.Context, id string) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Contract{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return models.FromGorm(err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return models.ErrStale
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&Contract{}, "id = ?", id)
	if res.Error != nil {
		return models.FromGorm(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *GormRepository) HideFor(ctx context.Context, id string, viewerIDs ...string) error {
	ids := uniqueIDs(viewerIDs)
	if len(ids) == 0 {
		_, err := r.FindByID(ctx, id)
		return err
	}
	res := r.db.WithContext(ctx).Model(&Contract{}).Where("id = ?", id).
		Update("deleted_for", gorm.Expr(
			"deleted_for || ARRAY(SELECT v FROM unnest(?::text[]) WITH ORDINALITY AS t(v, n) WHERE NOT (v = ANY(deleted_for)) ORDER BY n)",
			pq.StringArray(ids),
		))
	if res.Error != nil {
		return models.FromGorm(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// uniqueIDs drops empty and repeated ids, keeping first-seen order.
func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// MemoryRepository keeps contracts in process memory and enforces the
// (JobID, UserID) uniqueness the gorm schema gets from its unique index.
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]Contract
	order []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]Contract)}
}

func (r *MemoryRepository) Create(_ context.Context, c *Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[c.ID]; ok {
		return models.ErrDuplicate
	}
	for _, existing := range r.byID {
		if existing.JobID == c.JobID && existing.UserID == c.UserID {
			return models.ErrDuplicate
		}
	}
	if c.DeletedFor == nil {
		c.DeletedFor = []string{}
	}
	r.byID[c.ID] = clone(*c)
	r.order = append(r.order, c.ID)
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	c = clone(c)
	return &c, nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]Contract, error) {
	return r.ListVisibleTo(ctx, "")
}

func (r *MemoryRepository) ListVisibleTo(_ context.Context, viewerID string) ([]Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]Contract, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		c := r.byID[r.order[i]]
		if viewerID != "" && c.IsDeletedFor(viewerID) {
			continue
		}
		list = append(list, clone(c))
	}
	return list, nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, id string, from, to Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return models.ErrNotFound
	}
	if c.Status != from {
		return models.ErrStale
	}
	c = clone(c)
	c.Status = to
	c.UpdatedAt = at
	r.byID[id] = c
	return nil
}

func (r *MemoryRepository) SaveDetails(_ context.Context, in *Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[in.ID]
	if !ok {
		return models.ErrNotFound
	}
	c = clone(c)
	c.JobName = in.JobName
	c.ContactEmail = in.ContactEmail
	c.UpdatedAt = in.UpdatedAt
	r.byID[in.ID] = c
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

func (r *MemoryRepository) HideFor(_ context.Context, id string, viewerIDs ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return models.ErrNotFound
	}
	c = clone(c)
	c.MergeDeletedFor(viewerIDs...)
	r.byID[id] = c
	return nil
}

func clone(c Contract) Contract {
	c.DeletedFor = slices.Clone(c.DeletedFor)
	return c
}
