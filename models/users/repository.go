package users

import (
	"context"
	"slices"
	"sync"

	"gorm.io/gorm"

	"talenttrack-backend/models"
)

// Repository persists users. Implementations return models.ErrNotFound and
// models.ErrDuplicate.
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Save(ctx context.Context, u *User) error
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, u *User) error {
	return models.FromGorm(r.db.WithContext(ctx).Create(u).Error)
}

func (r *GormRepository) FindByID(ctx context.Context, id string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, models.FromGorm(err)
	}
	return &u, nil
}

func (r *GormRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, models.FromGorm(err)
	}
	return &u, nil
}

func (r *GormRepository) List(ctx context.Context) ([]User, error) {
	var list []User
	if err := r.db.WithContext(ctx).Order("created_at").Find(&list).Error; err != nil {
		return nil, models.FromGorm(err)
	}
	return list, nil
}

func (r *GormRepository) Save(ctx context.Context, u *User) error {
	return models.FromGorm(r.db.WithContext(ctx).Save(u).Error)
}

// MemoryRepository keeps users in process memory. Used with DB_DRIVER=memory and in tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]User
	order []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]User)}
}

func (r *MemoryRepository) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[u.ID]; ok {
		return models.ErrDuplicate
	}
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return models.ErrDuplicate
		}
	}
	r.byID[u.ID] = clone(*u)
	r.order = append(r.order, u.ID)
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	u = clone(u)
	return &u, nil
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byID {
		if u.Email == email {
			u = clone(u)
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *MemoryRepository) List(_ context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]User, 0, len(r.order))
	for _, id := range r.order {
		list = append(list, clone(r.byID[id]))
	}
	return list, nil
}

func (r *MemoryRepository) Save(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[u.ID]; !ok {
		return models.ErrNotFound
	}
	for id, existing := range r.byID {
		if id != u.ID && existing.Email == u.Email {
			return models.ErrDuplicate
		}
	}
	r.byID[u.ID] = clone(*u)
	return nil
}

func clone(u User) User {
	u.Skills = slices.Clone(u.Skills)
	u.Experience = slices.Clone(u.Experience)
	u.Ratings = slices.Clone(u.Ratings)
	return u
}
