package messages

import (
	"context"
	"slices"
	"sync"

	"gorm.io/gorm"

	"talenttrack-backend/models"
)

type Repository interface {
	Create(ctx context.Context, m *Message) error
	FindByID(ctx context.Context, id string) (*Message, error)
	List(ctx context.Context) ([]Message, error)
	ListByReceiver(ctx context.Context, receiverID string) ([]Message, error)
	Save(ctx context.Context, m *Message) error
	Delete(ctx context.Context, id string) error
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, m *Message) error {
	return models.FromGorm(r.db.WithContext(ctx).Create(m).Error)
}

func (r *GormRepository) FindByID(ctx context.Context, id string) (*Message, error) {
	var m Message
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, models.FromGorm(err)
	}
	return &m, nil
}

func (r *GormRepository) List(ctx context.Context) ([]Message, error) {
	var list []Message
	if err := r.db.WithContext(ctx).Order("timestamp DESC").Find(&list).Error; err != nil {
		return nil, models.FromGorm(err)
	}
	return list, nil
}

func (r *GormRepository) ListByReceiver(ctx context.Context, receiverID string) ([]Message, error) {
	var list []Message
	err := r.db.WithContext(ctx).
		Where("receiver_id = ?", receiverID).
		Order("timestamp DESC").
		Find(&list).Error
	if err != nil {
		return nil, models.FromGorm(err)
	}
	return list, nil
}

func (r *GormRepository) Save(ctx context.Context, m *Message) error {
	return models.FromGorm(r.db.WithContext(ctx).Save(m).Error)
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&Message{}, "id = ?", id)
	if res.Error != nil {
		return models.FromGorm(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// MemoryRepository keeps messages in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]Message
	order []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]Message)}
}

func (r *MemoryRepository) Create(_ context.Context, m *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[m.ID]; ok {
		return models.ErrDuplicate
	}
	r.byID[m.ID] = *m
	r.order = append(r.order, m.ID)
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &m, nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]Message, error) {
	return r.filter(func(Message) bool { return true }), nil
}

func (r *MemoryRepository) ListByReceiver(_ context.Context, receiverID string) ([]Message, error) {
	return r.filter(func(m Message) bool { return m.ReceiverID == receiverID }), nil
}

// filter walks newest first.
func (r *MemoryRepository) filter(keep func(Message) bool) []Message {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]Message, 0)
	for i := len(r.order) - 1; i >= 0; i-- {
		if m := r.byID[r.order[i]]; keep(m) {
			list = append(list, m)
		}
	}
	return list
}

func (r *MemoryRepository) Save(_ context.Context, m *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[m.ID]; !ok {
		return models.ErrNotFound
	}
	r.byID[m.ID] = *m
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
