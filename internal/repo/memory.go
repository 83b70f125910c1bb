package repo

import (
	"context"
	"sync"

	"github.com/grubdash-service/internal/model"
)

// memoryStore keeps records in insertion order. Records are copied on the
// way in and out so callers never alias stored state.
type memoryStore[T any] struct {
	mu    sync.RWMutex
	items []T
	id    func(T) string
	clone func(T) T
}

func (s *memoryStore[T]) create(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, s.clone(item))
}

func (s *memoryStore[T]) get(id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.clone(s.items[i]), nil
	}
	var zero T
	return zero, ErrNotFound
}

func (s *memoryStore[T]) all() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, s.clone(item))
	}
	return out
}

func (s *memoryStore[T]) update(item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(s.id(item))
	if i < 0 {
		return ErrNotFound
	}
	s.items[i] = s.clone(item)
	return nil
}

func (s *memoryStore[T]) remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

// indexOf must be called with mu held.
func (s *memoryStore[T]) indexOf(id string) int {
	for i, item := range s.items {
		if s.id(item) == id {
			return i
		}
	}
	return -1
}

// MemoryDishRepository is the process-local dish store.
type MemoryDishRepository struct {
	store memoryStore[model.Dish]
}

func NewMemoryDishRepository(seed ...model.Dish) *MemoryDishRepository {
	r := &MemoryDishRepository{store: memoryStore[model.Dish]{
		id:    func(d model.Dish) string { return d.ID },
		clone: func(d model.Dish) model.Dish { return d },
	}}
	for _, d := range seed {
		r.store.create(d)
	}
	return r
}

func (r *MemoryDishRepository) Create(ctx context.Context, dish model.Dish) error {
	r.store.create(dish)
	return nil
}

func (r *MemoryDishRepository) GetByID(ctx context.Context, id string) (model.Dish, error) {
	return r.store.get(id)
}

func (r *MemoryDishRepository) GetAll(ctx context.Context) ([]model.Dish, error) {
	return r.store.all(), nil
}

func (r *MemoryDishRepository) Update(ctx context.Context, dish model.Dish) error {
	return r.store.update(dish)
}

// MemoryOrderRepository is the process-local order store.
type MemoryOrderRepository struct {
	store memoryStore[model.Order]
}

func NewMemoryOrderRepository(seed ...model.Order) *MemoryOrderRepository {
	r := &MemoryOrderRepository{store: memoryStore[model.Order]{
		id:    func(o model.Order) string { return o.ID },
		clone: model.Order.Clone,
	}}
	for _, o := range seed {
		r.store.create(o)
	}
	return r
}

func (r *MemoryOrderRepository) Create(ctx context.Context, order model.Order) error {
	r.store.create(order)
	return nil
}

func (r *MemoryOrderRepository) GetByID(ctx context.Context, id string) (model.Order, error) {
	return r.store.get(id)
}

func (r *MemoryOrderRepository) GetAll(ctx context.Context) ([]model.Order, error) {
	return r.store.all(), nil
}

func (r *MemoryOrderRepository) Update(ctx context.Context, order model.Order) error {
	return r.store.update(order)
}

func (r *MemoryOrderRepository) Delete(ctx context.Context, id string) error {
	return r.store.remove(id)
}
