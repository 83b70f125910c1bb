package repo

import (
	"context"
	"errors"

	"github.com/grubdash-service/internal/model"
)

// ErrNotFound is returned when no record matches the requested ID.
var ErrNotFound = errors.New("record not found")

type DishRepository interface {
	Create(ctx context.Context, dish model.Dish) error
	GetByID(ctx context.Context, id string) (model.Dish, error)
	GetAll(ctx context.Context) ([]model.Dish, error)
	Update(ctx context.Context, dish model.Dish) error
}

type OrderRepository interface {
	Create(ctx context.Context, order model.Order) error
	GetByID(ctx context.Context, id string) (model.Order, error)
	GetAll(ctx context.Context) ([]model.Order, error)
	Update(ctx context.Context, order model.Order) error
	Delete(ctx context.Context, id string) error
}
