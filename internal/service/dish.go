package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/grubdash-service/internal/events"
	"github.com/grubdash-service/internal/logger"
	"github.com/grubdash-service/internal/model"
	"github.com/grubdash-service/internal/repo"
	"go.uber.org/zap"
)

// DishInput is the client payload for creating or replacing a dish. Fields
// stay raw until the validation chain has accepted them.
type DishInput struct {
	ID          json.RawMessage `json:"id"`
	Name        json.RawMessage `json:"name"`
	Description json.RawMessage `json:"description"`
	Price       json.RawMessage `json:"price"`
	ImageURL    json.RawMessage `json:"image_url"`
}

func hasName(in DishInput) error {
	if !nonBlank(in.Name) {
		return NewValidationError("Dish must include a name")
	}
	return nil
}

func hasDescription(in DishInput) error {
	if !nonBlank(in.Description) {
		return NewValidationError("Dish must include a description")
	}
	return nil
}

func hasPrice(in DishInput) error {
	if absent(in.Price) {
		return NewValidationError("Dish must include a price")
	}
	if _, ok := positiveInt(in.Price); !ok {
		return NewValidationError("Dish must have a price that is an integer greater than 0")
	}
	return nil
}

func hasImage(in DishInput) error {
	if !nonBlank(in.ImageURL) {
		return NewValidationError("Dish must include a image_url")
	}
	return nil
}

var dishChain = []Step[DishInput]{hasName, hasDescription, hasPrice, hasImage}

// fields copies the validated payload onto d, leaving d.ID alone.
func (in DishInput) fields(d *model.Dish) {
	d.Name, _ = text(in.Name)
	d.Description, _ = text(in.Description)
	d.Price, _ = positiveInt(in.Price)
	d.ImageURL, _ = text(in.ImageURL)
}

type DishService struct {
	repo      repo.DishRepository
	publisher events.Publisher
	mu        sync.Mutex
}

func NewDishService(repo repo.DishRepository, publisher events.Publisher) *DishService {
	return &DishService{repo: repo, publisher: publisher}
}

func (s *DishService) ListDishes(ctx context.Context) ([]model.Dish, error) {
	return s.repo.GetAll(ctx)
}

func (s *DishService) CreateDish(ctx context.Context, in DishInput) (model.Dish, error) {
	log := logger.FromContext(ctx)

	if err := runChain(in, dishChain...); err != nil {
		return model.Dish{}, err
	}

	dish := model.Dish{ID: NextID()}
	in.fields(&dish)

	if err := s.repo.Create(ctx, dish); err != nil {
		log.Error("repo: failed to create dish", zap.Error(err))
		return model.Dish{}, err
	}

	log.Info("dish created", zap.String("dish_id", dish.ID))
	publish(ctx, s.publisher, events.DishCreatedChannel, dish.ID, dish)
	return dish, nil
}

// GetDish is the dish existence guard.
func (s *DishService) GetDish(ctx context.Context, id string) (model.Dish, error) {
	dish, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Dish{}, NewNotFoundError(fmt.Sprintf("Dish does not exist: %s", id))
	}
	return dish, err
}

func (s *DishService) UpdateDish(ctx context.Context, id string, in DishInput) (model.Dish, error) {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	dish, err := s.GetDish(ctx, id)
	if err != nil {
		return model.Dish{}, err
	}

	if err := runChain(in, dishChain...); err != nil {
		return model.Dish{}, err
	}

	if bodyID := literal(in.ID); !falsy(in.ID) && bodyID != dish.ID {
		return model.Dish{}, NewValidationError(fmt.Sprintf(
			"Dish id does not match route id. Dish: %s, Route: %s", bodyID, dish.ID))
	}

	in.fields(&dish)

	if err := s.repo.Update(ctx, dish); err != nil {
		log.Error("repo: failed to update dish", zap.String("dish_id", id), zap.Error(err))
		return model.Dish{}, err
	}

	log.Info("dish updated", zap.String("dish_id", dish.ID))
	publish(ctx, s.publisher, events.DishUpdatedChannel, dish.ID, dish)
	return dish, nil
}

func publish(ctx context.Context, publisher events.Publisher, channel, id string, record any) {
	if publisher == nil {
		return
	}

	log := logger.FromContext(ctx)
	if err := publisher.Publish(ctx, channel, record); err != nil {
		log.Error("failed to publish event", zap.String("channel", channel), zap.Error(err))
		return
	}
	log.Debug("event published", zap.String("channel", channel), zap.String("record_id", id))
}
