package service

import (
	"bytes"
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

const msgStatusRequired = "Order must have a status of pending, preparing, out-for-delivery, delivered"

type OrderInput struct {
	ID           json.RawMessage `json:"id"`
	DeliverTo    json.RawMessage `json:"deliverTo"`
	MobileNumber json.RawMessage `json:"mobileNumber"`
	Status       json.RawMessage `json:"status"`
	Dishes       json.RawMessage `json:"dishes"`
}

func hasDeliverTo(in OrderInput) error {
	if !nonBlank(in.DeliverTo) {
		return NewValidationError("Order must include a deliverTo")
	}
	return nil
}

func hasMobileNumber(in OrderInput) error {
	if !nonBlank(in.MobileNumber) {
		return NewValidationError("Order must include a mobileNumber")
	}
	return nil
}

func hasDishes(in OrderInput) error {
	if absent(in.Dishes) {
		return NewValidationError("Order must include a dish")
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(in.Dishes, &entries); err != nil || len(entries) == 0 {
		return NewValidationError("Order must include at least one dish")
	}
	return nil
}

func hasDishQuantity(in OrderInput) error {
	var entries []json.RawMessage
	if err := json.Unmarshal(in.Dishes, &entries); err != nil {
		return nil
	}
	for i, raw := range entries {
		var entry struct {
			Quantity json.RawMessage `json:"quantity"`
		}
		err := json.Unmarshal(raw, &entry)
		if _, ok := positiveInt(entry.Quantity); err != nil || !ok {
			return NewValidationError(fmt.Sprintf("Dish %d must have a quantity that is an integer greater than 0", i))
		}
	}
	return nil
}

// hasKnownStatus lets a new order omit its status but never carry an
// unknown one.
func hasKnownStatus(in OrderInput) error {
	if status := literal(in.Status); status != "" && !model.Status(status).Valid() {
		return NewValidationError(msgStatusRequired)
	}
	return nil
}

// hasStatus guards status transitions for an existing order. Any of the
// enumerated statuses is a legal target unless the order is delivered.
func hasStatus(existing model.Order) Step[OrderInput] {
	return func(in OrderInput) error {
		status := literal(in.Status)
		if status == "" {
			return NewValidationError(msgStatusRequired)
		}
		if existing.Status.Terminal() {
			return NewValidationError("A delivered order cannot be changed")
		}
		if !model.Status(status).Valid() {
			return NewValidationError("Invalid status")
		}
		return nil
	}
}

var orderChain = []Step[OrderInput]{hasDeliverTo, hasMobileNumber, hasDishes, hasDishQuantity}

// dishes decodes the validated dish entries as sent. Numbers keep their
// JSON form except quantity, which is stored as an int.
func (in OrderInput) dishes() ([]model.OrderDish, error) {
	dec := json.NewDecoder(bytes.NewReader(in.Dishes))
	dec.UseNumber()

	var entries []model.OrderDish
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode order dishes: %w", err)
	}
	for _, d := range entries {
		d["quantity"] = d.Quantity()
	}
	return entries, nil
}

// fields copies the validated payload onto o, leaving o.ID alone.
func (in OrderInput) fields(o *model.Order) error {
	dishes, err := in.dishes()
	if err != nil {
		return err
	}
	o.DeliverTo, _ = text(in.DeliverTo)
	o.MobileNumber, _ = text(in.MobileNumber)
	o.Dishes = dishes
	o.Status = model.Status(literal(in.Status))
	return nil
}

type OrderService struct {
	repo      repo.OrderRepository
	publisher events.Publisher
	mu        sync.Mutex
}

func NewOrderService(repo repo.OrderRepository, publisher events.Publisher) *OrderService {
	return &OrderService{repo: repo, publisher: publisher}
}

func (s *OrderService) ListOrders(ctx context.Context) ([]model.Order, error) {
	return s.repo.GetAll(ctx)
}

func (s *OrderService) CreateOrder(ctx context.Context, in OrderInput) (model.Order, error) {
	log := logger.FromContext(ctx)

	if err := runChain(in, append(orderChain, hasKnownStatus)...); err != nil {
		return model.Order{}, err
	}

	order := model.Order{ID: NextID()}
	if err := in.fields(&order); err != nil {
		return model.Order{}, err
	}
	if order.Status == "" {
		order.Status = model.StatusPending
	}

	if err := s.repo.Create(ctx, order); err != nil {
		log.Error("repo: failed to create order", zap.Error(err))
		return model.Order{}, err
	}

	log.Info("order created", zap.String("order_id", order.ID), zap.String("status", string(order.Status)))
	publish(ctx, s.publisher, events.OrderCreatedChannel, order.ID, order)
	return order, nil
}

// GetOrder is the order existence guard.
func (s *OrderService) GetOrder(ctx context.Context, id string) (model.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NewNotFoundError(fmt.Sprintf("Order does not exist: %s", id))
	}
	return order, err
}

func (s *OrderService) UpdateOrder(ctx context.Context, id string, in OrderInput) (model.Order, error) {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return model.Order{}, err
	}

	if err := runChain(in, append(orderChain, hasStatus(order))...); err != nil {
		return model.Order{}, err
	}

	if bodyID := literal(in.ID); !falsy(in.ID) && bodyID != id {
		return model.Order{}, NewValidationError(fmt.Sprintf(
			"Order id does not match route id. Order: %s, Route: %s", bodyID, id))
	}

	previous := order.Status
	if err := in.fields(&order); err != nil {
		return model.Order{}, err
	}

	if err := s.repo.Update(ctx, order); err != nil {
		log.Error("repo: failed to update order", zap.String("order_id", id), zap.Error(err))
		return model.Order{}, err
	}

	log.Info("order updated",
		zap.String("order_id", order.ID),
		zap.String("from_status", string(previous)),
		zap.String("status", string(order.Status)),
	)
	publish(ctx, s.publisher, events.OrderUpdatedChannel, order.ID, order)
	return order, nil
}

// DeleteOrder removes a pending order.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return err
	}

	if order.Status != model.StatusPending {
		return NewValidationError("An order cannot be deleted unless it is pending")
	}

	if err := s.repo.Delete(ctx, order.ID); err != nil {
		log.Error("repo: failed to delete order", zap.String("order_id", id), zap.Error(err))
		return err
	}

	log.Info("order deleted", zap.String("order_id", order.ID))
	publish(ctx, s.publisher, events.OrderDeletedChannel, order.ID, order)
	return nil
}
