package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"testing"

	"github.com/grubdash-service/internal/model"
	"github.com/grubdash-service/internal/repo"
)

func orderInput(t testing.TB, body string) OrderInput {
	t.Helper()
	var in OrderInput
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		t.Fatalf("bad test payload %s: %v", body, err)
	}
	return in
}

func testOrder(id string, status model.Status) model.Order {
	return model.Order{
		ID:           id,
		DeliverTo:    "1 Main St",
		MobileNumber: "555-0100",
		Status:       status,
		Dishes:       []model.OrderDish{{"id": "d1", "quantity": 1}},
	}
}

func updateBody(status string) string {
	return fmt.Sprintf(`{"deliverTo":"2 Side St","mobileNumber":"555-0199","status":%q,"dishes":[{"id":"d2","quantity":3}]}`, status)
}

const validOrder = `{"deliverTo":"1 Main St","mobileNumber":"555-0100","dishes":[{"id":"d1","name":"Taco","price":3,"quantity":2}]}`

func TestCreateOrder(t *testing.T) {
	pub := &mockPublisher{}
	svc := NewOrderService(repo.NewMemoryOrderRepository(), pub)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, orderInput(t, validOrder))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if order.ID == "" {
		t.Error("expected order ID to be set")
	}
	if order.Status != model.StatusPending {
		t.Errorf("expected status pending, got %s", order.Status)
	}
	wantDishes := []model.OrderDish{{"id": "d1", "name": "Taco", "price": json.Number("3"), "quantity": 2}}
	if !reflect.DeepEqual(order.Dishes, wantDishes) {
		t.Errorf("expected dishes %+v, got %+v", wantDishes, order.Dishes)
	}

	got, err := svc.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, order) {
		t.Errorf("read after create: expected %+v, got %+v", order, got)
	}

	if len(pub.channels) != 1 || pub.channels[0] != "order.created" {
		t.Errorf("expected one order.created event, got %v", pub.channels)
	}
}

func TestCreateOrderKeepsGivenStatus(t *testing.T) {
	svc := NewOrderService(repo.NewMemoryOrderRepository(), nil)

	body := `{"deliverTo":"a","mobileNumber":"b","status":"preparing","dishes":[{"quantity":1}]}`
	order, err := svc.CreateOrder(context.Background(), orderInput(t, body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != model.StatusPreparing {
		t.Errorf("expected status preparing, got %s", order.Status)
	}
}

func TestCreateOrderKeepsExisting(t *testing.T) {
	existing := testOrder("seed", model.StatusPreparing)
	svc := NewOrderService(repo.NewMemoryOrderRepository(existing), nil)
	ctx := context.Background()

	if _, err := svc.CreateOrder(ctx, orderInput(t, validOrder)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	orders, _ := svc.ListOrders(ctx)
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if !reflect.DeepEqual(orders[0], existing) {
		t.Errorf("existing order changed: %+v", orders[0])
	}
}

func TestCreateOrderValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"empty payload", `{}`, "Order must include a deliverTo"},
		{"blank deliverTo", `{"deliverTo":" ","mobileNumber":"b","dishes":[{"quantity":1}]}`, "Order must include a deliverTo"},
		{"missing mobileNumber", `{"deliverTo":"a","dishes":[{"quantity":1}]}`, "Order must include a mobileNumber"},
		{"missing dishes", `{"deliverTo":"a","mobileNumber":"b"}`, "Order must include a dish"},
		{"null dishes", `{"deliverTo":"a","mobileNumber":"b","dishes":null}`, "Order must include a dish"},
		{"dishes not an array", `{"deliverTo":"a","mobileNumber":"b","dishes":"taco"}`, "Order must include at least one dish"},
		{"empty dishes", `{"deliverTo":"a","mobileNumber":"b","dishes":[]}`, "Order must include at least one dish"},
		{"missing quantity", `{"deliverTo":"a","mobileNumber":"b","dishes":[{"quantity":1},{"id":"x"}]}`, "Dish 1 must have a quantity that is an integer greater than 0"},
		{"zero quantity", `{"deliverTo":"a","mobileNumber":"b","dishes":[{"quantity":1},{"quantity":2},{"quantity":0}]}`, "Dish 2 must have a quantity that is an integer greater than 0"},
		{"string quantity", `{"deliverTo":"a","mobileNumber":"b","dishes":[{"quantity":"2"}]}`, "Dish 0 must have a quantity that is an integer greater than 0"},
		{"fractional quantity", `{"deliverTo":"a","mobileNumber":"b","dishes":[{"quantity":1.5}]}`, "Dish 0 must have a quantity that is an integer greater than 0"},
		{"first bad index wins", `{"deliverTo":"a","mobileNumber":"b","dishes":[{"quantity":1},{"quantity":-1},{}]}`, "Dish 1 must have a quantity that is an integer greater than 0"},
		{"entry not an object", `{"deliverTo":"a","mobileNumber":"b","dishes":[3]}`, "Dish 0 must have a quantity that is an integer greater than 0"},
		{"unknown status", `{"deliverTo":"a","mobileNumber":"b","status":"lost","dishes":[{"quantity":1}]}`, msgStatusRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewOrderService(repo.NewMemoryOrderRepository(), nil)

			_, err := svc.CreateOrder(context.Background(), orderInput(t, tt.body))
			requireError(t, err, http.StatusBadRequest, tt.message)

			orders, _ := svc.ListOrders(context.Background())
			if len(orders) != 0 {
				t.Errorf("expected no order stored, got %d", len(orders))
			}
		})
	}
}

func TestCreateOrderStoresDishesAsSent(t *testing.T) {
	svc := NewOrderService(repo.NewMemoryOrderRepository(), nil)
	ctx := context.Background()

	body := `{"deliverTo":"a","mobileNumber":"b","dishes":[` +
		`{"id":12,"quantity":1},` +
		`{"id":"d1","price":"3","quantity":2.0},` +
		`{"id":"d2","price":1.5,"note":"extra","tags":["hot"],"quantity":1}]}`
	order, err := svc.CreateOrder(ctx, orderInput(t, body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := svc.GetOrder(ctx, order.ID)
	got, err := json.Marshal(stored.Dishes)
	if err != nil {
		t.Fatalf("marshal dishes: %v", err)
	}
	want := `[{"id":12,"quantity":1},` +
		`{"id":"d1","price":"3","quantity":2},` +
		`{"id":"d2","note":"extra","price":1.5,"quantity":1,"tags":["hot"]}]`
	if string(got) != want {
		t.Errorf("expected dishes %s, got %s", want, got)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	svc := NewOrderService(repo.NewMemoryOrderRepository(), nil)

	_, err := svc.GetOrder(context.Background(), "nope")
	requireError(t, err, http.StatusNotFound, "Order does not exist: nope")
}

func TestUpdateOrder(t *testing.T) {
	pub := &mockPublisher{}
	svc := NewOrderService(repo.NewMemoryOrderRepository(testOrder("o1", model.StatusPending)), pub)
	ctx := context.Background()

	order, err := svc.UpdateOrder(ctx, "o1", orderInput(t, updateBody("preparing")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := model.Order{
		ID:           "o1",
		DeliverTo:    "2 Side St",
		MobileNumber: "555-0199",
		Status:       model.StatusPreparing,
		Dishes:       []model.OrderDish{{"id": "d2", "quantity": 3}},
	}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("expected %+v, got %+v", want, order)
	}
	stored, _ := svc.GetOrder(ctx, "o1")
	if !reflect.DeepEqual(stored, want) {
		t.Errorf("expected stored %+v, got %+v", want, stored)
	}
	if len(pub.channels) != 1 || pub.channels[0] != "order.updated" {
		t.Errorf("expected one order.updated event, got %v", pub.channels)
	}
}

func TestUpdateOrderStatusTransitions(t *testing.T) {
	for _, from := range model.Statuses {
		for _, to := range model.Statuses {
			t.Run(fmt.Sprintf("%s to %s", from, to), func(t *testing.T) {
				svc := NewOrderService(repo.NewMemoryOrderRepository(testOrder("o1", from)), nil)

				order, err := svc.UpdateOrder(context.Background(), "o1", orderInput(t, updateBody(string(to))))
				if from == model.StatusDelivered {
					requireError(t, err, http.StatusBadRequest, "A delivered order cannot be changed")
					return
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if order.Status != to {
					t.Errorf("expected status %s, got %s", to, order.Status)
				}
			})
		}
	}
}

func TestUpdateOrderStatusGuard(t *testing.T) {
	tests := []struct {
		name    string
		from    model.Status
		body    string
		message string
	}{
		{"missing status", model.StatusPending, `{"deliverTo":"a","mobileNumber":"b","dishes":[{"quantity":1}]}`, msgStatusRequired},
		{"empty status", model.StatusPending, updateBody(""), msgStatusRequired},
		{"missing status on delivered order", model.StatusDelivered, updateBody(""), msgStatusRequired},
		{"invalid status", model.StatusPending, updateBody("invalid"), "Invalid status"},
		{"invalid status on delivered order", model.StatusDelivered, updateBody("invalid"), "A delivered order cannot be changed"},
		{"field check runs before status", model.StatusDelivered, `{"mobileNumber":"b","status":"pending","dishes":[{"quantity":1}]}`, "Order must include a deliverTo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := testOrder("o1", tt.from)
			svc := NewOrderService(repo.NewMemoryOrderRepository(existing), nil)
			ctx := context.Background()

			_, err := svc.UpdateOrder(ctx, "o1", orderInput(t, tt.body))
			requireError(t, err, http.StatusBadRequest, tt.message)

			stored, _ := svc.GetOrder(ctx, "o1")
			if !reflect.DeepEqual(stored, existing) {
				t.Errorf("expected order unchanged, got %+v", stored)
			}
		})
	}
}

func TestUpdateOrderIDMismatch(t *testing.T) {
	existing := testOrder("o1", model.StatusPending)
	svc := NewOrderService(repo.NewMemoryOrderRepository(existing), nil)
	ctx := context.Background()

	body := `{"id":"o2","deliverTo":"a","mobileNumber":"b","status":"preparing","dishes":[{"quantity":1}]}`
	_, err := svc.UpdateOrder(ctx, "o1", orderInput(t, body))
	requireError(t, err, http.StatusBadRequest, "Order id does not match route id. Order: o2, Route: o1")

	stored, _ := svc.GetOrder(ctx, "o1")
	if !reflect.DeepEqual(stored, existing) {
		t.Errorf("expected order unchanged, got %+v", stored)
	}
}

func TestUpdateOrderIgnoresFalsyID(t *testing.T) {
	for _, id := range []string{`""`, `0`, `false`} {
		t.Run(id, func(t *testing.T) {
			svc := NewOrderService(repo.NewMemoryOrderRepository(testOrder("o1", model.StatusPending)), nil)

			body := `{"id":` + id + `,"deliverTo":"a","mobileNumber":"b","status":"preparing","dishes":[{"quantity":1}]}`
			order, err := svc.UpdateOrder(context.Background(), "o1", orderInput(t, body))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if order.ID != "o1" || order.Status != model.StatusPreparing {
				t.Errorf("expected o1 preparing, got %+v", order)
			}
		})
	}
}

func TestUpdateOrderNotFound(t *testing.T) {
	svc := NewOrderService(repo.NewMemoryOrderRepository(), nil)

	_, err := svc.UpdateOrder(context.Background(), "ghost", orderInput(t, updateBody("pending")))
	requireError(t, err, http.StatusNotFound, "Order does not exist: ghost")
}

func TestDeleteOrder(t *testing.T) {
	pub := &mockPublisher{}
	svc := NewOrderService(repo.NewMemoryOrderRepository(
		testOrder("o1", model.StatusPending),
		testOrder("o2", model.StatusPending),
		testOrder("o3", model.StatusPending),
	), pub)
	ctx := context.Background()

	if err := svc.DeleteOrder(ctx, "o2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	orders, _ := svc.ListOrders(ctx)
	if len(orders) != 2 || orders[0].ID != "o1" || orders[1].ID != "o3" {
		t.Fatalf("expected o2 removed, got %+v", orders)
	}
	if len(pub.channels) != 1 || pub.channels[0] != "order.deleted" {
		t.Errorf("expected one order.deleted event, got %v", pub.channels)
	}
}

func TestDeleteOrderNotPending(t *testing.T) {
	for _, status := range []model.Status{model.StatusPreparing, model.StatusOutForDelivery, model.StatusDelivered} {
		t.Run(string(status), func(t *testing.T) {
			svc := NewOrderService(repo.NewMemoryOrderRepository(testOrder("o1", status)), nil)
			ctx := context.Background()

			err := svc.DeleteOrder(ctx, "o1")
			requireError(t, err, http.StatusBadRequest, "An order cannot be deleted unless it is pending")

			if _, err := svc.GetOrder(ctx, "o1"); err != nil {
				t.Errorf("expected order to remain, got %v", err)
			}
		})
	}
}

func TestDeleteOrderNotFound(t *testing.T) {
	svc := NewOrderService(repo.NewMemoryOrderRepository(), nil)

	err := svc.DeleteOrder(context.Background(), "nonexistent")
	requireError(t, err, http.StatusNotFound, "Order does not exist: nonexistent")
}
