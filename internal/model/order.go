package model

import (
	"encoding/json"
	"math"
)

type Status string

const (
	StatusPending        Status = "pending"
	StatusPreparing      Status = "preparing"
	StatusOutForDelivery Status = "out-for-delivery"
	StatusDelivered      Status = "delivered"
)

// Statuses lists every accepted order status in lifecycle order.
var Statuses = []Status{StatusPending, StatusPreparing, StatusOutForDelivery, StatusDelivered}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether an order in this status can no longer change.
func (s Status) Terminal() bool {
	return s == StatusDelivered
}

// OrderDish is one line of an order as the client sent it. Only quantity is
// interpreted; every other field is stored untouched.
type OrderDish map[string]any

// Quantity returns the line quantity, or 0 when it is not a whole number.
func (d OrderDish) Quantity() int {
	switch q := d["quantity"].(type) {
	case int:
		return q
	case float64:
		if q == math.Trunc(q) {
			return int(q)
		}
	case json.Number:
		if f, err := q.Float64(); err == nil && f == math.Trunc(f) {
			return int(f)
		}
	}
	return 0
}

type Order struct {
	ID           string      `json:"id"`
	DeliverTo    string      `json:"deliverTo"`
	MobileNumber string      `json:"mobileNumber"`
	Status       Status      `json:"status"`
	Dishes       []OrderDish `json:"dishes"`
}

// Clone returns a copy that shares no slice or map memory with o.
func (o Order) Clone() Order {
	if o.Dishes == nil {
		return o
	}
	dishes := make([]OrderDish, len(o.Dishes))
	for i, d := range o.Dishes {
		dishes[i] = cloneValue(map[string]any(d)).(map[string]any)
	}
	o.Dishes = dishes
	return o
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	}
	return v
}
