package domain

import "time"

// EventOrderConfirmed is the routing name of the notification published
// after a successful order.
const EventOrderConfirmed = "order.confirmed"

// Confirmation is the single view shown once an order is placed.
type Confirmation struct {
	OrderID     string    `json:"orderId"`
	ConfirmedAt time.Time `json:"confirmedAt"`
}

type Event struct {
	Type        string    `json:"type"`
	OrderID     string    `json:"orderId"`
	UserID      string    `json:"userId"`
	ConfirmedAt time.Time `json:"confirmedAt"`
}
