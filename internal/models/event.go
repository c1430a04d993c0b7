package models

// Event types delivered over the order stream.
const (
	EventOrderCreated = "order-created"
	EventOrderUpdated = "order-updated"
)

// OrderEvent is a transient notification fanned out to connected employee
// clients. It is never persisted and late subscribers see no replay.
type OrderEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type OrderCreatedPayload struct {
	ID           string `json:"id"`
	OrderNumber  string `json:"orderNumber"`
	CustomerName string `json:"customerName"`
}

type OrderUpdatedPayload struct {
	ID     string      `json:"id"`
	Status OrderStatus `json:"status"`
}
