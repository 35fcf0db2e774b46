package notifications

import (
	"encoding/json"
	"time"
)

// SaleCompletedEvent is the fact published when a purchase is confirmed.
// Consumers (receipts, reporting) live outside this service.
type SaleCompletedEvent struct {
	SaleID       string     `json:"sale_id"`
	EventID      string     `json:"event_id"`
	UserID       string     `json:"user_id"`
	RemoteSaleID *int64     `json:"remote_sale_id,omitempty"`
	SaleDate     time.Time  `json:"sale_date"`
	TotalPrice   float64    `json:"total_price"`
	Seats        []SeatInfo `json:"seats"`
	PublishedAt  time.Time  `json:"published_at"`
}

// SeatInfo is one sold seat with its occupant.
type SeatInfo struct {
	Row          int    `json:"row"`
	Col          int    `json:"col"`
	OccupantName string `json:"occupant_name"`
}

func (e *SaleCompletedEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// PartitionKey routes all of one user's sales to the same partition.
func (e *SaleCompletedEvent) PartitionKey() string {
	return e.UserID
}
