package purchase

import "time"

type SeatResponse struct {
	Row          int    `json:"row"`
	Col          int    `json:"col"`
	OccupantName string `json:"occupant_name,omitempty"`
}

type SessionResponse struct {
	SessionID      string         `json:"session_id"`
	EventID        string         `json:"event_id"`
	State          string         `json:"state"`
	StartedAt      time.Time      `json:"started_at"`
	LastActivityAt time.Time      `json:"last_activity_at"`
	ExpiresAt      time.Time      `json:"expires_at"`
	Seats          []SeatResponse `json:"seats"`
}

type SaleResponse struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	RemoteSaleID *int64    `json:"remote_sale_id"`
	SaleDate     time.Time `json:"sale_date"`
	TotalPrice   float64   `json:"total_price"`
	Successful   bool      `json:"successful"`
	SyncStatus   string    `json:"sync_status"`
	Message      string    `json:"message,omitempty"`
}

func toSessionResponse(session *PurchaseSession) *SessionResponse {
	seats := make([]SeatResponse, len(session.Seats))
	for i, seat := range session.Seats {
		seats[i] = SeatResponse{
			Row:          seat.SeatRow,
			Col:          seat.SeatCol,
			OccupantName: seat.OccupantName,
		}
	}
	return &SessionResponse{
		SessionID:      session.ID.String(),
		EventID:        session.EventID.String(),
		State:          session.State.String(),
		StartedAt:      session.StartedAt,
		LastActivityAt: session.LastActivityAt,
		ExpiresAt:      session.ExpiresAt,
		Seats:          seats,
	}
}

func toSaleResponse(sale *Sale) *SaleResponse {
	return &SaleResponse{
		ID:           sale.ID.String(),
		EventID:      sale.EventID.String(),
		RemoteSaleID: sale.RemoteSaleID,
		SaleDate:     sale.SaleDate,
		TotalPrice:   sale.TotalPrice,
		Successful:   sale.Successful,
		SyncStatus:   sale.SyncStatus.String(),
		Message:      sale.Message,
	}
}

func toSaleResponses(sales []Sale) []SaleResponse {
	out := make([]SaleResponse, len(sales))
	for i := range sales {
		out[i] = *toSaleResponse(&sales[i])
	}
	return out
}
