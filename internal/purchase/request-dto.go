package purchase

// StartPurchaseRequest opens a new session for an event.
type StartPurchaseRequest struct {
	EventID string `json:"event_id" validate:"required,uuid"`
}

// SelectSeatsRequest replaces the session's seat selection wholesale.
type SelectSeatsRequest struct {
	Seats []SeatSelection `json:"seats" validate:"required,min=1,max=4,dive"`
}

// AssignNamesRequest maps "row-col" seat keys to occupant names. The key set
// must cover exactly the selected seats.
type AssignNamesRequest struct {
	Names map[string]string `json:"names" validate:"required,min=1"`
}
