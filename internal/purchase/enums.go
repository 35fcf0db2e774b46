package purchase

// SessionState is the purchase session state machine.
// SELECTING_SEATS -> LOADING_DATA -> COMPLETED.
// COMPLETED is terminal and covers success, cancellation and expiry; the
// distinguishing detail lives in the associated Sale rows, if any.
type SessionState string

const (
	StateSelectingSeats SessionState = "SELECTING_SEATS"
	StateLoadingData    SessionState = "LOADING_DATA"
	StateCompleted      SessionState = "COMPLETED"
)

func (s SessionState) IsValid() bool {
	switch s {
	case StateSelectingSeats, StateLoadingData, StateCompleted:
		return true
	}
	return false
}

func (s SessionState) String() string {
	return string(s)
}

// IsTerminal reports whether no further operation can mutate the session.
func (s SessionState) IsTerminal() bool {
	return s == StateCompleted
}

// CanSelectSeats reports whether seat selection (or re-selection) is allowed.
func (s SessionState) CanSelectSeats() bool {
	return s == StateSelectingSeats || s == StateLoadingData
}

// SyncStatus tracks how far a Sale row got against the remote authority.
type SyncStatus string

const (
	SyncPending      SyncStatus = "PENDING"
	SyncSynchronized SyncStatus = "SYNCHRONIZED"
	SyncError        SyncStatus = "ERROR"
)

func (s SyncStatus) String() string {
	return string(s)
}
