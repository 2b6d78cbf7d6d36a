package model

import "time"

// Reservation status values owned by the booking subsystem. This
// service only ever advances pending/pending_gm to pending_store.
const (
	StatusPending      = "pending"
	StatusPendingGM    = "pending_gm"
	StatusPendingStore = "pending_store"
)

// Candidate is one offered slot on a reservation. Candidates are
// immutable once the reservation is created and are referenced by
// their 0-based position in the reservation's candidate list.
type Candidate struct {
	Date      string `json:"date"`      // calendar date, e.g. "2026-03-15"
	TimeSlot  string `json:"timeSlot"`  // morning/afternoon/evening or 朝/昼/夜
	StartTime string `json:"startTime"` // "13:00"
	EndTime   string `json:"endTime"`   // "17:00"
}

type HistoryAction string

const (
	ActionAdded          HistoryAction = "added"
	ActionRemoved        HistoryAction = "removed"
	ActionAllUnavailable HistoryAction = "all_unavailable"
)

// HistoryEntry is one record in a response's append-only history log.
// Index is nil for all_unavailable entries.
type HistoryEntry struct {
	Timestamp  time.Time     `json:"timestamp"`
	Action     HistoryAction `json:"action"`
	Index      *int          `json:"date_index,omitempty"`
	DateString string        `json:"date_string,omitempty"`
}

type Classification string

const (
	Available   Classification = "available"
	Unavailable Classification = "unavailable"
)

// AvailabilityResponse is the accumulated answer of one staff member
// for one reservation. The (ReservationID, StaffID) pair is the
// unique key; SelectedIndices must always equal the result of
// replaying History from empty.
type AvailabilityResponse struct {
	ReservationID   string
	StaffID         string
	GMDiscordID     string
	GMName          string
	SelectedIndices []int
	History         []HistoryEntry
	Classification  Classification
	Notes           string
	RespondedAt     time.Time
}

func (r *AvailabilityResponse) Selected(index int) bool {
	for _, i := range r.SelectedIndices {
		if i == index {
			return true
		}
	}
	return false
}
