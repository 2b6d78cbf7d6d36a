package discord

import (
	"fmt"
	"strconv"
	"strings"
)

// Action is the decoded form of a component custom_id. The two known
// shapes are "unavailable:<reservationId>" and
// "slot:<n>:<reservationId>" where n is a 1-based candidate ordinal.
// Anything else decodes to UnrecognizedAction; the custom_id is
// parsed exactly once, at the router boundary.
type Action interface {
	isAction()
}

type ToggleAction struct {
	ReservationID string
	Index         int // 0-based candidate index
}

type UnavailableAction struct {
	ReservationID string
}

type UnrecognizedAction struct {
	CustomID string
}

func (ToggleAction) isAction()       {}
func (UnavailableAction) isAction()  {}
func (UnrecognizedAction) isAction() {}

func ParseAction(customID string) Action {
	if rest, ok := strings.CutPrefix(customID, "unavailable:"); ok {
		if rest == "" {
			return UnrecognizedAction{CustomID: customID}
		}
		return UnavailableAction{ReservationID: rest}
	}
	if rest, ok := strings.CutPrefix(customID, "slot:"); ok {
		ordinal, reservationID, ok := strings.Cut(rest, ":")
		if !ok || reservationID == "" {
			return UnrecognizedAction{CustomID: customID}
		}
		n, err := strconv.Atoi(ordinal)
		if err != nil || n < 1 {
			return UnrecognizedAction{CustomID: customID}
		}
		return ToggleAction{ReservationID: reservationID, Index: n - 1}
	}
	return UnrecognizedAction{CustomID: customID}
}

// SlotCustomID renders the custom_id for the candidate at the given
// 0-based index, the inverse of ParseAction's slot branch.
func SlotCustomID(reservationID string, index int) string {
	return fmt.Sprintf("slot:%d:%s", index+1, reservationID)
}

func UnavailableCustomID(reservationID string) string {
	return "unavailable:" + reservationID
}
