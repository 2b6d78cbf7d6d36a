package discord

import "testing"

func TestParseAction(t *testing.T) {
	tests := []struct {
		name     string
		customID string
		want     Action
	}{
		{"unavailable", "unavailable:res-123", UnavailableAction{ReservationID: "res-123"}},
		{"toggle first slot", "slot:1:res-123", ToggleAction{ReservationID: "res-123", Index: 0}},
		{"toggle third slot", "slot:3:abc-def", ToggleAction{ReservationID: "abc-def", Index: 2}},
		{"unavailable without id", "unavailable:", UnrecognizedAction{CustomID: "unavailable:"}},
		{"slot without id", "slot:2:", UnrecognizedAction{CustomID: "slot:2:"}},
		{"slot ordinal zero", "slot:0:res-123", UnrecognizedAction{CustomID: "slot:0:res-123"}},
		{"slot ordinal negative", "slot:-1:res-123", UnrecognizedAction{CustomID: "slot:-1:res-123"}},
		{"slot ordinal garbage", "slot:x:res-123", UnrecognizedAction{CustomID: "slot:x:res-123"}},
		{"slot missing ordinal", "slot:res-123", UnrecognizedAction{CustomID: "slot:res-123"}},
		{"unknown prefix", "gm_available_res-123", UnrecognizedAction{CustomID: "gm_available_res-123"}},
		{"empty", "", UnrecognizedAction{CustomID: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAction(tt.customID)
			if got != tt.want {
				t.Fatalf("ParseAction(%q) = %#v, want %#v", tt.customID, got, tt.want)
			}
		})
	}
}

func TestSlotCustomIDRoundTrip(t *testing.T) {
	id := SlotCustomID("res-9", 4)
	if id != "slot:5:res-9" {
		t.Fatalf("unexpected custom id %q", id)
	}
	got, ok := ParseAction(id).(ToggleAction)
	if !ok {
		t.Fatalf("expected ToggleAction, got %#v", ParseAction(id))
	}
	if got.Index != 4 || got.ReservationID != "res-9" {
		t.Fatalf("round trip mismatch: %#v", got)
	}
}
