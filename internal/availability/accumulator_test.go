package availability

import (
	"testing"
	"time"

	"github.com/ymurata/gm-availability/internal/model"
)

func TestToggleIdempotentOverPairOfCalls(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	resp := model.AvailabilityResponse{ReservationID: "r1", StaffID: "s1"}

	added := ApplyToggle(&resp, 1, "3/15 昼 13:00-17:00", now)
	if !added {
		t.Fatal("first toggle should add")
	}
	if !resp.Selected(1) || len(resp.SelectedIndices) != 1 {
		t.Fatalf("expected {1}, got %v", resp.SelectedIndices)
	}
	if resp.Classification != model.Available {
		t.Fatalf("expected available, got %s", resp.Classification)
	}

	added = ApplyToggle(&resp, 1, "3/15 昼 13:00-17:00", now.Add(time.Minute))
	if added {
		t.Fatal("second toggle should remove")
	}
	if len(resp.SelectedIndices) != 0 {
		t.Fatalf("expected empty set, got %v", resp.SelectedIndices)
	}
	if resp.Classification != model.Unavailable {
		t.Fatalf("toggle-off of last index should degrade to unavailable, got %s", resp.Classification)
	}

	// Selections returned to the pre-toggle state, history did not.
	if len(resp.History) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(resp.History))
	}
	if resp.History[0].Action != model.ActionAdded || resp.History[1].Action != model.ActionRemoved {
		t.Fatalf("unexpected history actions: %+v", resp.History)
	}
	if *resp.History[0].Index != 1 || *resp.History[1].Index != 1 {
		t.Fatal("history entries must record the toggled index")
	}
}

func TestUnavailableOverwritesPriorToggles(t *testing.T) {
	now := time.Now().UTC()
	resp := model.AvailabilityResponse{ReservationID: "r1", StaffID: "s1"}

	ApplyToggle(&resp, 0, "3/15 朝 09:00-12:00", now)
	ApplyToggle(&resp, 2, "3/16 夜 18:00-22:00", now)
	if len(resp.SelectedIndices) != 2 {
		t.Fatalf("expected 2 selections, got %v", resp.SelectedIndices)
	}

	ApplyUnavailable(&resp, now)
	if len(resp.SelectedIndices) != 0 {
		t.Fatalf("unavailable must discard prior toggles, got %v", resp.SelectedIndices)
	}
	if resp.Classification != model.Unavailable {
		t.Fatalf("expected unavailable, got %s", resp.Classification)
	}
	if len(resp.History) != 3 {
		t.Fatalf("history must keep the discarded toggles, got %d entries", len(resp.History))
	}
	last := resp.History[2]
	if last.Action != model.ActionAllUnavailable || last.Index != nil {
		t.Fatalf("unexpected final history entry: %+v", last)
	}
}

func TestReplayReconstructsSelections(t *testing.T) {
	now := time.Now().UTC()
	resp := model.AvailabilityResponse{ReservationID: "r1", StaffID: "s1"}

	steps := []struct {
		unavailable bool
		index       int
	}{
		{index: 0},
		{index: 3},
		{index: 0}, // toggle off
		{index: 1},
		{unavailable: true},
		{index: 2},
		{index: 4},
		{index: 2}, // toggle off
	}
	for _, step := range steps {
		if step.unavailable {
			ApplyUnavailable(&resp, now)
		} else {
			ApplyToggle(&resp, step.index, "", now)
		}
	}

	replayed := Replay(resp.History)
	if len(replayed) != len(resp.SelectedIndices) {
		t.Fatalf("replay mismatch: got %v, stored %v", replayed, resp.SelectedIndices)
	}
	for i := range replayed {
		if replayed[i] != resp.SelectedIndices[i] {
			t.Fatalf("replay mismatch at %d: got %v, stored %v", i, replayed, resp.SelectedIndices)
		}
	}
	if len(resp.History) != len(steps) {
		t.Fatalf("every action must append exactly one entry: %d != %d", len(resp.History), len(steps))
	}
}

func TestScenarioThreeCandidates(t *testing.T) {
	now := time.Now().UTC()
	resp := model.AvailabilityResponse{ReservationID: "r1", StaffID: "s1"}

	// Toggle index 1 on.
	ApplyToggle(&resp, 1, "", now)
	if len(resp.SelectedIndices) != 1 || resp.SelectedIndices[0] != 1 {
		t.Fatalf("expected {1}, got %v", resp.SelectedIndices)
	}
	if resp.Classification != model.Available {
		t.Fatalf("expected available, got %s", resp.Classification)
	}

	// Toggle index 1 off.
	ApplyToggle(&resp, 1, "", now)
	if len(resp.SelectedIndices) != 0 || resp.Classification != model.Unavailable || len(resp.History) != 2 {
		t.Fatalf("after toggle-off: selected=%v class=%s history=%d", resp.SelectedIndices, resp.Classification, len(resp.History))
	}

	// Explicit all-unavailable.
	ApplyUnavailable(&resp, now)
	if len(resp.SelectedIndices) != 0 || resp.Classification != model.Unavailable || len(resp.History) != 3 {
		t.Fatalf("after unavailable: selected=%v class=%s history=%d", resp.SelectedIndices, resp.Classification, len(resp.History))
	}
}

func TestResponsesForDifferentStaffAreIndependent(t *testing.T) {
	now := time.Now().UTC()
	a := model.AvailabilityResponse{ReservationID: "r1", StaffID: "staff-a"}
	b := model.AvailabilityResponse{ReservationID: "r1", StaffID: "staff-b"}

	ApplyToggle(&a, 0, "", now)
	ApplyToggle(&b, 2, "", now)
	ApplyUnavailable(&b, now)

	if !a.Selected(0) || len(a.SelectedIndices) != 1 || a.Classification != model.Available {
		t.Fatalf("staff-a state contaminated: %+v", a)
	}
	if len(b.SelectedIndices) != 0 || b.Classification != model.Unavailable {
		t.Fatalf("staff-b state wrong: %+v", b)
	}
	if len(a.History) != 1 || len(b.History) != 2 {
		t.Fatalf("history lengths wrong: a=%d b=%d", len(a.History), len(b.History))
	}
}
