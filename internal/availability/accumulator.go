package availability

import (
	"time"

	"github.com/ymurata/gm-availability/internal/model"
)

// ApplyToggle merges one toggle action into the response: selected
// indices gain or lose the index, history gains exactly one entry,
// and the classification is recomputed from the resulting set.
// Toggling the same index twice restores selections and
// classification while history keeps both entries.
func ApplyToggle(resp *model.AvailabilityResponse, index int, dateString string, now time.Time) (added bool) {
	added = !resp.Selected(index)
	if added {
		resp.SelectedIndices = append(resp.SelectedIndices, index)
	} else {
		kept := resp.SelectedIndices[:0]
		for _, i := range resp.SelectedIndices {
			if i != index {
				kept = append(kept, i)
			}
		}
		resp.SelectedIndices = kept
	}

	action := model.ActionRemoved
	if added {
		action = model.ActionAdded
	}
	idx := index
	resp.History = append(resp.History, model.HistoryEntry{
		Timestamp:  now,
		Action:     action,
		Index:      &idx,
		DateString: dateString,
	})
	resp.Classification = Classify(resp.SelectedIndices)
	resp.RespondedAt = now
	return added
}

// ApplyUnavailable records the blunt "all unavailable" answer: prior
// selections are discarded outright rather than merged, one
// all_unavailable entry is appended, and the classification drops to
// unavailable.
func ApplyUnavailable(resp *model.AvailabilityResponse, now time.Time) {
	resp.SelectedIndices = nil
	resp.History = append(resp.History, model.HistoryEntry{
		Timestamp: now,
		Action:    model.ActionAllUnavailable,
	})
	resp.Classification = model.Unavailable
	resp.RespondedAt = now
}

// Classify derives the response classification from the selection
// set: any selected candidate means available.
func Classify(selected []int) model.Classification {
	if len(selected) == 0 {
		return model.Unavailable
	}
	return model.Available
}

// Replay reconstructs the selection set by applying the history log
// from empty. A stored response whose SelectedIndices differ from
// Replay(History) has been corrupted.
func Replay(history []model.HistoryEntry) []int {
	var selected []int
	for _, entry := range history {
		switch entry.Action {
		case model.ActionAdded:
			if entry.Index != nil && !contains(selected, *entry.Index) {
				selected = append(selected, *entry.Index)
			}
		case model.ActionRemoved:
			if entry.Index != nil {
				kept := selected[:0]
				for _, i := range selected {
					if i != *entry.Index {
						kept = append(kept, i)
					}
				}
				selected = kept
			}
		case model.ActionAllUnavailable:
			selected = nil
		}
	}
	return selected
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
