package availability

import (
	"fmt"
	"strings"
	"time"

	"github.com/ymurata/gm-availability/internal/discord"
	"github.com/ymurata/gm-availability/internal/model"
)

// Discord allows at most 5 action rows of 5 buttons each.
const (
	buttonsPerRow = 5
	maxButtons    = 25
)

var timeSlotLabels = map[string]string{
	"morning":   "朝",
	"afternoon": "昼",
	"evening":   "夜",
	"朝":         "朝",
	"昼":         "昼",
	"夜":         "夜",
}

func timeSlotLabel(slot string) string {
	if label, ok := timeSlotLabels[slot]; ok {
		return label
	}
	return slot
}

// FormatCandidate renders a candidate the way the confirmation
// messages show it: "3/15 昼 13:00-17:00".
func FormatCandidate(c model.Candidate) string {
	dateStr := c.Date
	if d, err := time.Parse("2006-01-02", c.Date); err == nil {
		dateStr = fmt.Sprintf("%d/%d", int(d.Month()), d.Day())
	}
	return fmt.Sprintf("%s %s %s-%s", dateStr, timeSlotLabel(c.TimeSlot), c.StartTime, c.EndTime)
}

// ToggleSummary builds the edited message body after a toggle:
// what changed, then the numbered list of current selections.
func ToggleSummary(toggled model.Candidate, added bool, candidates []model.Candidate, selected []int) string {
	var b strings.Builder
	if added {
		fmt.Fprintf(&b, "✅ 「%s」を追加しました。", FormatCandidate(toggled))
	} else {
		fmt.Fprintf(&b, "🔄 「%s」の選択を解除しました。", FormatCandidate(toggled))
	}

	if len(selected) == 0 {
		b.WriteString("\n\n現在、出勤可能な日程が選択されていません。")
		return b.String()
	}

	b.WriteString("\n\n【現在の選択】")
	for i, idx := range selected {
		if idx < 0 || idx >= len(candidates) {
			continue
		}
		fmt.Fprintf(&b, "\n%d. %s", i+1, FormatCandidate(candidates[idx]))
	}
	b.WriteString("\n\n※ 下のボタンから日程を追加/削除できます。")
	return b.String()
}

// UnavailableSummary is the synchronous confirmation for the
// all-unavailable action.
func UnavailableSummary() string {
	return "❌ 全て出勤不可として記録しました。\n管理画面で確認できます。"
}

// SelectionNotes renders the notes column stored with the response.
func SelectionNotes(candidates []model.Candidate, selected []int) string {
	if len(selected) == 0 {
		return "Discord経由で回答: 全て出勤不可"
	}
	parts := make([]string, 0, len(selected))
	for _, idx := range selected {
		if idx < 0 || idx >= len(candidates) {
			continue
		}
		parts = append(parts, FormatCandidate(candidates[idx]))
	}
	return "Discord経由で回答: " + strings.Join(parts, ", ")
}

// CandidateButtons rebuilds the toggle controls reflecting the
// current selection: selected candidates get primary style and a
// check mark, rows hold five buttons, capped at Discord's component
// limit.
func CandidateButtons(reservationID string, candidates []model.Candidate, selected []int) []discord.Component {
	isSelected := make(map[int]bool, len(selected))
	for _, idx := range selected {
		isSelected[idx] = true
	}

	var rows []discord.Component
	for i, c := range candidates {
		if i == maxButtons {
			break
		}
		if i%buttonsPerRow == 0 {
			rows = append(rows, discord.Component{Type: discord.ComponentActionRow})
		}

		style := discord.ButtonStyleSuccess
		prefix := ""
		if isSelected[i] {
			style = discord.ButtonStylePrimary
			prefix = "✓ "
		}
		row := &rows[len(rows)-1]
		row.Components = append(row.Components, discord.Component{
			Type:     discord.ComponentButton,
			Style:    style,
			Label:    fmt.Sprintf("%s候補%d: %s", prefix, i+1, FormatCandidate(c)),
			CustomID: discord.SlotCustomID(reservationID, i),
		})
	}
	return rows
}
