package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/apetrov/orderflow/internal/domain"
	"github.com/apetrov/orderflow/internal/history"
)

const trailDateLayout = "2006-01-02 15:04"

// RenderTrail renders a history forest as an indented tree. Each line
// shows the node's connector prefix, recipient, rolled-up outcome and
// completion date, with the outcome badge right-aligned.
func RenderTrail(forest []*history.Node) string {
	nodes := history.Flatten(forest)
	if len(nodes) == 0 {
		return Dim("no approval steps recorded") + "\n"
	}

	type lineInfo struct {
		content string
		badge   string
	}

	lines := make([]lineInfo, len(nodes))
	maxContentWidth := 0

	for idx, n := range nodes {
		label := fmt.Sprintf("%s (%s)", n.Step.RecipientName, n.Step.RecipientRole.DisplayName())
		if n.Step.IsRework {
			label += StylePurple.Render(" ⟲ rework")
		}

		var when string
		if n.EffectiveCompletionDate != nil {
			when = Dim(n.EffectiveCompletionDate.Format(trailDateLayout))
		} else {
			when = StyleYellow.Render("due " + n.Step.Deadline.Format("2006-01-02"))
		}

		content := Dim(n.Prefix) + StyleFg.Render(label) + "  " + when
		lines[idx].content = content
		lines[idx].badge = badgeFor(n)

		if w := lipgloss.Width(content); w > maxContentWidth {
			maxContentWidth = w
		}
	}

	var b strings.Builder
	for _, li := range lines {
		pad := maxContentWidth - lipgloss.Width(li.content)
		if pad < 0 {
			pad = 0
		}
		b.WriteString(li.content + strings.Repeat(" ", pad) + "  " + li.badge + "\n")
	}
	return b.String()
}

func badgeFor(n *history.Node) string {
	if n.Step.Open() && !n.HasChildren() {
		return StyleYellow.Render("[ pending ]")
	}
	switch n.EffectiveResult {
	case domain.ResultApproved:
		return StyleGreen.Render("[ approved ]")
	case domain.ResultRejected:
		return StyleRed.Render("[ rejected ]")
	default:
		return StyleYellow.Render("[ pending ]")
	}
}

// TrailComments lists the non-empty comments of the forest in display
// order, one per line, attributed to their author.
func TrailComments(forest []*history.Node) string {
	var b strings.Builder
	for _, n := range history.Flatten(forest) {
		if n.Step.Comment == "" {
			continue
		}
		b.WriteString(fmt.Sprintf("%s %s\n",
			Bold(n.Step.RecipientName+":"), n.Step.Comment))
	}
	return b.String()
}
