package memory

import (
	"unicode/utf8"

	"github.com/seralind/toolloop/chat"
)

// TokenCounter estimates the input-token cost of one message.
type TokenCounter interface {
	CountMessage(m chat.Message) int
}

// Per-block overhead covering role and formatting scaffolding.
const blockOverhead = 4

// HeuristicCounter is a deterministic estimator: rune counts plus a small
// per-block overhead. Good enough for budget windowing, not a tokenizer.
type HeuristicCounter struct{}

func (HeuristicCounter) CountMessage(m chat.Message) int {
	total := utf8.RuneCountInString(m.Content) + blockOverhead
	for _, call := range m.ToolCalls {
		total += utf8.RuneCountInString(call.Name) + len(call.Args) + blockOverhead
	}
	return total
}

// Group is a contiguous span of messages [Start, End) that must be windowed
// as a unit.
type Group struct {
	Start int
	End   int
}

// GroupMessages splits a transcript into atomic units: an assistant message
// carrying tool calls plus the adjacent tool messages answering all of its
// call IDs form one group; every other message is a singleton. Spans whose
// results are missing or foreign fall back to singletons rather than
// guessing at pairing.
func GroupMessages(msgs []chat.Message) []Group {
	groups := make([]Group, 0, len(msgs))
	for i := 0; i < len(msgs); {
		m := msgs[i]
		if m.Role == chat.RoleAssistant && len(m.ToolCalls) > 0 {
			if end, ok := toolSpanEnd(msgs, i); ok {
				groups = append(groups, Group{Start: i, End: end})
				i = end
				continue
			}
		}
		groups = append(groups, Group{Start: i, End: i + 1})
		i++
	}
	return groups
}

// toolSpanEnd verifies that the tool messages following msgs[i] answer
// every call ID of msgs[i] and nothing else, returning the exclusive end.
func toolSpanEnd(msgs []chat.Message, i int) (int, bool) {
	want := make(map[string]struct{}, len(msgs[i].ToolCalls))
	for _, call := range msgs[i].ToolCalls {
		want[call.ID] = struct{}{}
	}
	j := i + 1
	for j < len(msgs) && msgs[j].Role == chat.RoleTool {
		if _, ok := want[msgs[j].CallID]; !ok {
			return 0, false
		}
		delete(want, msgs[j].CallID)
		j++
	}
	if len(want) > 0 {
		return 0, false
	}
	return j, true
}

// Stats reports what Window kept.
type Stats struct {
	// Total is the estimated cost of the included suffix.
	Total          int
	Budget         int
	IncludedGroups int
	SkippedGroups  int
}

// Window returns the newest suffix of msgs whose whole-group cost fits the
// budget. The newest group is always included, even when it alone exceeds
// the budget, so a request is never emptied. budget <= 0 disables
// windowing and returns msgs unchanged.
func Window(msgs []chat.Message, budget int, counter TokenCounter) ([]chat.Message, Stats) {
	if budget <= 0 || len(msgs) == 0 {
		return msgs, Stats{Budget: budget}
	}
	groups := GroupMessages(msgs)
	costs := make([]int, len(groups))
	for gi, g := range groups {
		for mi := g.Start; mi < g.End; mi++ {
			costs[gi] += counter.CountMessage(msgs[mi])
		}
	}

	total := 0
	start := len(groups) - 1
	for gi := len(groups) - 1; gi >= 0; gi-- {
		if gi < len(groups)-1 && total+costs[gi] > budget {
			start = gi + 1
			break
		}
		total += costs[gi]
		start = gi
	}
	return msgs[groups[start].Start:], Stats{
		Total:          total,
		Budget:         budget,
		IncludedGroups: len(groups) - start,
		SkippedGroups:  start,
	}
}
