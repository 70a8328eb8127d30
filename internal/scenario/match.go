package scenario

import (
	"context"
	"strings"

	"github.com/vensus137/coreness-go/internal/event"
)

// StateChecker reports whether a user currently holds an active,
// non-expired state of the given type (spec.md §4.1 row 2, `text.state`).
type StateChecker interface {
	HasActive(ctx context.Context, tenantID, botID, userID, stateType string) bool
}

// Match resolves ev against idx in spec.md §4.1's priority order,
// returning the matched scenario's fully-qualified name. chat type
// "channel" is never matched, per spec.md §4.1's header note.
func Match(ctx context.Context, idx *Index, ev event.Event, states StateChecker) (string, bool) {
	if strings.EqualFold(ev.ChatType, "channel") {
		return "", false
	}

	switch ev.System.Type {
	case event.TypeText:
		return matchText(ctx, idx, ev, states)
	case event.TypeCallback:
		return matchCallback(idx, ev)
	case event.TypeNewMember:
		return matchNewMember(idx, ev)
	default:
		return "", false
	}
}

func matchText(ctx context.Context, idx *Index, ev event.Event, states StateChecker) (string, bool) {
	lowerText := strings.ToLower(ev.EventText)

	// 1. exact
	if name, ok := idx.textExact[lowerText]; ok {
		return name, true
	}

	// 2. state -- checked even when event_text is empty
	if states != nil {
		for stateType, name := range idx.textState {
			if states.HasActive(ctx, ev.System.TenantID, ev.System.BotID, ev.UserID, stateType) {
				return name, true
			}
		}
	}

	// 3. regex, first match in declaration order
	for _, re := range idx.textRegex {
		if re.compiled.MatchString(ev.EventText) {
			return re.scenario, true
		}
	}

	// 4. starts_with
	for _, e := range idx.textStartsWith {
		if strings.HasPrefix(lowerText, e.key) {
			return e.scenario, true
		}
	}

	// 5. contains
	for _, e := range idx.textContains {
		if strings.Contains(lowerText, e.key) {
			return e.scenario, true
		}
	}

	return "", false
}

func matchCallback(idx *Index, ev event.Event) (string, bool) {
	data := ev.CallbackData

	// 6. explicit ":<scenario_name>" jump
	if strings.HasPrefix(data, ":") {
		if s, ok := idx.Scenario(strings.TrimPrefix(data, ":")); ok {
			return s.Name, true
		}
		return "", false
	}

	normalized := normalizeCallback(data)

	// 7. exact, normalized
	if name, ok := idx.callbackExact[normalized]; ok {
		return name, true
	}

	// 8. contains, normalized
	for _, e := range idx.callbackContains {
		if strings.Contains(normalized, e.key) {
			return e.scenario, true
		}
	}

	return "", false
}

// matchNewMember resolves spec.md §4.1 row 9's tier. Each new_member
// event carries exactly one join kind, so the declared priority order
// (group -> link -> creator -> initiator -> default) collapses to
// "try the event's own kind, then fall back to default", since the
// original has no case where a single event exposes more than one
// qualifying kind simultaneously.
func matchNewMember(idx *Index, ev event.Event) (string, bool) {
	kind := strings.ToLower(ev.NewMemberJoinKind)
	if kind != "" {
		if name, ok := idx.newMember[kind]; ok {
			return name, true
		}
	}
	if name, ok := idx.newMember["default"]; ok {
		return name, true
	}
	return "", false
}
