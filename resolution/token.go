package resolution

import (
	"fmt"
	"strings"

	"modbot/model"
	"modbot/utils"
)

// EntityKind names the reviewable record class an action token refers to.
type EntityKind string

const (
	EntityReport  EntityKind = "report"
	EntityRequest EntityKind = "request"
)

// Action is the resolution a staff member picked.
type Action string

const (
	ActionAccept    Action = "accept"
	ActionDeny      Action = "deny"
	ActionDisregard Action = "disregard"
)

// Status returns the terminal status an action transitions to.
func (a Action) Status() model.ResolutionStatus {
	switch a {
	case ActionAccept:
		return model.StatusAccepted
	case ActionDeny:
		return model.StatusDenied
	default:
		return model.StatusDisregarded
	}
}

// Custom-ID prefixes for the two phases of the resolve flow. Phase one rides
// on the alert buttons; phase two is the modal that carries the collected
// reason back into Resolve.
const (
	componentPrefix = "resolve"
	modalPrefix     = "resolve_reason"
)

// Token encodes {entity kind, action, entity id} into component and modal
// custom IDs, the same prefix:args convention the rest of the bot uses.
type Token struct {
	Kind     EntityKind
	Action   Action
	EntityID string
}

// ComponentID renders the token as a button custom ID.
func (t Token) ComponentID() string {
	return fmt.Sprintf("%s:%s:%s:%s", componentPrefix, t.Kind, t.Action, t.EntityID)
}

// ModalID renders the token as a reason-modal custom ID.
func (t Token) ModalID() string {
	return fmt.Sprintf("%s:%s:%s:%s", modalPrefix, t.Kind, t.Action, t.EntityID)
}

// IsResolveComponent reports whether a component custom ID belongs to the
// resolve flow.
func IsResolveComponent(customID string) bool {
	return strings.HasPrefix(customID, componentPrefix+":")
}

// IsReasonModal reports whether a modal custom ID belongs to the resolve
// flow's reason-collection phase.
func IsReasonModal(customID string) bool {
	return strings.HasPrefix(customID, modalPrefix+":")
}

// ParseToken decodes a component or modal custom ID back into a token.
func ParseToken(customID string) (Token, error) {
	parts := strings.Split(customID, ":")
	if len(parts) != 4 || (parts[0] != componentPrefix && parts[0] != modalPrefix) {
		return Token{}, fmt.Errorf("malformed resolve custom ID: %s", customID)
	}

	kind := EntityKind(parts[1])
	if kind != EntityReport && kind != EntityRequest {
		return Token{}, fmt.Errorf("unknown entity kind in custom ID: %s", parts[1])
	}

	action := Action(parts[2])
	if action != ActionAccept && action != ActionDeny && action != ActionDisregard {
		return Token{}, fmt.Errorf("unknown action in custom ID: %s", parts[2])
	}

	if _, err := utils.ParseID(parts[3]); err != nil {
		return Token{}, fmt.Errorf("invalid entity ID in custom ID: %s", parts[3])
	}

	return Token{Kind: kind, Action: action, EntityID: parts[3]}, nil
}
