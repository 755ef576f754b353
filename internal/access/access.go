// Package access decides who may read or change an order.
//
// An order records its owner under three keys because the same customer
// shows up as a registered user, a guest checkout email or an imported
// record. A customer owns the order when any one of the keys matches.
package access

import (
	"strings"

	"labtest-be/internal/auth"
)

type Action string

const (
	ActionRead            Action = "read"
	ActionCancel          Action = "cancel"
	ActionStaffTransition Action = "staff_transition"
	ActionAttachReport    Action = "attach_report"
)

// KeySet is the owner identity stamped on an order.
type KeySet struct {
	UserID      string
	Email       string
	BackupEmail string
}

// IsOwner reports whether the identity matches at least one key.
// All three keys are compared before returning.
func (k KeySet) IsOwner(id auth.Identity) bool {
	byID := k.UserID != "" && id.ID != "" && k.UserID == id.ID
	byEmail := sameEmail(k.Email, id.Email)
	byBackup := sameEmail(k.BackupEmail, id.Email)
	return byID || byEmail || byBackup
}

func sameEmail(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}

// CanAccess grants read access to staff and to the owning customer.
func CanAccess(keys KeySet, id auth.Identity) bool {
	if id.IsStaff() {
		return true
	}
	if id.Role != auth.RoleCustomer {
		return false
	}
	return keys.IsOwner(id)
}

// CanMutate gates writes. Staff edges are further restricted by the order
// state machine.
func CanMutate(keys KeySet, id auth.Identity, action Action) bool {
	switch action {
	case ActionRead:
		return CanAccess(keys, id)
	case ActionCancel:
		return id.Role == auth.RoleCustomer && keys.IsOwner(id)
	case ActionStaffTransition, ActionAttachReport:
		return id.IsStaff()
	default:
		return false
	}
}
