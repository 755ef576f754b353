package order

import (
	"labtest-be/internal/access"
	"labtest-be/internal/auth"
)

// transitions lists the allowed target statuses per current status.
// Terminal statuses have no entry.
var transitions = map[Status][]Status{
	StatusPending:         {StatusApproved, StatusDenied, StatusCancelled},
	StatusApproved:        {StatusSampleCollected},
	StatusSampleCollected: {StatusProcessing},
	StatusProcessing:      {StatusReportSubmitted},
	StatusReportSubmitted: {StatusCompleted},
}

var defaultNotes = map[Status]string{
	StatusApproved:        "Order approved by admin",
	StatusDenied:          "Order was denied",
	StatusCancelled:       "Cancelled by user",
	StatusSampleCollected: "Sample collected",
	StatusProcessing:      "Sample is being processed",
	StatusReportSubmitted: "Report uploaded",
	StatusCompleted:       "Order completed",
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func notesFor(to Status, notes string) string {
	if notes != "" {
		return notes
	}
	return defaultNotes[to]
}

// checkTransition decides whether actor may move o to target.
//
// Cancellation is the owner's edge: a non-owner gets ErrForbidden and an
// owner of a non-pending order gets ErrInvalidState. Terminal statuses and
// edges missing from the table are ErrInvalidTransition whatever the role.
// Reaching report_submitted requires attaching a report.
func checkTransition(o *Order, target Status, actor auth.Identity) error {
	keys := o.OwnerKeys()

	if target == StatusCancelled {
		if !access.CanMutate(keys, actor, access.ActionCancel) {
			return ErrForbidden
		}
		if o.Status != StatusPending {
			return ErrInvalidState
		}
		return nil
	}

	if o.Status.IsTerminal() {
		return ErrInvalidTransition
	}
	if !CanTransition(o.Status, target) {
		return ErrInvalidTransition
	}
	if !access.CanMutate(keys, actor, access.ActionStaffTransition) {
		return ErrForbidden
	}
	if target == StatusReportSubmitted {
		return ErrInvalidState
	}
	return nil
}
