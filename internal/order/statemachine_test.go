package order

import (
	"testing"

	"labtest-be/internal/auth"
	"labtest-be/internal/slot"

	"github.com/stretchr/testify/assert"
)

var (
	customer = auth.Identity{ID: "user-1", Email: "jane@example.com", Role: auth.RoleCustomer}
	stranger = auth.Identity{ID: "user-2", Email: "mark@example.com", Role: auth.RoleCustomer}
	labtech  = auth.Identity{ID: "tech-1", Email: "tech@lab.test", Role: auth.RoleLabTech}
	admin    = auth.Identity{ID: "admin-1", Email: "admin@lab.test", Role: auth.RoleAdmin}
)

func orderIn(status Status) *Order {
	return &Order{
		ID: "3f1c2a4e-8a65-4a8f-9f8e-5a1f0d6c2b11",
		Patient: PatientInfo{
			Name:      "Jane",
			Email:     "jane@example.com",
			Relation:  RelationSelf,
			UserID:    customer.ID,
			UserEmail: customer.Email,
		},
		Appointment: slot.Slot{Date: "2025-01-10", TimeWindow: "08:00-09:00", ServiceArea: "560001"},
		Status:      status,
	}
}

func TestCanTransition(t *testing.T) {
	allowed := map[Status][]Status{
		StatusPending:         {StatusApproved, StatusDenied, StatusCancelled},
		StatusApproved:        {StatusSampleCollected},
		StatusSampleCollected: {StatusProcessing},
		StatusProcessing:      {StatusReportSubmitted},
		StatusReportSubmitted: {StatusCompleted},
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := false
			for _, n := range allowed[from] {
				if n == to {
					want = true
				}
			}
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTerminalStatusesAreFinal(t *testing.T) {
	for _, from := range allStatuses {
		if !from.IsTerminal() {
			continue
		}
		assert.False(t, from.IsActive(), from)
		for _, to := range allStatuses {
			if to == StatusCancelled {
				continue
			}
			assert.ErrorIs(t, checkTransition(orderIn(from), to, admin), ErrInvalidTransition, "%s -> %s", from, to)
		}
	}
}

func TestNotesFor(t *testing.T) {
	assert.Equal(t, "Order approved by admin", notesFor(StatusApproved, ""))
	assert.Equal(t, "Cancelled by user", notesFor(StatusCancelled, ""))
	assert.Equal(t, "fasting sample", notesFor(StatusSampleCollected, "fasting sample"))
}

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		target  Status
		actor   auth.Identity
		wantErr error
	}{
		{"staff approves pending", StatusPending, StatusApproved, admin, nil},
		{"labtech denies pending", StatusPending, StatusDenied, labtech, nil},
		{"customer cannot approve", StatusPending, StatusApproved, customer, ErrForbidden},
		{"deny after approve", StatusApproved, StatusDenied, admin, ErrInvalidTransition},
		{"skip ahead", StatusApproved, StatusProcessing, labtech, ErrInvalidTransition},
		{"collect sample", StatusApproved, StatusSampleCollected, labtech, nil},
		{"process sample", StatusSampleCollected, StatusProcessing, labtech, nil},
		{"report needs upload", StatusProcessing, StatusReportSubmitted, labtech, ErrInvalidState},
		{"complete", StatusReportSubmitted, StatusCompleted, admin, nil},
		{"customer cannot complete", StatusReportSubmitted, StatusCompleted, customer, ErrForbidden},
		{"nothing leaves completed", StatusCompleted, StatusPending, admin, ErrInvalidTransition},
		{"denied is final even for customers", StatusDenied, StatusApproved, customer, ErrInvalidTransition},
		{"owner cancels pending", StatusPending, StatusCancelled, customer, nil},
		{"owner cannot cancel approved", StatusApproved, StatusCancelled, customer, ErrInvalidState},
		{"stranger cannot cancel", StatusPending, StatusCancelled, stranger, ErrForbidden},
		{"staff cannot cancel", StatusPending, StatusCancelled, admin, ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkTransition(orderIn(tt.from), tt.target, tt.actor)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCheckTransition_OwnerByBackupEmail(t *testing.T) {
	o := orderIn(StatusPending)
	o.Patient.UserID = ""
	o.Patient.UserEmail = ""
	o.Patient.Email = "JANE@example.com"

	assert.NoError(t, checkTransition(o, StatusCancelled, auth.Identity{ID: "other-id", Email: "jane@example.com", Role: auth.RoleCustomer}))
}
