package order

import (
	"io"
	"time"

	"labtest-be/internal/access"
	"labtest-be/internal/slot"
)

type Status string

const (
	StatusPending         Status = "pending"
	StatusApproved        Status = "approved"
	StatusDenied          Status = "denied"
	StatusSampleCollected Status = "sample_collected"
	StatusProcessing      Status = "processing"
	StatusReportSubmitted Status = "report_submitted"
	StatusCompleted       Status = "completed"
	StatusCancelled       Status = "cancelled"
)

var allStatuses = []Status{
	StatusPending, StatusApproved, StatusDenied, StatusSampleCollected,
	StatusProcessing, StatusReportSubmitted, StatusCompleted, StatusCancelled,
}

// ActiveStatuses hold an appointment slot.
var ActiveStatuses = []Status{
	StatusPending, StatusApproved, StatusSampleCollected, StatusProcessing, StatusReportSubmitted,
}

func (s Status) Valid() bool {
	for _, v := range allStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s Status) IsActive() bool {
	for _, v := range ActiveStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusDenied || s == StatusCancelled || s == StatusCompleted
}

// ActiveStatusStrings is ActiveStatuses for SQL parameters.
func ActiveStatusStrings() []string {
	out := make([]string, len(ActiveStatuses))
	for i, s := range ActiveStatuses {
		out[i] = string(s)
	}
	return out
}

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "COD"
	PaymentOnline PaymentMethod = "Online"
	PaymentWallet PaymentMethod = "Wallet"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentPaid     PaymentStatus = "Paid"
	PaymentFailed   PaymentStatus = "Failed"
	PaymentRefunded PaymentStatus = "Refunded"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD || m == PaymentOnline || m == PaymentWallet
}

// InitialStatus is Pending for cash on collection and Paid otherwise.
func (m PaymentMethod) InitialStatus() PaymentStatus {
	if m == PaymentCOD {
		return PaymentPending
	}
	return PaymentPaid
}

const RelationSelf = "self"

type PatientInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	DOB      string `json:"dob,omitempty"`
	Age      *int   `json:"age,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Relation string `json:"relation"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Pincode  string `json:"pincode,omitempty"`
	MemberID string `json:"memberId,omitempty"`

	// Owning customer, set at checkout from the caller identity.
	UserID    string `json:"userId"`
	UserEmail string `json:"userEmail"`
}

// HasCollectionAddress is true when the sample is collected at home.
func (p PatientInfo) HasCollectionAddress() bool {
	return p.Address != ""
}

// Item is the line snapshot taken at checkout.
type Item struct {
	TestID   string `json:"testId"`
	TestName string `json:"testName"`
	Lab      string `json:"lab"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
}

type Pricing struct {
	Subtotal         int `json:"subtotal"`
	CollectionCharge int `json:"collectionCharge"`
	Total            int `json:"totalPrice"`
}

type ReportReference struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

type Order struct {
	ID              string           `json:"id"`
	Patient         PatientInfo      `json:"patientInfo"`
	Appointment     slot.Slot        `json:"appointment"`
	Items           []Item           `json:"items"`
	Pricing         Pricing          `json:"pricing"`
	Status          Status           `json:"status"`
	PaymentMethod   PaymentMethod    `json:"paymentMethod"`
	PaymentStatus   PaymentStatus    `json:"paymentStatus"`
	Report          *ReportReference `json:"report,omitempty"`
	TechnicianNotes string           `json:"technicianNotes"`
	DecidedBy       string           `json:"decidedBy,omitempty"`
	DecidedAt       *time.Time       `json:"decidedAt,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// OwnerKeys is the three-key owner identity used by access checks.
func (o *Order) OwnerKeys() access.KeySet {
	return access.KeySet{
		UserID:      o.Patient.UserID,
		Email:       o.Patient.UserEmail,
		BackupEmail: o.Patient.Email,
	}
}

// StatusUpdate is a conditional write: it applies only while the stored
// status still equals From.
type StatusUpdate struct {
	ID        string
	From      Status
	To        Status
	Notes     string
	DecidedBy string
	DecidedAt *time.Time
	Report    *ReportReference
	At        time.Time
}

// OwnerQuery selects orders by caller identity. Any key may match.
type OwnerQuery struct {
	UserID      string
	Email       string
	ExcludeSelf bool
}

type ListFilter struct {
	Statuses      []Status
	ExcludeStatus Status
	From          *time.Time
	To            *time.Time
	Page          int
	Limit         int
}

func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type OrderPage struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}

type CheckoutInput struct {
	Patient       PatientInfo   `json:"patientInfo"`
	Appointment   slot.Slot     `json:"appointment"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}

// ReportUpload is a file that already passed the upload filter.
type ReportUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}
