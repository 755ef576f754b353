package order

import (
	"database/sql"
	"strings"
	"time"

	"labtest-be/internal/slot"
)

var orderColumnNames = []string{
	"id", "patient_name", "patient_email", "patient_phone", "patient_dob", "patient_age",
	"patient_gender", "relation", "address", "city", "state", "pincode", "member_id",
	"user_id", "user_email", "appointment_date", "time_window", "service_area",
	"subtotal", "collection_charge", "total_price", "status", "payment_method",
	"payment_status", "report_url", "report_filename", "technician_notes",
	"decided_by", "decided_at", "created_at", "updated_at",
}

var orderColumns = strings.Join(orderColumnNames, ", ")

// orderRow mirrors the orders table, nullable columns included.
type orderRow struct {
	ID               string
	PatientName      string
	PatientEmail     string
	PatientPhone     string
	PatientDOB       string
	PatientAge       sql.NullInt64
	PatientGender    string
	Relation         string
	Address          string
	City             string
	State            string
	Pincode          string
	MemberID         string
	UserID           string
	UserEmail        string
	AppointmentDate  time.Time
	TimeWindow       string
	ServiceArea      string
	Subtotal         int
	CollectionCharge int
	TotalPrice       int
	Status           string
	PaymentMethod    string
	PaymentStatus    string
	ReportURL        sql.NullString
	ReportFilename   sql.NullString
	TechnicianNotes  string
	DecidedBy        sql.NullString
	DecidedAt        sql.NullTime
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func scanOrderRow(row interface{ Scan(...any) error }) (*orderRow, error) {
	var r orderRow
	err := row.Scan(
		&r.ID, &r.PatientName, &r.PatientEmail, &r.PatientPhone, &r.PatientDOB, &r.PatientAge,
		&r.PatientGender, &r.Relation, &r.Address, &r.City, &r.State, &r.Pincode, &r.MemberID,
		&r.UserID, &r.UserEmail, &r.AppointmentDate, &r.TimeWindow, &r.ServiceArea,
		&r.Subtotal, &r.CollectionCharge, &r.TotalPrice, &r.Status, &r.PaymentMethod,
		&r.PaymentStatus, &r.ReportURL, &r.ReportFilename, &r.TechnicianNotes,
		&r.DecidedBy, &r.DecidedAt, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *orderRow) toOrder() Order {
	o := Order{
		ID: r.ID,
		Patient: PatientInfo{
			Name:      r.PatientName,
			Email:     r.PatientEmail,
			Phone:     r.PatientPhone,
			DOB:       r.PatientDOB,
			Gender:    r.PatientGender,
			Relation:  r.Relation,
			Address:   r.Address,
			City:      r.City,
			State:     r.State,
			Pincode:   r.Pincode,
			MemberID:  r.MemberID,
			UserID:    r.UserID,
			UserEmail: r.UserEmail,
		},
		Appointment: slot.Slot{
			Date:        r.AppointmentDate.Format(slot.DateLayout),
			TimeWindow:  r.TimeWindow,
			ServiceArea: r.ServiceArea,
		},
		Items: []Item{},
		Pricing: Pricing{
			Subtotal:         r.Subtotal,
			CollectionCharge: r.CollectionCharge,
			Total:            r.TotalPrice,
		},
		Status:          Status(r.Status),
		PaymentMethod:   PaymentMethod(r.PaymentMethod),
		PaymentStatus:   PaymentStatus(r.PaymentStatus),
		TechnicianNotes: r.TechnicianNotes,
		DecidedBy:       r.DecidedBy.String,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.PatientAge.Valid {
		age := int(r.PatientAge.Int64)
		o.Patient.Age = &age
	}
	if r.ReportURL.Valid && r.ReportFilename.Valid {
		o.Report = &ReportReference{URL: r.ReportURL.String, Filename: r.ReportFilename.String}
	}
	if r.DecidedAt.Valid {
		t := r.DecidedAt.Time
		o.DecidedAt = &t
	}
	return o
}

// orderArgs lists o's values in orderColumnNames order.
func orderArgs(o *Order) []any {
	var age sql.NullInt64
	if o.Patient.Age != nil {
		age = sql.NullInt64{Int64: int64(*o.Patient.Age), Valid: true}
	}
	var reportURL, reportFile sql.NullString
	if o.Report != nil {
		reportURL = nullString(o.Report.URL)
		reportFile = nullString(o.Report.Filename)
	}

	p := o.Patient
	return []any{
		o.ID, p.Name, p.Email, p.Phone, p.DOB, age,
		p.Gender, p.Relation, p.Address, p.City, p.State, p.Pincode, p.MemberID,
		p.UserID, p.UserEmail, o.Appointment.Date, o.Appointment.TimeWindow, o.Appointment.ServiceArea,
		o.Pricing.Subtotal, o.Pricing.CollectionCharge, o.Pricing.Total, string(o.Status), string(o.PaymentMethod),
		string(o.PaymentStatus), reportURL, reportFile, o.TechnicianNotes,
		nullString(o.DecidedBy), nullTime(o.DecidedAt), o.CreatedAt, o.UpdatedAt,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
