package types

import (
	"fmt"
	"strings"
	"time"
)

// Category is the kind of care an event represents. The set is closed.
type Category string

const (
	CategoryCleaning      Category = "cleaning"
	CategorySocialization Category = "socialization"
	CategoryMedication    Category = "medication"
	CategoryConsultation  Category = "consultation"
)

var Categories = []Category{
	CategoryCleaning,
	CategorySocialization,
	CategoryMedication,
	CategoryConsultation,
}

// Label is the value written to the category column.
func (c Category) Label() string {
	switch c {
	case CategoryCleaning:
		return "Cleaning"
	case CategorySocialization:
		return "Socialization"
	case CategoryMedication:
		return "Medication"
	case CategoryConsultation:
		return "Consultation"
	default:
		return ""
	}
}

func (c Category) Valid() bool {
	return c.Label() != ""
}

// HasShifts reports whether events of this category are organised in the
// fixed morning/afternoon pattern instead of a time of day.
func (c Category) HasShifts() bool {
	return c == CategoryCleaning || c == CategorySocialization
}

// RequiresCat reports whether an event of this category must reference a cat.
func (c Category) RequiresCat() bool {
	return c == CategoryMedication || c == CategoryConsultation
}

// ParseCategory accepts tab slugs, stored labels and the legacy Portuguese
// labels still present in older rows.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cleaning", "limpeza":
		return CategoryCleaning, nil
	case "socialization", "socializacao", "socialização":
		return CategorySocialization, nil
	case "medication", "medicacao", "medicação":
		return CategoryMedication, nil
	case "consultation", "consultas", "consulta":
		return CategoryConsultation, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

type Shift string

const (
	ShiftMorning   Shift = "Morning"
	ShiftAfternoon Shift = "Afternoon"
)

var Shifts = []Shift{ShiftMorning, ShiftAfternoon}

func ParseShift(s string) (Shift, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "morning", "manhã", "manha":
		return ShiftMorning, nil
	case "afternoon", "tarde":
		return ShiftAfternoon, nil
	}
	return "", fmt.Errorf("unknown shift %q", s)
}

// Detail carries the category specific payload of a CareEvent. Only the
// four types below implement it.
type Detail interface {
	Category() Category
	columns() map[string]any
}

type Cleaning struct {
	Shift Shift
}

type Socialization struct {
	Shift Shift
}

type Medication struct {
	Medicine string
}

type Consultation struct {
	Veterinarian string
	Clinic       string
}

func (Cleaning) Category() Category      { return CategoryCleaning }
func (Socialization) Category() Category { return CategorySocialization }
func (Medication) Category() Category    { return CategoryMedication }
func (Consultation) Category() Category  { return CategoryConsultation }

func (d Cleaning) columns() map[string]any {
	return map[string]any{"shift": string(d.Shift)}
}

func (d Socialization) columns() map[string]any {
	return map[string]any{"shift": string(d.Shift)}
}

func (d Medication) columns() map[string]any {
	return map[string]any{"medicine": d.Medicine}
}

func (d Consultation) columns() map[string]any {
	return map[string]any{"veterinarian": d.Veterinarian, "clinic": d.Clinic}
}

// ShiftOf returns the shift of a Cleaning or Socialization detail.
func ShiftOf(d Detail) (Shift, bool) {
	switch v := d.(type) {
	case Cleaning:
		return v.Shift, true
	case Socialization:
		return v.Shift, true
	}
	return "", false
}

// NewShiftDetail builds the detail for a shift based category.
func NewShiftDetail(c Category, s Shift) (Detail, error) {
	switch c {
	case CategoryCleaning:
		return Cleaning{Shift: s}, nil
	case CategorySocialization:
		return Socialization{Shift: s}, nil
	}
	return nil, fmt.Errorf("category %s has no shifts", c)
}

type CareEvent struct {
	ID          string
	ScheduledAt time.Time
	CatID       *string
	VolunteerID *string
	Completed   bool
	Detail      Detail
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (e *CareEvent) Category() Category {
	return e.Detail.Category()
}

// Available is true while nobody has claimed the event.
func (e *CareEvent) Available() bool {
	return e.VolunteerID == nil || *e.VolunteerID == ""
}

func (e *CareEvent) Validate() error {
	if e.Detail == nil {
		return fmt.Errorf("event has no detail")
	}
	if e.Category().RequiresCat() && (e.CatID == nil || *e.CatID == "") {
		return fmt.Errorf("%s event requires a cat", e.Category())
	}
	switch d := e.Detail.(type) {
	case Cleaning, Socialization:
		s, _ := ShiftOf(d)
		if _, err := ParseShift(string(s)); err != nil {
			return err
		}
	case Medication:
		if strings.TrimSpace(d.Medicine) == "" {
			return fmt.Errorf("medication event requires a medicine")
		}
	case Consultation:
		if strings.TrimSpace(d.Clinic) == "" {
			return fmt.Errorf("consultation event requires a clinic")
		}
	}
	return nil
}

// PatchColumns returns the columns an edit may change for this event: the
// timestamp, the cat and the fields belonging to its fixed category.
func (e *CareEvent) PatchColumns() map[string]any {
	out := e.Detail.columns()
	out["scheduled_at"] = e.ScheduledAt
	out["cat_id"] = e.CatID
	return out
}

// EventRow is the stored shape of an event.
type EventRow struct {
	ID           string    `db:"id"`
	Category     string    `db:"category"`
	Shift        *string   `db:"shift"`
	ScheduledAt  time.Time `db:"scheduled_at"`
	CatID        *string   `db:"cat_id"`
	Medicine     *string   `db:"medicine"`
	Clinic       *string   `db:"clinic"`
	Veterinarian *string   `db:"veterinarian"`
	Available    bool      `db:"available"`
	VolunteerID  *string   `db:"volunteer_id"`
	Completed    bool      `db:"completed"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// CareEvent converts a stored row, rejecting rows whose category or
// category specific fields cannot be represented.
func (r *EventRow) CareEvent() (*CareEvent, error) {
	category, err := ParseCategory(r.Category)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", r.ID, err)
	}

	var detail Detail
	switch category {
	case CategoryCleaning, CategorySocialization:
		if r.Shift == nil {
			return nil, fmt.Errorf("event %s: %s event without shift", r.ID, category)
		}
		shift, err := ParseShift(*r.Shift)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", r.ID, err)
		}
		detail, _ = NewShiftDetail(category, shift)
	case CategoryMedication:
		detail = Medication{Medicine: deref(r.Medicine)}
	case CategoryConsultation:
		detail = Consultation{Veterinarian: deref(r.Veterinarian), Clinic: deref(r.Clinic)}
	}

	volunteerID := r.VolunteerID
	if volunteerID != nil && *volunteerID == "" {
		volunteerID = nil
	}

	return &CareEvent{
		ID:          r.ID,
		ScheduledAt: r.ScheduledAt,
		CatID:       r.CatID,
		VolunteerID: volunteerID,
		Completed:   r.Completed,
		Detail:      detail,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

// NewEventRow flattens an event for insertion.
func NewEventRow(e *CareEvent) *EventRow {
	row := &EventRow{
		ID:          e.ID,
		Category:    e.Category().Label(),
		ScheduledAt: e.ScheduledAt,
		CatID:       e.CatID,
		Available:   e.Available(),
		VolunteerID: e.VolunteerID,
		Completed:   e.Completed,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}

	switch d := e.Detail.(type) {
	case Cleaning:
		row.Shift = ptr(string(d.Shift))
	case Socialization:
		row.Shift = ptr(string(d.Shift))
	case Medication:
		row.Medicine = ptr(d.Medicine)
	case Consultation:
		row.Veterinarian = ptr(d.Veterinarian)
		row.Clinic = ptr(d.Clinic)
	}

	return row
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ptr(s string) *string {
	return &s
}
