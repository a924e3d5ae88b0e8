package schedule

import (
	"context"
	"errors"
	"strings"
	"time"

	"catcare/pkg/types"
)

const (
	formDateLayout = "2006-01-02"
	formTimeLayout = "15:04"
)

// EventForm is the create/edit form. The field set shown depends on the
// category: a shift for Cleaning and Socialization, a medicine for
// Medication and a clinic for Consultation.
type EventForm struct {
	Category string `form:"category"`
	CatID    string `form:"cat_id"`
	Date     string `form:"date"`
	Time     string `form:"time"`
	Shift    string `form:"shift"`
	Medicine string `form:"medicine"`
	ClinicID string `form:"clinic_id"`
}

// Event validates the form and builds the event it describes. Only
// required fields are checked; a *ValidationError lists every failure.
func (f *EventForm) Event(ctx context.Context, clinics ClinicDirectory, loc *time.Location) (*types.CareEvent, error) {
	fields := map[string]string{}

	category, err := types.ParseCategory(f.Category)
	if err != nil {
		fields["category"] = "Choose an event type."
		return nil, &ValidationError{Fields: fields}
	}

	catID := strings.TrimSpace(f.CatID)
	if category.RequiresCat() && catID == "" {
		fields["cat_id"] = "Select a cat."
	}

	day, err := time.ParseInLocation(formDateLayout, strings.TrimSpace(f.Date), loc)
	if err != nil {
		fields["date"] = "Enter a valid date."
	}

	var hour, minute int
	var shift types.Shift
	if category.HasShifts() {
		shift = types.ShiftMorning
		if strings.TrimSpace(f.Shift) != "" {
			shift, err = types.ParseShift(f.Shift)
			if err != nil {
				fields["shift"] = "Choose morning or afternoon."
			}
		}
		hour, minute = shiftStart(shift)
	}

	if t := strings.TrimSpace(f.Time); t != "" {
		parsed, err := time.Parse(formTimeLayout, t)
		if err != nil {
			fields["time"] = "Enter a valid time."
		} else {
			hour, minute = parsed.Hour(), parsed.Minute()
		}
	} else if !category.HasShifts() {
		fields["time"] = "Enter a time."
	}

	var detail types.Detail
	switch category {
	case types.CategoryCleaning, types.CategorySocialization:
		detail, _ = types.NewShiftDetail(category, shift)
	case types.CategoryMedication:
		medicine := strings.TrimSpace(f.Medicine)
		if medicine == "" {
			fields["medicine"] = "Enter the medicine."
		}
		detail = types.Medication{Medicine: medicine}
	case types.CategoryConsultation:
		clinic, err := lookupClinic(ctx, clinics, strings.TrimSpace(f.ClinicID))
		if err != nil {
			fields["clinic_id"] = "Select a clinic."
		} else {
			detail = types.Consultation{Veterinarian: clinic.Veterinarian, Clinic: clinic.Name}
		}
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	event := &types.CareEvent{
		ScheduledAt: time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc),
		Detail:      detail,
	}
	if catID != "" {
		event.CatID = &catID
	}

	return event, nil
}

func lookupClinic(ctx context.Context, clinics ClinicDirectory, id string) (*types.Clinic, error) {
	if id == "" {
		return nil, types.ErrClinicNotFound
	}
	if clinics == nil {
		return nil, errors.New("no clinic directory configured")
	}
	return clinics.ClinicByID(ctx, id)
}

// formFromView pre-fills the edit form from an event. The clinic is found
// again through its veterinarian since events store names, not ids.
func formFromView(ctx context.Context, v EventView, clinics ClinicDirectory) EventForm {
	form := EventForm{
		Category: string(v.Category),
		CatID:    v.CatID,
		Date:     v.ScheduledAt.Format(formDateLayout),
		Time:     v.Time,
		Shift:    string(v.Shift),
		Medicine: v.Medicine,
	}

	if v.Category == types.CategoryConsultation && v.Veterinarian != "" && clinics != nil {
		if clinic, err := clinics.ClinicByVeterinarian(ctx, v.Veterinarian); err == nil {
			form.ClinicID = clinic.ID
		}
	}

	return form
}
