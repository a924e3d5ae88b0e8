package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catcare/internal/referencedata"
	"catcare/internal/store"
	"catcare/pkg/types"
)

// sampleEvents lays out a week of care starting at start: both shifts of
// cleaning and socialization every day, a daily medication for the first
// cat, and one consultation. Ids are derived from the date so reseeding the
// same week is a no-op.
func sampleEvents(start time.Time) []*types.EventRow {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	volunteers := seedVolunteerIDs()
	clinics, _ := referencedata.Default().Clinics(context.Background())
	clinic := clinics[0]

	var rows []*types.EventRow
	for day := 0; day < 7; day++ {
		date := start.AddDate(0, 0, day)
		stamp := date.Format("20060102")

		for _, category := range []types.Category{types.CategoryCleaning, types.CategorySocialization} {
			for i, shift := range types.Shifts {
				hour := 9
				if shift == types.ShiftAfternoon {
					hour = 14
				}
				row := &types.EventRow{
					ID:          fmt.Sprintf("seed-%s-%s-%d", stamp, category, i),
					Category:    category.Label(),
					Shift:       ptr(string(shift)),
					ScheduledAt: date.Add(time.Duration(hour) * time.Hour),
					Available:   true,
				}
				// Leave most slots open so there is something to claim.
				if day%3 == 0 && i == 0 {
					row.VolunteerID = ptr(volunteers[day%len(volunteers)])
					row.Available = false
				}
				rows = append(rows, row)
			}
		}

		rows = append(rows, &types.EventRow{
			ID:          fmt.Sprintf("seed-%s-medication", stamp),
			Category:    types.CategoryMedication.Label(),
			CatID:       ptr(fakeCats[0].ID),
			Medicine:    ptr("Antibiotic"),
			ScheduledAt: date.Add(8*time.Hour + 30*time.Minute),
			Available:   true,
		})
	}

	rows = append(rows, &types.EventRow{
		ID:           fmt.Sprintf("seed-%s-consultation", start.Format("20060102")),
		Category:     types.CategoryConsultation.Label(),
		CatID:        ptr(fakeCats[1].ID),
		Veterinarian: ptr(clinic.Veterinarian),
		Clinic:       ptr(clinic.Name),
		ScheduledAt:  start.AddDate(0, 0, 2).Add(10 * time.Hour),
		Available:    true,
	})

	return rows
}

// SeedEvents fills the week starting at start with sample events. Users
// and cats must be seeded first.
func SeedEvents(ctx context.Context, repo *store.EventRepository, start time.Time) error {
	created := 0
	for _, row := range sampleEvents(start) {
		_, err := repo.Event(ctx, row.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, types.ErrEventNotFound) {
			return fmt.Errorf("failed to fetch event %s: %w", row.ID, err)
		}

		if err := repo.CreateEvent(ctx, row); err != nil {
			return fmt.Errorf("failed to create event %s: %w", row.ID, err)
		}
		created++
	}

	fmt.Printf("Events seeded: %d created\n", created)
	return nil
}

// VolunteerEvents returns each seeded user's assigned events, keyed by
// user name, for the seed command's dump.
func VolunteerEvents(ctx context.Context, repo *store.EventRepository) (map[string][]*types.EventRow, error) {
	out := make(map[string][]*types.EventRow, len(fakeUsers))
	for _, user := range fakeUsers {
		rows, err := repo.EventsByVolunteer(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch events of %s: %w", user.Name, err)
		}
		out[user.Name] = rows
	}
	return out, nil
}

func ptr(s string) *string {
	return &s
}
