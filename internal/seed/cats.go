package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catcare/internal/store"
	"catcare/internal/utils"
	"catcare/pkg/types"
)

// To generate new IDs: `go run ./cmd/catcare nanoid`
var fakeCats = []types.Cat{
	{
		ID:        "Qm3kV8tWx1pLr9Zc4yHbN2dFs6GjKa0e",
		Name:      "Mingau",
		RescuedOn: utils.TimePtr(time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)),
		Sex:       utils.StringPtr(string(types.CatSexMale)),
		Status:    utils.StringPtr("In treatment"),
		Notes:     utils.StringPtr("Antibiotic twice a day until the end of the month."),
	},
	{
		ID:        "Tz8pR2nXc5vLq1Wm7bKd4sHy9FgJe3Au",
		Name:      "Frajola",
		RescuedOn: utils.TimePtr(time.Date(2025, 9, 21, 0, 0, 0, 0, time.UTC)),
		BornOn:    utils.TimePtr(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
		Sex:       utils.StringPtr(string(types.CatSexMale)),
		Status:    utils.StringPtr("Fostered"),
	},
	{
		ID:     "Hc6Wn1sPq8Xr3Lz5Ty0Vb9Kd2Fm7Gj4E",
		Name:   "Pretinha",
		Sex:    utils.StringPtr(string(types.CatSexFemale)),
		Status: utils.StringPtr("Available for adoption"),
	},
}

// SeedCats inserts the development cats that are missing. Cats already in
// the database are left alone.
func SeedCats(ctx context.Context, repo *store.CatRepository) error {
	created := 0
	for _, cat := range fakeCats {
		_, err := repo.Cat(ctx, cat.ID)
		if err == nil {
			fmt.Printf("  Cat already present: %s\n", cat.Name)
			continue
		}
		if !errors.Is(err, types.ErrCatNotFound) {
			return fmt.Errorf("failed to fetch cat %s: %w", cat.ID, err)
		}

		fmt.Printf("  Creating cat: %s (id: %s)\n", cat.Name, cat.ID)
		if err := repo.CreateCat(ctx, &cat); err != nil {
			return fmt.Errorf("failed to create cat %s: %w", cat.Name, err)
		}
		created++
	}

	fmt.Printf("Cats seeded: %d created\n", created)
	return nil
}
