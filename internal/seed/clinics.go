package seed

import (
	"context"
	"fmt"

	"catcare/internal/referencedata"
	"catcare/internal/store"
)

// SeedClinics copies the clinic directory into the clinics table. The
// directory is the built-in list unless a file is given.
func SeedClinics(ctx context.Context, repo *store.ClinicRepository, path string) error {
	directory, err := referencedata.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load clinic directory: %w", err)
	}

	clinics, err := directory.Clinics(ctx)
	if err != nil {
		return fmt.Errorf("failed to list clinics: %w", err)
	}

	for _, clinic := range clinics {
		fmt.Printf("  Upserting clinic: %s (%s)\n", clinic.Name, clinic.Veterinarian)
		if err := repo.UpsertClinic(ctx, clinic); err != nil {
			return fmt.Errorf("failed to upsert clinic %s: %w", clinic.ID, err)
		}
	}

	fmt.Printf("Clinics seeded: %d upserted\n", len(clinics))
	return nil
}
