package seed

import (
	"context"
	"errors"
	"fmt"

	"catcare/internal/store"
	"catcare/internal/utils"
	"catcare/pkg/types"
)

type fakeUserSeed struct {
	ID    string
	Email string
	Name  string
	Role  types.Role
	Phone string
}

// The ids match Cognito subjects of the shared development pool.
var fakeUsers = []fakeUserSeed{
	{ID: "11111111-1111-1111-1111-111111111111", Email: "ana.lider+seed1@example.com", Name: "Ana", Role: types.RoleLeader, Phone: "+55 11 90000-0001"},
	{ID: "22222222-2222-2222-2222-222222222222", Email: "bia.souza+seed2@example.com", Name: "Bia", Role: types.RoleVolunteer},
	{ID: "33333333-3333-3333-3333-333333333333", Email: "carla.lima+seed3@example.com", Name: "Carla", Role: types.RoleVolunteer},
	{ID: "44444444-4444-4444-4444-444444444444", Email: "davi.rocha+seed4@example.com", Name: "Davi", Role: types.RoleVolunteer},
}

func seedVolunteerIDs() []string {
	ids := make([]string, 0, len(fakeUsers))
	for _, user := range fakeUsers {
		if user.Role == types.RoleVolunteer {
			ids = append(ids, user.ID)
		}
	}
	return ids
}

// SeedFakeUsers creates the development team. Existing users only get
// their identity fields refreshed so a promoted role survives reseeding.
func SeedFakeUsers(ctx context.Context, userRepo *store.UserRepository) error {
	seeded := 0
	for _, fakeUser := range fakeUsers {
		_, err := userRepo.User(ctx, fakeUser.ID)
		if err != nil {
			if !errors.Is(err, types.ErrUserNotFound) {
				return fmt.Errorf("failed to fetch fake user %s: %w", fakeUser.ID, err)
			}

			newUser := &types.User{
				ID:     fakeUser.ID,
				Email:  utils.StringPtr(fakeUser.Email),
				Name:   utils.StringPtr(fakeUser.Name),
				Role:   string(fakeUser.Role),
				Active: true,
			}
			if fakeUser.Phone != "" {
				newUser.Phone = utils.StringPtr(fakeUser.Phone)
			}

			if err := userRepo.Create(ctx, newUser); err != nil {
				return fmt.Errorf("failed to create fake user %s: %w", fakeUser.ID, err)
			}
			seeded++
			continue
		}

		if err := userRepo.UpsertIdentity(ctx, fakeUser.ID, fakeUser.Email, fakeUser.Name); err != nil {
			return fmt.Errorf("failed to update fake user %s: %w", fakeUser.ID, err)
		}
		seeded++
	}

	fmt.Printf("Fake users seeded: %d upserted\n", seeded)
	return nil
}
