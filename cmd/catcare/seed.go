package main

import (
	"context"
	"fmt"
	"time"

	"catcare/internal/db"
	"catcare/internal/seed"
	"catcare/internal/store"

	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with development data",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "dump",
			Usage: "Print every seeded user's assigned events",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		location, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
		}

		userRepo := store.NewUserRepository(pool)
		catRepo := store.NewCatRepository(pool)
		clinicRepo := store.NewClinicRepository(pool)
		eventRepo := store.NewEventRepository(pool)

		logrus.Info("Seeding users...")
		if err := seed.SeedFakeUsers(ctx, userRepo); err != nil {
			return fmt.Errorf("failed to seed users: %w", err)
		}

		logrus.Info("Seeding cats...")
		if err := seed.SeedCats(ctx, catRepo); err != nil {
			return fmt.Errorf("failed to seed cats: %w", err)
		}

		logrus.Info("Seeding clinics...")
		if err := seed.SeedClinics(ctx, clinicRepo, cfg.ClinicsFile); err != nil {
			return fmt.Errorf("failed to seed clinics: %w", err)
		}

		logrus.Info("Seeding events...")
		if err := seed.SeedEvents(ctx, eventRepo, time.Now().In(location)); err != nil {
			return fmt.Errorf("failed to seed events: %w", err)
		}

		if c.Bool("dump") {
			events, err := seed.VolunteerEvents(ctx, eventRepo)
			if err != nil {
				return err
			}
			pp.Println(events)
		}

		logrus.Info("Seed complete")

		return nil
	},
}
