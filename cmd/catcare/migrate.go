package main

import (
	"context"
	"fmt"

	"catcare/internal/db"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var migrateCommand = &cli.Command{
	Name:      "migrate",
	Usage:     "Apply or inspect database migrations",
	ArgsUsage: "[up|down|status|version]",
	Action: func(c *cli.Context) error {
		command := c.Args().First()
		if command == "" {
			command = "up"
		}

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

		logrus.WithField("command", command).Info("running migrations")

		return db.Migrate(ctx, pool, command)
	},
}
