package main

import (
	"fmt"

	"catcare/internal/utils"

	"github.com/urfave/cli/v2"
)

// nanoidCommand prints ids in the format the store assigns, for fixtures
// such as the seed cats.
var nanoidCommand = &cli.Command{
	Name:  "nanoid",
	Usage: "print fresh row ids for seed data",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"n"},
			Value:   1,
		},
		&cli.IntFlag{
			Name:  "length",
			Usage: "id length",
			Value: utils.RowIDLength,
		},
	},
	Action: func(c *cli.Context) error {
		if c.Int("count") < 1 {
			return cli.Exit("count must be at least 1", 1)
		}

		for range c.Int("count") {
			fmt.Println(utils.RandomID(c.Int("length")))
		}
		return nil
	},
}
