package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var version = "v0.1.0"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:        "room-broker",
		Usage:       "video room broker: rooms, participant tokens and presence",
		Description: "run without subcommands to start the server",
		Version:     version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to YAML config (default ./config/config.yaml, optional)",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "start HTTP and websocket server",
				Action: serve,
			},
			{
				Name:   "token",
				Usage:  "print a signed participant token",
				Action: createToken,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "room",
						Usage:    "room id at the provider",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "role",
						Usage: "participant role embedded into the token",
						Value: "guest",
					},
				},
			},
			{
				Name:   "verify-token",
				Usage:  "check a participant token signature and print its claims",
				Action: verifyToken,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "token",
						Usage:    "signed participant token",
						Required: true,
					},
				},
			},
		},
	}
}
