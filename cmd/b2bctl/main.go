// cmd/b2bctl/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/andresuchdata/b2b-portal/internal/app"
	"github.com/andresuchdata/b2b-portal/internal/config"
	"github.com/andresuchdata/b2b-portal/pkg/logger"
	"github.com/urfave/cli/v2"
)

type appKey struct{}

func openApp(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(c.String("log-level"))

	a, err := app.Build(c.Context, cfg, c.String("profile"))
	if err != nil {
		return err
	}
	c.Context = context.WithValue(c.Context, appKey{}, a)
	return nil
}

func closeApp(c *cli.Context) error {
	if a, ok := c.Context.Value(appKey{}).(*app.App); ok && a != nil {
		a.Close()
	}
	return nil
}

func appFrom(c *cli.Context) *app.App {
	return c.Context.Value(appKey{}).(*app.App)
}

func main() {
	cliApp := &cli.App{
		Name:  "b2bctl",
		Usage: "Order, restock and import products against the B2B portal API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "profile",
				Usage:   "Name of the saved session to use",
				Value:   "default",
				EnvVars: []string{"B2B_PROFILE"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Value:   "warn",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print results as JSON",
			},
		},
		Before:   openApp,
		After:    closeApp,
		Commands: commands(),
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", userMessage(err))
		os.Exit(1)
	}
}
