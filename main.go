package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

const appName = "heart-risk"

var version = "dev"

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    appName,
		Usage:   "Heart disease risk prediction service",
		Version: version,
		Flags:   serveFlags(),
		Action:  runServe,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the prediction form and API (default)",
				Action: runServe,
			},
			predictCmd(),
			{
				Name:  "version",
				Usage: "Print the version",
				Action: func(_ context.Context, c *cli.Command) error {
					_, err := fmt.Fprintf(c.Root().Writer, "%s %s\n", appName, version)
					return err
				},
			},
		},
	}
}
