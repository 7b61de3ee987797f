// Package main provides the entry point for the websnatch CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"websnatch/internal/cli"
)

func main() {
	app := cli.New()

	if err := app.Execute(context.Background()); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			// The command already printed its message.
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
