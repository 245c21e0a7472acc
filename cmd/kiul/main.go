// Command kiul runs the institute site backend and its terminal tools.
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	envFile string
	baseURL string
)

func main() {
	root := &cobra.Command{
		Use:     "kiul",
		Short:   "KIUL site backend",
		Long:    "kiul serves the institute site API (assistant relay, email, publication search, admin) and talks to it from the terminal.",
		Version: version,
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(serveCmd())
	root.AddCommand(chatCmd())
	root.AddCommand(searchCmd())
	root.AddCommand(tokenCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// addClientFlags registers flags shared by commands that call a running server.
func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&baseURL, "url", "http://localhost:8080", "base URL of the site API")
}

// cliLogger logs warnings and errors to stderr for terminal commands.
func cliLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger().
		Level(zerolog.WarnLevel)
}
