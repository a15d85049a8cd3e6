// Package main is the entry point for the tag bot.
// Its sole responsibility is wiring dependencies together and starting the
// gateway. No business logic belongs here.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pkordes/tagbot/internal/config"
)

// Version is set at build time via ldflags
var Version = "dev"

// configPath is the --config flag shared by every subcommand.
var configPath string

func main() {
	os.Exit(exitCode(rootCmd.Execute()))
}

var rootCmd = &cobra.Command{
	Use:   "tagbot",
	Short: "Discord bot for per-server text snippets",
	Long: `tagbot stores short text snippets ("tags") per Discord server and
answers chat commands to list, show, create, edit and delete them.

Running tagbot with no subcommand is the same as "tagbot run".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	PersistentPreRun: func(*cobra.Command, []string) {
		// A .env file is optional; real environment variables still win.
		_ = godotenv.Load()
	},
	RunE: runBot,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML config file (default "+config.DefaultPath+")")
	rootCmd.Version = Version
}

// exitCode reports err on stderr and maps it to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	if errors.Is(err, config.ErrInvalid) {
		return ExitConfigError
	}
	return ExitError
}
