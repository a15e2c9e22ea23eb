package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RADAR-base/RADAR-Schemas/bootstrap"
	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
)

var (
	// Global flags
	rootDir  string
	cfgFile  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "radar-schemas",
	Short: "Resolve and validate the RADAR-base schema catalogue",
	Long: `radar-schemas checks the Avro schemas below commons/ and the source
specifications below specifications/ of a catalogue root.

Examples:
  radar-schemas validate                  # validate every schema
  radar-schemas validate -s PASSIVE -v    # validate one scope, list schemas
  radar-schemas validate --full           # also validate specifications
  radar-schemas list --raw                # print topic names
  radar-schemas topics                    # print the topic catalogue
  radar-schemas snapshot save             # store the current catalogue`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootDir, "root", "r", "", "catalogue root (default $"+bootstrap.EnvRoot+" or the working directory)")
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default <root>/schemas.yml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
}

func newApp() (*bootstrap.App, error) {
	return bootstrap.New(bootstrap.Options{
		Root:       rootDir,
		ConfigPath: cfgFile,
		LogLevel:   logLevel,
	})
}

func parseScopes(names []string) ([]schema.Scope, error) {
	var scopes []schema.Scope
	for _, name := range names {
		for _, part := range strings.Split(name, ",") {
			if part = strings.TrimSpace(part); part == "" {
				continue
			}
			scope, err := schema.ParseScope(part)
			if err != nil {
				return nil, err
			}
			scopes = append(scopes, scope)
		}
	}
	return scopes, nil
}
