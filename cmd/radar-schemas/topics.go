package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/RADAR-base/RADAR-Schemas/core/catalogue"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Print the topic catalogue as YAML",
	Long: `Print every topic of the source catalogue with its key and value schema,
partitioning and registration settings. The output is meant for the tools
that create topics and register schemas.

Examples:
  radar-schemas topics
  radar-schemas topics --scope PASSIVE > passive-topics.yml`,
	RunE: runTopics,
}

var topicsScopes []string

func init() {
	rootCmd.AddCommand(topicsCmd)

	topicsCmd.Flags().StringSliceVarP(&topicsScopes, "scope", "s", nil, "only print topics of these scopes")
}

func runTopics(cmd *cobra.Command, args []string) error {
	scopes, err := parseScopes(topicsScopes)
	if err != nil {
		return err
	}
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	cat, err := a.Catalogue().Catalogue(cmd.Context(), scopes...)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(struct {
		Topics []catalogue.Topic `yaml:"topics"`
	}{cat.Topics()}); err != nil {
		return fmt.Errorf("encode topics: %w", err)
	}
	return enc.Close()
}
