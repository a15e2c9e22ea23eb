package main

import (
	"fmt"
	"regexp"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/RADAR-base/RADAR-Schemas/core/catalogue"
	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the topics of the source catalogue",
	Long: `List the topics declared by the source specifications, after applying
the topic overrides of the configuration.

Examples:
  radar-schemas list
  radar-schemas list --raw --match '^android_'
  radar-schemas list --stream`,
	RunE: runList,
}

var (
	listRaw    bool
	listMatch  string
	listStream bool
	listQuiet  bool
	listDebug  bool
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listRaw, "raw", false, "print one topic name per line")
	listCmd.Flags().StringVarP(&listMatch, "match", "m", "", "only list topics matching this regular expression")
	listCmd.Flags().BoolVarP(&listStream, "stream", "S", false, "only list stream output topics")
	listCmd.Flags().BoolVarP(&listQuiet, "quiet", "q", false, "do not print the topic count")
	listCmd.Flags().BoolVar(&listDebug, "debug", false, "dump the full topic structures")
}

func runList(cmd *cobra.Command, args []string) error {
	var match *regexp.Regexp
	if listMatch != "" {
		var err error
		if match, err = regexp.Compile(listMatch); err != nil {
			return fmt.Errorf("invalid --match: %w", err)
		}
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	cat, err := a.Catalogue().Catalogue(cmd.Context())
	if err != nil {
		return err
	}
	topics := filterTopics(cat.Topics(), match, listStream)

	out := cmd.OutOrStdout()
	switch {
	case listDebug:
		spew.Fdump(out, topics)
	case listRaw:
		for _, t := range topics {
			fmt.Fprintln(out, t.Name)
		}
	default:
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TOPIC\tSCOPE\tKEY\tVALUE\tSOURCE")
		for _, t := range topics {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.Name, t.Scope, t.KeySchema, t.ValueSchema, t.Source)
		}
		w.Flush()
	}

	if !listQuiet && !listRaw {
		fmt.Fprintf(out, "\n%d topics\n", len(topics))
	}
	return nil
}

func filterTopics(topics []catalogue.Topic, match *regexp.Regexp, stream bool) []catalogue.Topic {
	var result []catalogue.Topic
	for _, t := range topics {
		if stream && t.Scope != schema.ScopeStream {
			continue
		}
		if match != nil && !match.MatchString(t.Name) {
			continue
		}
		result = append(result, t)
	}
	return result
}
