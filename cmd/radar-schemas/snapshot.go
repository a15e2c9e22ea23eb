package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/RADAR-base/RADAR-Schemas/domain/snapshot"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Store and compare copies of the resolved catalogue",
	Long: `Snapshots keep the canonical text of every resolved schema in a local
SQLite database, so that later versions of the catalogue can be compared
against them.

Examples:
  radar-schemas snapshot save
  radar-schemas snapshot diff
  radar-schemas snapshot diff --id 0190f7a2-...
  radar-schemas snapshot list`,
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Store a snapshot of the current catalogue",
	RunE:  runSnapshotSave,
}

var snapshotDiffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare the current catalogue with a snapshot",
	Long: `Compare the current catalogue with the latest snapshot, or with the
snapshot given by --id. Exits with status 1 if any schema changed.`,
	RunE: runSnapshotDiff,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots",
	RunE:  runSnapshotList,
}

var (
	snapshotID    string
	snapshotLimit int
)

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotSaveCmd, snapshotDiffCmd, snapshotListCmd)

	snapshotDiffCmd.Flags().StringVar(&snapshotID, "id", "", "snapshot to compare with (default latest)")
	snapshotListCmd.Flags().IntVarP(&snapshotLimit, "limit", "n", 20, "number of snapshots to list")
}

func runSnapshotSave(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	snapshots, err := a.Snapshots(ctx)
	if err != nil {
		return err
	}
	store, unresolved, err := a.Catalogue().Resolve(ctx)
	if err != nil {
		return err
	}
	if len(unresolved) > 0 {
		a.Logger.Warn().Int("unresolved", len(unresolved)).Msg("unresolved schemas are not part of the snapshot")
	}

	snap, err := snapshots.Save(ctx, store)
	if err != nil {
		return err
	}
	ok, _ := marks(cmd.OutOrStdout())
	fmt.Fprintf(cmd.OutOrStdout(), "%s Snapshot %s saved with %d schemas\n", ok, snap.ID, len(snap.Entries))
	return nil
}

func runSnapshotDiff(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	snapshots, err := a.Snapshots(ctx)
	if err != nil {
		return err
	}
	store, _, err := a.Catalogue().Resolve(ctx)
	if err != nil {
		return err
	}

	base, changes, err := snapshots.Diff(ctx, store, snapshotID)
	if errors.Is(err, snapshot.ErrNotFound) {
		return fmt.Errorf("no snapshot to compare with, run 'radar-schemas snapshot save' first: %w", err)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ok, fail := marks(out)
	if len(changes) == 0 {
		fmt.Fprintf(out, "%s No changes since snapshot %s\n", ok, base.ID)
		return nil
	}
	fmt.Fprintf(out, "Changes since snapshot %s (%s):\n", base.ID, base.CreatedAt.Format(time.RFC3339))
	for _, c := range changes {
		fmt.Fprintf(out, "  %-7s %s\n", c.Kind, c.FullName)
		if c.Diff != "" {
			fmt.Fprintln(out, c.Diff)
		}
	}
	fmt.Fprintf(out, "%s %d schemas changed\n", fail, len(changes))
	return errDiagnostics
}

func runSnapshotList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	snapshots, err := a.Snapshots(cmd.Context())
	if err != nil {
		return err
	}
	list, err := snapshots.List(cmd.Context(), snapshotLimit)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No snapshots stored.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED")
	for _, s := range list {
		fmt.Fprintf(w, "%s\t%s\n", s.ID, s.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}
