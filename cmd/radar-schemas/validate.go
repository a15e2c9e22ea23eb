package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/RADAR-base/RADAR-Schemas/app"
	"github.com/RADAR-base/RADAR-Schemas/bootstrap"
	"github.com/RADAR-base/RADAR-Schemas/config"
	"github.com/RADAR-base/RADAR-Schemas/core/catalogue"
	"github.com/RADAR-base/RADAR-Schemas/core/loader"
	"github.com/RADAR-base/RADAR-Schemas/core/validation"
	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the schema catalogue",
	Long: `Resolve every schema of the catalogue and validate it.

Checks:
  - every schema file parses and resolves
  - namespaces and record names match the file location
  - names, documentation and default values follow the conventions
  - records have the temporal fields of their scope
  - records survive a conversion to the Connect data model and back

With --from-specification only the schemas used by the source
specifications are checked. With --full the specifications themselves are
checked too. The command exits with status 1 if anything is reported.

Examples:
  radar-schemas validate
  radar-schemas validate --scope PASSIVE --verbose
  radar-schemas validate --from-specification --full
  radar-schemas validate --watch`,
	RunE: runValidate,
}

var (
	validateScopes      []string
	validateVerbose     bool
	validateQuiet       bool
	validateFromSpec    bool
	validateFull        bool
	validateWatch       bool
	validateMetricsFile string
)

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringSliceVarP(&validateScopes, "scope", "s", nil, "only validate these scopes")
	validateCmd.Flags().BoolVarP(&validateVerbose, "verbose", "v", false, "list every validated schema")
	validateCmd.Flags().BoolVarP(&validateQuiet, "quiet", "q", false, "only print diagnostics")
	validateCmd.Flags().BoolVarP(&validateFromSpec, "from-specification", "f", false, "validate the schemas used by the specifications")
	validateCmd.Flags().BoolVar(&validateFull, "full", false, "also validate the specification documents")
	validateCmd.Flags().BoolVarP(&validateWatch, "watch", "w", false, "validate again whenever the catalogue changes")
	validateCmd.Flags().StringVar(&validateMetricsFile, "metrics-file", "", "write Prometheus metrics to this file")
}

func runValidate(cmd *cobra.Command, args []string) error {
	scopes, err := parseScopes(validateScopes)
	if err != nil {
		return err
	}
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if !validateWatch {
		return validateOnce(cmd.Context(), out, a, scopes)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watch(ctx, out, a, scopes)
}

func validateOnce(ctx context.Context, out io.Writer, a *bootstrap.App, scopes []schema.Scope) error {
	svc := a.Catalogue()
	store, unresolved, err := svc.Resolve(ctx)
	if err != nil {
		return err
	}
	validator := app.NewSchemaValidator(store, unresolved, svc.Config().Schemas, a.Metrics, a.Logger).
		Restrict(scopes...)

	var cat *catalogue.Catalogue
	if validateFromSpec || validateFull {
		if cat, err = svc.Catalogue(ctx); err != nil {
			return err
		}
	}

	var diags []validation.Diagnostic
	if validateFromSpec {
		diags, err = fromSpecification(ctx, validator, cat, scopes)
	} else {
		diags, err = validator.ValidateAll(ctx, true)
	}
	if err != nil {
		return err
	}
	if validateFull {
		specs, err := validator.ValidateSpecifications(ctx, cat)
		if err != nil {
			return err
		}
		diags = validation.Merge(diags, specs)
	}

	if err := a.WriteMetrics(validateMetricsFile); err != nil {
		a.Logger.Error().Err(err).Msg("metrics not written")
	}

	validated := validator.Validated()
	if validateVerbose {
		fmt.Fprintln(out, "Validated schemas:")
		for _, name := range validated {
			fmt.Fprintf(out, "  - %s\n", name)
		}
		fmt.Fprintln(out)
	}
	return report(out, diags, len(validated), validateQuiet)
}

func fromSpecification(ctx context.Context, validator *app.SchemaValidator, cat *catalogue.Catalogue, scopes []schema.Scope) ([]validation.Diagnostic, error) {
	if len(scopes) == 0 {
		return validator.ValidateAgainstSpecification(ctx, cat, "")
	}
	var lists [][]validation.Diagnostic
	for _, scope := range scopes {
		diags, err := validator.ValidateAgainstSpecification(ctx, cat, scope)
		if err != nil {
			return nil, err
		}
		lists = append(lists, diags)
	}
	return validation.Merge(lists...), nil
}

// watch validates once and then again after every change below the
// catalogue root, until ctx is done.
func watch(ctx context.Context, out io.Writer, a *bootstrap.App, scopes []schema.Scope) error {
	changes := make(chan []string, 1)
	a.Config.OnTreeChange(func(changed []string) {
		select {
		case changes <- changed:
		default:
		}
	})
	a.Config.OnChange(func(_ *config.Config) {
		select {
		case changes <- nil:
		default:
		}
	})
	if err := a.Config.WatchTree(
		filepath.Join(a.Root, loader.SchemaDir),
		filepath.Join(a.Root, loader.SpecificationDir),
	); err != nil {
		return err
	}

	rerun := func() {
		err := validateOnce(ctx, out, a, scopes)
		if err != nil && !errors.Is(err, errDiagnostics) {
			a.Logger.Error().Err(err).Msg("validation failed to run")
		}
	}
	rerun()
	for {
		select {
		case <-ctx.Done():
			return nil
		case changed := <-changes:
			a.Logger.Info().Strs("changed", changed).Msg("catalogue changed, validating again")
			if err := a.Reload(); err != nil {
				a.Logger.Error().Err(err).Msg("reload failed")
				continue
			}
			rerun()
		}
	}
}
