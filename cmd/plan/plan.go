package plan

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/schemadiff/schemadiff/cmd/util"
	"github.com/schemadiff/schemadiff/internal/logger"
	"github.com/schemadiff/schemadiff/internal/plan"
	"github.com/schemadiff/schemadiff/internal/platform"
)

var (
	planFrom            string
	planTo              string
	planPlatforms       []string
	planPlatformVersion string
	planDetectRenames   bool
	planValidate        bool
	outputHuman         string
	outputJSON          string
	outputSQL           string
	planNoColor         bool
)

var PlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate migration plan between two schema files",
	Long: `Generate a migration plan turning the current schema (--from) into the desired schema (--to).
Several platforms can be given; their plans are generated concurrently.`,
	RunE:         runPlan,
	SilenceUsage: true,
	PreRunE:      util.PreRunEWithConfig("from", "to", "platform"),
}

func init() {
	// Schema file flags
	PlanCmd.Flags().StringVar(&planFrom, "from", "", "Path to the current schema file (required) (env: SCHEMADIFF_FROM)")
	PlanCmd.Flags().StringVar(&planTo, "to", "", "Path to the desired schema file (required) (env: SCHEMADIFF_TO)")

	// Platform flags
	PlanCmd.Flags().StringSliceVar(&planPlatforms, "platform", []string{"postgres"}, "Target platforms: "+strings.Join(platform.Names(), ", ")+" (env: SCHEMADIFF_PLATFORM)")
	PlanCmd.Flags().StringVar(&planPlatformVersion, "platform-version", "", "Server version of the target platform, e.g. 8.0.32 (env: SCHEMADIFF_PLATFORM_VERSION)")
	PlanCmd.Flags().BoolVar(&planDetectRenames, "detect-column-renames", false, "Treat a dropped and a created column differing only by name as a rename")
	PlanCmd.Flags().BoolVar(&planValidate, "validate", false, "Parse the generated PostgreSQL statements before printing them")

	// Output flags
	PlanCmd.Flags().StringVar(&outputHuman, "output-human", "", "Output human-readable format to stdout or file path")
	PlanCmd.Flags().StringVar(&outputJSON, "output-json", "", "Output JSON format to stdout or file path")
	PlanCmd.Flags().StringVar(&outputSQL, "output-sql", "", "Output SQL format to stdout or file path")
	PlanCmd.Flags().BoolVar(&planNoColor, "no-color", false, "Disable colored output")
}

func runPlan(cmd *cobra.Command, args []string) error {
	config := &PlanConfig{
		From:                planFrom,
		To:                  planTo,
		Platforms:           planPlatforms,
		PlatformVersion:     planPlatformVersion,
		DetectColumnRenames: planDetectRenames,
		Validate:            planValidate,
	}

	plans, err := GeneratePlans(cmd.Context(), config)
	if err != nil {
		return err
	}

	outputs, err := determineOutputs()
	if err != nil {
		return err
	}

	for _, output := range outputs {
		if err := processOutput(plans, output, cmd.OutOrStdout()); err != nil {
			return err
		}
	}
	return nil
}

// PlanConfig holds configuration for plan generation
type PlanConfig struct {
	From                string
	To                  string
	Platforms           []string
	PlatformVersion     string
	DetectColumnRenames bool
	Validate            bool
}

// GeneratePlans compares the schema files once and renders the diff for
// every platform concurrently. Plans follow the order of config.Platforms.
func GeneratePlans(ctx context.Context, config *PlanConfig) ([]*plan.Plan, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(config.Platforms) == 0 {
		return nil, fmt.Errorf("at least one platform is required")
	}

	platforms := make([]platform.Platform, len(config.Platforms))
	for i, name := range config.Platforms {
		p, err := platform.New(name, config.PlatformVersion)
		if err != nil {
			return nil, err
		}
		platforms[i] = p
	}

	schemaDiff, err := util.CompareFiles(ctx, config.From, config.To, config.DetectColumnRenames)
	if err != nil {
		return nil, err
	}

	plans := make([]*plan.Plan, len(platforms))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range platforms {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			migrationPlan, err := plan.NewPlan(p, schemaDiff)
			if err != nil {
				return err
			}
			if config.Validate {
				if err := platform.Validate(p, migrationPlan.Queries()); err != nil {
					return fmt.Errorf("generated %s migration is invalid: %w", p.Name(), err)
				}
			}
			logger.Get().Debug("Generated plan", "platform", p.Name(), "steps", len(migrationPlan.Steps))
			plans[i] = migrationPlan
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return plans, nil
}

// outputSpec represents a single output specification
type outputSpec struct {
	format string // "human", "json", or "sql"
	target string // "stdout" or file path
}

// determineOutputs parses the output flags and returns the list of outputs to generate
func determineOutputs() ([]outputSpec, error) {
	var outputs []outputSpec
	stdoutCount := 0

	for _, spec := range []outputSpec{
		{format: "human", target: outputHuman},
		{format: "json", target: outputJSON},
		{format: "sql", target: outputSQL},
	} {
		if spec.target == "" {
			continue
		}
		if spec.target == "stdout" {
			stdoutCount++
		}
		outputs = append(outputs, spec)
	}

	// Validate only one stdout
	if stdoutCount > 1 {
		return nil, fmt.Errorf("only one output format can use stdout")
	}

	// Default behavior: if no outputs specified, output human to stdout
	if len(outputs) == 0 {
		outputs = append(outputs, outputSpec{format: "human", target: "stdout"})
	}

	return outputs, nil
}

// renderOutput renders the plans in the given format. Several plans are
// separated by a platform header, or listed in a JSON array.
func renderOutput(plans []*plan.Plan, format string, useColor bool) (string, error) {
	switch format {
	case "human":
		sections := make([]string, len(plans))
		for i, migrationPlan := range plans {
			sections[i] = migrationPlan.HumanColored(useColor)
		}
		return strings.Join(sections, "\n"), nil
	case "json":
		var content string
		var err error
		if len(plans) == 1 {
			content, err = plans[0].ToJSON()
		} else {
			content, err = plan.ToJSONList(plans)
		}
		if err != nil {
			return "", fmt.Errorf("failed to generate JSON output: %w", err)
		}
		return content + "\n", nil
	case "sql":
		if len(plans) == 1 {
			return plans[0].ToSQL(), nil
		}
		var b strings.Builder
		for i, migrationPlan := range plans {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "-- %s\n\n", migrationPlan.Platform)
			b.WriteString(migrationPlan.ToSQL())
		}
		return b.String(), nil
	}
	return "", fmt.Errorf("unknown output format: %s", format)
}

// processOutput writes the plans in the specified format to the target destination
func processOutput(plans []*plan.Plan, output outputSpec, stdout io.Writer) error {
	// Colors only make sense on stdout
	useColor := output.target == "stdout" && !planNoColor
	content, err := renderOutput(plans, output.format, useColor)
	if err != nil {
		return err
	}

	if output.target == "stdout" {
		_, err := io.WriteString(stdout, content)
		return err
	}
	if err := os.WriteFile(output.target, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s output to %s: %w", output.format, output.target, err)
	}
	return nil
}
