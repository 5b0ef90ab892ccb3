package dump

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/schemadiff/schemadiff"
	"github.com/schemadiff/schemadiff/cmd/util"
	"github.com/schemadiff/schemadiff/internal/dump"
	"github.com/schemadiff/schemadiff/internal/logger"
	"github.com/schemadiff/schemadiff/internal/platform"
)

var (
	file            string
	platformName    string
	platformVersion string
	drop            bool
	output          string
	multiFile       bool
)

var DumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the DDL of a schema file",
	Long: `Dump the DDL creating every table, sequence and view of a schema file for the target platform.
With --drop the DDL removing them is dumped instead, in reverse order.`,
	RunE:         runDump,
	SilenceUsage: true,
	PreRunE:      util.PreRunEWithConfig("file", "platform"),
}

func init() {
	DumpCmd.Flags().StringVar(&file, "file", "", "Path to the schema file (required)")
	DumpCmd.Flags().StringVar(&platformName, "platform", "postgres", "Target platform (env: SCHEMADIFF_PLATFORM)")
	DumpCmd.Flags().StringVar(&platformVersion, "platform-version", "", "Server version of the target platform")
	DumpCmd.Flags().BoolVar(&drop, "drop", false, "Dump the statements dropping the schema objects")
	DumpCmd.Flags().StringVar(&output, "output", "", "Output file path (default: stdout)")
	DumpCmd.Flags().BoolVar(&multiFile, "multi-file", false, "Output schema to multiple files organized by object type (requires --output)")
}

func runDump(cmd *cobra.Command, args []string) error {
	if multiFile && output == "" {
		// When --multi-file is used but no --output specified, emit warning and use single-file mode
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: --multi-file flag requires --output to be specified. Fallback to single-file mode.\n")
		multiFile = false
	}

	p, err := platform.New(platformName, platformVersion)
	if err != nil {
		return err
	}

	schemas, err := util.LoadSchemas(cmd.Context(), file)
	if err != nil {
		return err
	}
	schema := schemas[0]

	var steps []schemadiff.Step
	if drop {
		steps, err = schemadiff.DropSteps(p, schema)
	} else {
		steps, err = schemadiff.CreateSteps(p, schema)
	}
	if err != nil {
		return fmt.Errorf("failed to dump schema %s for %s: %w", schema.Name(), p.Name(), err)
	}
	logger.Get().Debug("Dumping schema", "schema", schema.Name(), "platform", p.Name(), "statements", len(steps))

	formatter := dump.NewDumpFormatter(p.Name(), schema.Name())
	if multiFile {
		return formatter.FormatMultiFile(util.AppFs, steps, output)
	}

	content := formatter.FormatSingleFile(steps)
	if output == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), content)
		return err
	}
	if err := afero.WriteFile(util.AppFs, output, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write dump to %s: %w", output, err)
	}
	return nil
}
