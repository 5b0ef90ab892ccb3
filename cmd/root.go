package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/schemadiff/schemadiff/cmd/apply"
	"github.com/schemadiff/schemadiff/cmd/dump"
	"github.com/schemadiff/schemadiff/cmd/plan"
	"github.com/schemadiff/schemadiff/cmd/util"
	"github.com/schemadiff/schemadiff/internal/logger"
	"github.com/schemadiff/schemadiff/internal/version"
)

var (
	Debug      bool
	ConfigFile string
)

var RootCmd = &cobra.Command{
	Use:   "schemadiff",
	Short: "Relational schema diff and migration tool",
	Long: fmt.Sprintf(`schemadiff compares two versions of a schema and generates the DDL
migrating one into the other for MySQL and PostgreSQL.

Version: %s

Commands:
  plan    Generate migration plan
  apply   Apply schema migrations
  dump    Print the DDL creating or dropping a schema

Use "schemadiff [command] --help" for more information about a command.`, version.String()),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Setup(Debug)
		config, err := util.LoadConfig(util.AppFs, ConfigFile)
		if err != nil {
			return err
		}
		util.SetConfig(config)
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "Enable debug logging")
	RootCmd.PersistentFlags().StringVar(&ConfigFile, "config", "", "Config file (default .schemadiff.yaml in the working directory)")
	RootCmd.AddCommand(plan.PlanCmd)
	RootCmd.AddCommand(apply.ApplyCmd)
	RootCmd.AddCommand(dump.DumpCmd)
	RootCmd.AddCommand(VersionCmd)
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
