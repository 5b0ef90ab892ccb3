package apply

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	planCmd "github.com/schemadiff/schemadiff/cmd/plan"
	"github.com/schemadiff/schemadiff/cmd/util"
	"github.com/schemadiff/schemadiff/internal/executor"
	"github.com/schemadiff/schemadiff/internal/logger"
	"github.com/schemadiff/schemadiff/internal/plan"
)

var (
	applyFrom            string
	applyTo              string
	applyPlatform        string
	applyPlatformVersion string
	applyDetectRenames   bool
	applyPlanFile        string
	applyDSN             string
	applyHost            string
	applyPort            int
	applyDB              string
	applyUser            string
	applyPassword        string
	applyPasswordPrompt  bool
	applySSLMode         string
	applyAutoApprove     bool
	applyNoColor         bool
	applyDryRun          bool
	applyLockTimeout     string
	applyApplicationName string
)

var ApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply migration plan to update a database schema",
	Long: `Apply the migration turning the current schema (--from) into the desired schema (--to) on a live database.
The plan is printed first and applied after confirmation, unless --auto-approve is given.`,
	RunE:         runApply,
	SilenceUsage: true,
	PreRunE:      util.PreRunEWithConfig("from", "to", "platform"),
}

func init() {
	// Schema file flags
	ApplyCmd.Flags().StringVar(&applyFrom, "from", "", "Path to the current schema file (required)")
	ApplyCmd.Flags().StringVar(&applyTo, "to", "", "Path to the desired schema file (required)")
	ApplyCmd.Flags().StringVar(&applyPlatform, "platform", "postgres", "Target platform")
	ApplyCmd.Flags().StringVar(&applyPlatformVersion, "platform-version", "", "Server version of the target platform")
	ApplyCmd.Flags().BoolVar(&applyDetectRenames, "detect-column-renames", false, "Treat a dropped and a created column differing only by name as a rename")
	ApplyCmd.Flags().StringVar(&applyPlanFile, "plan", "", "Apply a reviewed JSON plan, after checking it still matches the schema files")

	// Target database connection flags
	ApplyCmd.Flags().StringVar(&applyDSN, "dsn", "", "Connection string of the target database, overrides the connection flags (env: SCHEMADIFF_DSN)")
	ApplyCmd.Flags().StringVar(&applyHost, "host", "localhost", "Database server host (env: PGHOST / MYSQL_HOST)")
	ApplyCmd.Flags().IntVar(&applyPort, "port", 0, "Database server port, defaults to the platform port (env: PGPORT / MYSQL_TCP_PORT)")
	ApplyCmd.Flags().StringVar(&applyDB, "db", "", "Database name (env: PGDATABASE / MYSQL_DATABASE)")
	ApplyCmd.Flags().StringVar(&applyUser, "user", "", "Database user name (env: PGUSER / MYSQL_USER)")
	ApplyCmd.Flags().StringVar(&applyPassword, "password", "", "Database password (env: PGPASSWORD / MYSQL_PWD)")
	ApplyCmd.Flags().BoolVar(&applyPasswordPrompt, "password-prompt", false, "Read the database password from the terminal")
	ApplyCmd.Flags().StringVar(&applySSLMode, "sslmode", "prefer", "PostgreSQL SSL mode")
	ApplyCmd.Flags().StringVar(&applyApplicationName, "application-name", "schemadiff", "Application name for PostgreSQL connections (visible in pg_stat_activity)")

	// Apply behavior flags
	ApplyCmd.Flags().BoolVar(&applyAutoApprove, "auto-approve", false, "Apply changes without prompting for approval")
	ApplyCmd.Flags().BoolVar(&applyNoColor, "no-color", false, "Disable colored output")
	ApplyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Show plan without applying changes")
	ApplyCmd.Flags().StringVar(&applyLockTimeout, "lock-timeout", "", "Maximum time to wait for database locks (e.g., 30s, 5m)")
}

func runApply(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	plans, err := planCmd.GeneratePlans(cmd.Context(), &planCmd.PlanConfig{
		From:                applyFrom,
		To:                  applyTo,
		Platforms:           []string{applyPlatform},
		PlatformVersion:     applyPlatformVersion,
		DetectColumnRenames: applyDetectRenames,
	})
	if err != nil {
		return err
	}
	migrationPlan := plans[0]
	if applyPlanFile != "" {
		if migrationPlan, err = loadReviewedPlan(applyPlanFile, migrationPlan); err != nil {
			return err
		}
	}

	if !migrationPlan.HasChanges() {
		fmt.Fprintln(out, "No changes to apply. Database schema is already up to date.")
		return nil
	}

	// Display the plan
	fmt.Fprint(out, migrationPlan.HumanColored(!applyNoColor))

	// If dry-run, just print the plan and return
	if applyDryRun {
		return nil
	}

	// Prompt for approval if not auto-approved
	if !applyAutoApprove {
		approved, err := confirm(cmd.InOrStdin(), out)
		if err != nil {
			return err
		}
		if !approved {
			fmt.Fprintln(out, "Apply cancelled.")
			return nil
		}
	}

	dsn, err := connectionString(cmd, migrationPlan.Platform)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "\nApplying changes...")
	conn, err := executor.Connect(migrationPlan.Platform, dsn)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	// The lock timeout is a session setting: keep every statement on one connection
	session, err := conn.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database session: %w", err)
	}
	defer session.Close()

	if err := execute(ctx, session, migrationPlan, applyLockTimeout); err != nil {
		return err
	}

	fmt.Fprintln(out, "Changes applied successfully!")
	return nil
}

// loadReviewedPlan reads a plan written by plan --output-json and checks it
// was generated from the same schema files as current
func loadReviewedPlan(path string, current *plan.Plan) (*plan.Plan, error) {
	data, err := afero.ReadFile(util.AppFs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file %s: %w", path, err)
	}
	reviewed, err := plan.FromJSON(data)
	if err != nil {
		return nil, err
	}
	if err := reviewed.Verify(current); err != nil {
		return nil, fmt.Errorf("plan %s is stale, generate it again: %w", path, err)
	}
	return reviewed, nil
}

// confirm asks for approval and accepts yes or y
func confirm(in io.Reader, out io.Writer) (bool, error) {
	fmt.Fprint(out, "\nDo you want to apply these changes? (yes/no): ")
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		return false, fmt.Errorf("failed to read user input: %w", err)
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "yes" || response == "y", nil
}

// connectionString returns --dsn, or builds one from the connection flags
// and the platform's client environment variables
func connectionString(cmd *cobra.Command, platformName string) (string, error) {
	if applyDSN != "" {
		return applyDSN, nil
	}

	config := &executor.ConnectionConfig{
		Host:            applyHost,
		Port:            applyPort,
		Database:        applyDB,
		User:            applyUser,
		Password:        applyPassword,
		SSLMode:         applySSLMode,
		ApplicationName: applyApplicationName,
	}
	util.ApplyConnectionEnv(cmd, platformName, config)

	if applyPasswordPrompt {
		password, err := readPassword(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		config.Password = password
	}

	if config.Database == "" {
		return "", fmt.Errorf("database name is required (use --db, --dsn or %s)", util.EnvVarsFor(platformName).Database)
	}
	if config.User == "" {
		return "", fmt.Errorf("database user is required (use --user, --dsn or %s)", util.EnvVarsFor(platformName).User)
	}
	if platformName != "postgres" {
		config.SSLMode = ""
		config.ApplicationName = ""
	}
	return executor.BuildDSN(platformName, config), nil
}

func readPassword(prompt io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("--password-prompt requires an interactive terminal")
	}
	fmt.Fprint(prompt, "Password: ")
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

// lockTimeoutSQL returns the statement bounding lock waits of the session
func lockTimeoutSQL(platformName, timeout string) (string, error) {
	duration, err := time.ParseDuration(timeout)
	if err != nil {
		return "", fmt.Errorf("invalid lock timeout %q: %w", timeout, err)
	}
	if platformName == "postgres" {
		return fmt.Sprintf("SET lock_timeout = %d", duration.Milliseconds()), nil
	}
	seconds := int64(duration.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return fmt.Sprintf("SET SESSION lock_wait_timeout = %d", seconds), nil
}

// execute runs the plan statements, after the lock timeout when one is set
func execute(ctx context.Context, db executor.Execer, migrationPlan *plan.Plan, lockTimeout string) error {
	if lockTimeout != "" {
		stmt, err := lockTimeoutSQL(migrationPlan.Platform, lockTimeout)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to set lock timeout: %w", err)
		}
	}

	logger.Get().Debug("Applying plan", "platform", migrationPlan.Platform, "statements", len(migrationPlan.Steps))
	return executor.Run(ctx, db, migrationPlan.Queries())
}
