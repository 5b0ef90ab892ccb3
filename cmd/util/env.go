package util

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/schemadiff/schemadiff/internal/executor"
)

// GetEnvWithDefault returns the value of an environment variable or a default value if not set
func GetEnvWithDefault(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvIntWithDefault returns the value of an environment variable as int or a default value if not set
func GetEnvIntWithDefault(envVar string, defaultValue int) int {
	if value := os.Getenv(envVar); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// ConnectionEnvVars names the environment variables read by a platform's
// native client
type ConnectionEnvVars struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

var connectionEnvVars = map[string]ConnectionEnvVars{
	"postgres": {Host: "PGHOST", Port: "PGPORT", Database: "PGDATABASE", User: "PGUSER", Password: "PGPASSWORD"},
	"mysql":    {Host: "MYSQL_HOST", Port: "MYSQL_TCP_PORT", Database: "MYSQL_DATABASE", User: "MYSQL_USER", Password: "MYSQL_PWD"},
	"mariadb":  {Host: "MYSQL_HOST", Port: "MYSQL_TCP_PORT", Database: "MYSQL_DATABASE", User: "MYSQL_USER", Password: "MYSQL_PWD"},
}

// EnvVarsFor returns the connection environment variables of the platform
func EnvVarsFor(platformName string) ConnectionEnvVars {
	if vars, ok := connectionEnvVars[platformName]; ok {
		return vars
	}
	return connectionEnvVars["postgres"]
}

// ApplyConnectionEnv fills the connection settings whose flag was not set on
// the command line from the platform's client environment variables.
func ApplyConnectionEnv(cmd *cobra.Command, platformName string, config *executor.ConnectionConfig) {
	vars := EnvVarsFor(platformName)
	flags := cmd.Flags()

	if value := GetEnvWithDefault(vars.Host, ""); value != "" && !flags.Changed("host") {
		config.Host = value
	}
	if value := GetEnvIntWithDefault(vars.Port, 0); value != 0 && !flags.Changed("port") {
		config.Port = value
	}
	if value := GetEnvWithDefault(vars.Database, ""); value != "" && !flags.Changed("db") {
		config.Database = value
	}
	if value := GetEnvWithDefault(vars.User, ""); value != "" && !flags.Changed("user") {
		config.User = value
	}
	if config.Password == "" {
		config.Password = GetEnvWithDefault(vars.Password, "")
	}
}
