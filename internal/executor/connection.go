package executor

import (
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/schemadiff/schemadiff/internal/logger"
)

// ConnectionConfig holds database connection parameters
type ConnectionConfig struct {
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	SSLMode         string
	ApplicationName string
}

// DefaultPort returns the default server port of the platform
func DefaultPort(platformName string) int {
	if driverName(platformName) == "mysql" {
		return 3306
	}
	return 5432
}

// BuildDSN constructs a connection string for the platform's driver
func BuildDSN(platformName string, config *ConnectionConfig) string {
	port := config.Port
	if port == 0 {
		port = DefaultPort(platformName)
	}

	if driverName(platformName) == "mysql" {
		cfg := mysql.NewConfig()
		cfg.User = config.User
		cfg.Passwd = config.Password
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(config.Host, strconv.Itoa(port))
		cfg.DBName = config.Database
		return cfg.FormatDSN()
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("host=%s", config.Host))
	parts = append(parts, fmt.Sprintf("port=%d", port))
	parts = append(parts, fmt.Sprintf("dbname=%s", config.Database))
	parts = append(parts, fmt.Sprintf("user=%s", config.User))
	if config.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", config.Password))
	}
	if config.SSLMode != "" {
		parts = append(parts, fmt.Sprintf("sslmode=%s", config.SSLMode))
	}
	if config.ApplicationName != "" {
		parts = append(parts, fmt.Sprintf("application_name=%s", config.ApplicationName))
	}
	return strings.Join(parts, " ")
}

// Connect opens a database handle with the driver matching the platform and
// checks that the server answers
func Connect(platformName, dsn string) (*sql.DB, error) {
	log := logger.Get()
	driver := driverName(platformName)

	log.Debug("Attempting database connection", "platform", platformName, "driver", driver)
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		log.Debug("Database ping failed", "error", err)
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Debug("Database connection established successfully")
	return conn, nil
}

// driverName maps platform names to database/sql drivers
func driverName(platformName string) string {
	switch strings.ToLower(platformName) {
	case "mysql", "mariadb":
		return "mysql"
	}
	return "pgx"
}
