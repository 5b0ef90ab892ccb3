// Package testutil starts disposable database servers for integration tests.
package testutil

import (
	"context"
	"database/sql"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/schemadiff/schemadiff/internal/executor"
)

const (
	testDatabase = "testdb"
	testUser     = "testuser"
	testPassword = "testpass"
)

var suppressedLogger = log.New(io.Discard, "", 0)

// PostgresVersion returns the PostgreSQL version to use for testing.
// It reads from the SCHEMADIFF_POSTGRES_VERSION environment variable,
// defaulting to "17" if not set.
func PostgresVersion() string {
	return envOr("SCHEMADIFF_POSTGRES_VERSION", "17")
}

// MySQLVersion returns the MySQL version to use for testing, read from
// SCHEMADIFF_MYSQL_VERSION and defaulting to "8.0".
func MySQLVersion() string {
	return envOr("SCHEMADIFF_MYSQL_VERSION", "8.0")
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Database holds the connection details of a test server
type Database struct {
	Container testcontainers.Container
	Platform  string
	DSN       string
	Conn      *sql.DB
}

// SetupPostgresContainer starts a PostgreSQL test container. The test is
// skipped in -short mode.
func SetupPostgresContainer(ctx context.Context, t *testing.T) *Database {
	t.Helper()
	skipShort(t)

	postgresContainer, err := postgres.Run(ctx,
		"postgres:"+PostgresVersion()+"-alpine",
		postgres.WithDatabase(testDatabase),
		postgres.WithUsername(testUser),
		postgres.WithPassword(testPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
		testcontainers.WithLogger(suppressedLogger),
	)
	if err != nil {
		t.Fatalf("Failed to start container: %v", err)
	}

	dsn, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}
	return connect(t, postgresContainer, "postgres", dsn)
}

// SetupMySQLContainer starts a MySQL test container. The test is skipped in
// -short mode.
func SetupMySQLContainer(ctx context.Context, t *testing.T) *Database {
	t.Helper()
	skipShort(t)

	request := testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mysql:" + MySQLVersion(),
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": testPassword,
				"MYSQL_DATABASE":      testDatabase,
				"MYSQL_USER":          testUser,
				"MYSQL_PASSWORD":      testPassword,
			},
			WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").
				WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	}
	if err := testcontainers.WithLogger(suppressedLogger).Customize(&request); err != nil {
		t.Fatalf("Failed to configure container: %v", err)
	}

	mysqlContainer, err := testcontainers.GenericContainer(ctx, request)
	if err != nil {
		t.Fatalf("Failed to start container: %v", err)
	}

	host, err := mysqlContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := mysqlContainer.MappedPort(ctx, "3306/tcp")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dsn := executor.BuildDSN("mysql", &executor.ConnectionConfig{
		Host:     host,
		Port:     port.Int(),
		Database: testDatabase,
		User:     testUser,
		Password: testPassword,
	})
	return connect(t, mysqlContainer, "mysql", dsn)
}

func skipShort(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
}

func connect(t *testing.T, container testcontainers.Container, platform, dsn string) *Database {
	t.Helper()
	conn, err := executor.Connect(platform, dsn)
	if err != nil {
		container.Terminate(context.Background())
		t.Fatalf("Failed to connect to database: %v", err)
	}

	db := &Database{
		Container: container,
		Platform:  platform,
		DSN:       dsn,
		Conn:      conn,
	}
	t.Cleanup(func() { db.Terminate(context.Background(), t) })
	return db
}

// Terminate cleans up the container and connection
func (db *Database) Terminate(ctx context.Context, t *testing.T) {
	db.Conn.Close()
	if err := db.Container.Terminate(ctx); err != nil {
		t.Logf("Failed to terminate container: %v", err)
	}
}

// TableExists reports whether the current database has the table
func (db *Database) TableExists(ctx context.Context, table string) (bool, error) {
	query := "SELECT count(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1"
	if db.Platform == "mysql" {
		query = "SELECT count(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?"
	}
	var count int
	if err := db.Conn.QueryRowContext(ctx, query, table).Scan(&count); err != nil {
		return false, err
	}
	return count == 1, nil
}
