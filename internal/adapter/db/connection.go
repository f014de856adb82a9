package db

import (
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"

	"taskmanager/internal/config"
)

const (
	sqlxDriverMySQL    = "mysql"
	sqlxDriverSQLite   = "sqlite"
	sqlxDriverPostgres = "pgx"
)

// sqliteLower replaces LOWER, which only folds ASCII on SQLite.
const sqliteLower = "unicode_lower"

// sqlDialect holds the SQL fragments that differ between drivers.
type sqlDialect struct {
	lower         string
	binaryCollate string
}

var sqlDialects = map[string]sqlDialect{
	sqlxDriverMySQL:    {lower: "LOWER", binaryCollate: " COLLATE utf8mb4_bin"},
	sqlxDriverSQLite:   {lower: sqliteLower},
	sqlxDriverPostgres: {lower: "LOWER", binaryCollate: ` COLLATE "C"`},
}

func dialectFor(driverName string) sqlDialect {
	if d, ok := sqlDialects[driverName]; ok {
		return d
	}
	return sqlDialect{lower: "LOWER"}
}

func init() {
	// sqlx does not know the modernc driver name; it binds like sqlite3.
	sqlx.BindDriver(sqlxDriverSQLite, sqlx.QUESTION)

	if err := sqlite.RegisterDeterministicScalarFunction(sqliteLower, 1, unicodeLower); err != nil {
		panic(err)
	}
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

func ConnectDB(conf *config.Config) (*sqlx.DB, error) {
	switch conf.DbDriver {
	case config.DriverMySQL, "":
		return connectMySQL(conf)
	case config.DriverSQLite:
		return ConnectSQLite(conf.SqlitePath)
	case config.DriverPostgres:
		return sqlx.Connect(sqlxDriverPostgres, conf.PostgresDSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", conf.DbDriver)
	}
}

func connectMySQL(conf *config.Config) (*sqlx.DB, error) {
	params := conf.DbParams
	if params == "" {
		params = "parseTime=true&multiStatements=true&clientFoundRows=true"
	}

	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?%s",
		conf.DbUser,
		conf.DbPassword,
		conf.DbHost,
		conf.DbPort,
		conf.DbName,
		params,
	)

	db, err := sqlx.Connect(sqlxDriverMySQL, dsn)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// ConnectSQLite opens a file database with foreign keys enabled. A single
// connection serialises writers, which is what SQLite expects anyway.
func ConnectSQLite(path string) (*sqlx.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite directory: %w", err)
	}

	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
	db, err := sqlx.Connect(sqlxDriverSQLite, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	return db, nil
}

// Dialect maps a sqlx driver name to the goose dialect and migration folder.
func Dialect(db *sqlx.DB) (string, string, error) {
	switch db.DriverName() {
	case sqlxDriverMySQL:
		return "mysql", "migrations/mysql", nil
	case sqlxDriverSQLite:
		return "sqlite3", "migrations/sqlite", nil
	case sqlxDriverPostgres:
		return "postgres", "migrations/postgres", nil
	default:
		return "", "", fmt.Errorf("no migrations for driver %q", db.DriverName())
	}
}
