package db

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/go-sql-driver/mysql" // mysql driver
	_ "github.com/lib/pq"              // postgres driver
	_ "modernc.org/sqlite"             // sqlite driver
)

// DB holds the database connection
type DB struct {
	*sqlx.DB

	Backend string
}

// Connect establishes a connection to the database behind the given URI
func Connect(uri string) (*DB, error) {
	params, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	driver, dsn := driverDSN(params)
	sqlxDB, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", params.Backend, err)
	}

	// Test the connection
	if err := sqlxDB.Ping(); err != nil {
		sqlxDB.Close()
		return nil, err
	}

	return &DB{DB: sqlxDB, Backend: params.Backend}, nil
}

// driverDSN translates URI parts into the driver name and DSN the matching
// sql driver expects. lib/pq takes the URI form directly, the mysql driver
// wants its own user:pass@tcp(host)/db notation and sqlite just wants the
// file path.
func driverDSN(params URIParams) (string, string) {
	switch params.Backend {
	case MySQL:
		var b strings.Builder
		if params.Username != "" {
			b.WriteString(params.Username)
			if params.Password != "" {
				b.WriteString(":")
				b.WriteString(params.Password)
			}
			b.WriteString("@")
		}
		host := params.Hostname
		if host == "" {
			host = "localhost"
		}
		fmt.Fprintf(&b, "tcp(%s:3306)/%s", host, params.Database)
		return "mysql", b.String()
	case Postgres:
		uri, _ := BuildURI(params)
		return "postgres", uri
	default:
		return "sqlite", params.Path
	}
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Health checks if the database connection is healthy
func (db *DB) Health() error {
	return db.Ping()
}

// Tables lists the user tables present in the connected database.
func (db *DB) Tables() ([]string, error) {
	var query string
	switch db.Backend {
	case Postgres:
		query = "SELECT tablename FROM pg_tables WHERE schemaname = 'public'"
	case MySQL:
		query = "SHOW TABLES"
	default:
		query = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'"
	}

	var tables []string
	if err := db.Select(&tables, query); err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}

// ExecScript runs a SQL script statement by statement.
func (db *DB) ExecScript(script string) error {
	for _, stmt := range strings.Split(script, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute statement %q: %w", stmt, err)
		}
	}
	return nil
}

// DumpInserts writes the database contents to w as INSERT statements.
func (db *DB) DumpInserts(w io.Writer) error {
	tables, err := db.Tables()
	if err != nil {
		return err
	}
	for _, table := range tables {
		if err := db.dumpTable(w, table); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) dumpTable(w io.Writer, table string) error {
	rows, err := db.Queryx("SELECT * FROM " + table)
	if err != nil {
		return fmt.Errorf("failed to read table %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return err
	}

	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return err
		}
		literals := make([]string, len(values))
		for i, value := range values {
			literals[i] = sqlLiteral(value)
		}
		fmt.Fprintf(w, "INSERT INTO %s (%s) VALUES (%s);\n",
			table, strings.Join(columns, ", "), strings.Join(literals, ", "))
	}
	return rows.Err()
}

// DropAll removes every user table from the connected database.
func (db *DB) DropAll() error {
	tables, err := db.Tables()
	if err != nil {
		return err
	}
	for _, table := range tables {
		if _, err := db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}

func sqlLiteral(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case []byte:
		return "'" + strings.ReplaceAll(string(v), "'", "''") + "'"
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case time.Time:
		return "'" + v.Format("2006-01-02 15:04:05") + "'"
	default:
		return fmt.Sprintf("%v", v)
	}
}
