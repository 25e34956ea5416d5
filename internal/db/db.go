package db

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a connected GORM DB for the given connection string.
//
// The dialect is picked from the DSN form:
//   - postgres://... or postgresql://... opens Postgres
//   - sqlite:<path> or a file: / :memory: DSN opens SQLite
//   - anything else is treated as a MySQL DSN (user:pass@tcp(host)/db?...)
func Open(dsn string) (*gorm.DB, error) {
	dialector, name := dialectorFor(dsn)

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newLogger(os.Stdout),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", name, err)
	}

	if name == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite pool: %w", err)
		}
		// an in-memory database lives inside a single connection
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// newLogger reports slow queries and errors. A miss on First is a normal lookup
// result (e.g. checking an email during registration), so it is not logged.
func newLogger(w io.Writer) logger.Interface {
	return logger.New(log.New(w, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func dialectorFor(dsn string) (gorm.Dialector, string) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.Open(dsn), "postgres"
	case strings.HasPrefix(dsn, "sqlite:"):
		return sqlite.Open(sqliteDSN(strings.TrimPrefix(dsn, "sqlite:"))), "sqlite"
	case strings.HasPrefix(dsn, "file:"), strings.HasPrefix(dsn, ":memory:"):
		return sqlite.Open(sqliteDSN(dsn)), "sqlite"
	default:
		return mysql.Open(dsn), "mysql"
	}
}

// sqliteDSN turns on foreign keys so lesson ownership cascades like on the server databases.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}
