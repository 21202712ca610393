package internal

import (
	"context"
	"fmt"
	"strings"

	"HavirKesht_Auth/internal/migrations"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
)

// Database пул соединений с БД. Создается один раз в main и передается явно
type Database struct {
	*sqlx.DB
	driver string
}

func NewDatabaseConnection(dbDriver string, dbConnectionStr string) (*Database, error) {
	if dbDriver == driverSQLite {
		dbConnectionStr = withSQLitePragmas(dbConnectionStr)
	}

	database, err := sqlx.Connect(dbDriver, dbConnectionStr)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if dbDriver == driverSQLite {
		// sqlite допускает одного писателя, транзакции сериализуются на одном соединении
		database.SetMaxOpenConns(1)
	}

	if err := database.Ping(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ошибка пинга БД: %w", err)
	}

	return &Database{
		DB:     database,
		driver: dbDriver,
	}, nil
}

func (db *Database) Driver() string {
	return db.driver
}

// Migrate применяет встроенные миграции goose
func (db *Database) Migrate(ctx context.Context) error {
	dialect := goose.DialectPostgres
	if db.driver == driverSQLite {
		dialect = goose.DialectSQLite3
	}

	provider, err := goose.NewProvider(dialect, db.DB.DB, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("ошибка инициализации миграций: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("ошибка применения миграций: %w", err)
	}

	return nil
}

// WithTransaction выполняет fn в транзакции. Коммит при успехе,
// откат при ошибке или панике, паника пробрасывается дальше
func (db *Database) WithTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if commitErr := tx.Commit(); commitErr != nil {
			err = fmt.Errorf("ошибка фиксации транзакции: %w", commitErr)
		}
	}()

	return fn(tx)
}

func (db *Database) Close() error {
	err := db.DB.Close()
	if err != nil {
		return fmt.Errorf("ошибка закрытия соединения с БД: %w", err)
	}

	return nil
}

func withSQLitePragmas(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	separator := "?"
	if strings.Contains(dsn, "?") {
		separator = "&"
	}
	return dsn + separator + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
