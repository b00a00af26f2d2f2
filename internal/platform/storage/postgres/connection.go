// Pacote postgres implementa a camada de persistência via GORM (Postgres em produção, SQLite local e em testes).
package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
)

func gormConfig(saida io.Writer) *gorm.Config {
	return &gorm.Config{
		// Buscas sem resultado são fluxo normal (primeira sessão, e-mail livre) e não viram log.
		Logger: logger.New(log.New(saida, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		}),
		// Violações de unicidade chegam como gorm.ErrDuplicatedKey em qualquer driver.
		TranslateError: true,
	}
}

func Open(ctx context.Context, dsn string) (*gorm.DB, error) {
	gormDB, err := gorm.Open(postgres.Open(dsn), gormConfig(os.Stdout))
	if err != nil {
		return nil, fmt.Errorf("postgres gorm: abrir conexao: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres gorm: obter sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(60 * time.Minute)

	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctxPing); err != nil {
		return nil, fmt.Errorf("postgres gorm: ping falhou: %w", err)
	}

	return gormDB, nil
}

// OpenSQLite abre um banco SQLite com uma única conexão, serializando as escritas.
func OpenSQLite(path string) (*gorm.DB, error) {
	gormDB, err := gorm.Open(sqlite.Open(path), gormConfig(os.Stdout))
	if err != nil {
		return nil, fmt.Errorf("sqlite gorm: abrir %s: %w", path, err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite gorm: obter sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := gormDB.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("sqlite gorm: habilitar foreign keys: %w", err)
	}

	return gormDB, nil
}

// OpenDriver abre o banco conforme o driver configurado: "postgres" usa o DSN, "sqlite" o caminho local.
func OpenDriver(ctx context.Context, driver, dsn, sqlitePath string) (*gorm.DB, error) {
	switch driver {
	case "postgres":
		return Open(ctx, dsn)
	case "sqlite":
		return OpenSQLite(sqlitePath)
	}
	return nil, fmt.Errorf("gorm: driver %q nao suportado", driver)
}

func traduzir(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrDuplicado
	}
	return err
}
