package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/pkg/logger"
)

// RunMigrations はスキーママイグレーションを適用する
// 適用済みの場合（ErrNoChange）は正常終了として扱う
func RunMigrations(db *sql.DB, migrationsPath string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("マイグレーションドライバーの作成に失敗: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://"+migrationsPath,
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("マイグレーションの初期化に失敗: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Debug("スキーマは最新の状態です")
			return nil
		}
		return fmt.Errorf("マイグレーションの適用に失敗: %w", err)
	}

	logger.Info("マイグレーションを適用しました")
	return nil
}
