package db

import (
	"fmt"
	"os"
	"path/filepath"

	"orderbot/internal/config"
	"orderbot/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	switch cfg.Database.Driver {
	case "postgres":
		// DATABASE_URL があれば最優先で使う
		dsn := cfg.Database.DSN
		if v := os.Getenv("DATABASE_URL"); v != "" {
			dsn = v
		}
		return gorm.Open(postgres.Open(dsn), gcfg)
	case "sqlite":
		if dir := filepath.Dir(cfg.Database.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
		return gorm.Open(sqlite.Open(cfg.Database.SQLitePath), gcfg)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// OpenMemory はテスト用のインメモリ SQLite を開いてマイグレーションまで行う。
func OpenMemory(name string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	// 共有キャッシュのインメモリDBは接続1本で使う
	sqlDB.SetMaxOpenConns(1)
	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

// Migrate は4テーブル＋監査ログを作る。
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&model.Order{},
		&model.Product{},
		&model.CartItem{},
		&model.OrderItem{},
		&model.AuditLog{},
	)
}
