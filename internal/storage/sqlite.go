package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open 打开 SQLite 并返回唯一连接：
// - DSN 带 _foreign_keys=on，每个新连接都会开启外键约束；
// - 打开后再执行一次 PRAGMA 并回读校验；
// - 连接池固定为 1，进程生命周期内复用。
func Open(path string, log logrus.FieldLogger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := EnableForeignKeys(context.Background(), db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	log.WithField("path", path).Info("sqlite connection ready")
	return db, nil
}

// EnableForeignKeys turns enforcement on for the current connection and
// verifies the engine reports it as enabled.
func EnableForeignKeys(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	var on int
	if err := db.WithContext(ctx).Raw("PRAGMA foreign_keys").Scan(&on).Error; err != nil {
		return fmt.Errorf("read foreign_keys pragma: %w", err)
	}
	if on != 1 {
		return fmt.Errorf("foreign keys still disabled")
	}
	return nil
}

// Close releases the underlying connection.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
