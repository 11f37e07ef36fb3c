// Package history persists balance snapshots into a relational store.
// Two backends hide behind the same Store: pooled MySQL for networked
// deployments and embedded SQLite for single-file ones.
package history

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vadiminshakov/assetwatch/config"
	"github.com/vadiminshakov/assetwatch/internal/domain"
	"github.com/vadiminshakov/assetwatch/pkg/retrier"
)

// Store is the persistence surface the tracker writes snapshots through.
type Store interface {
	SaveSnapshot(ctx context.Context, rows []domain.AssetRow, total domain.TotalRow) error
	Close() error
}

// AssetHistory is one persisted per-asset snapshot row. Quantities are
// stored as their exact decimal string representation.
type AssetHistory struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    int64     `gorm:"index:idx_assets_user_time,priority:1;not null"`
	CreatedAt time.Time `gorm:"index:idx_assets_user_time,priority:2;not null"`
	Coin      string    `gorm:"size:20;not null"`
	Exchange  string    `gorm:"size:50;index;not null"`
	Type      string    `gorm:"size:20;not null"`
	Free      string    `gorm:"type:decimal(30,8);not null"`
	Locked    string    `gorm:"type:decimal(30,8);not null"`
	Total     string    `gorm:"type:decimal(30,8);not null"`
	PriceUSDT string    `gorm:"column:price_usdt;type:decimal(30,8);not null"`
	TotalUSDT string    `gorm:"column:total_usdt;type:decimal(30,8);not null"`
}

func (AssetHistory) TableName() string { return "assets_history" }

// TotalAssetsHistory is the aggregate row of one snapshot; Detail holds
// the per-exchange breakdown as JSON text.
type TotalAssetsHistory struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    int64     `gorm:"index:idx_total_user_time,priority:1;not null"`
	CreatedAt time.Time `gorm:"index:idx_total_user_time,priority:2;not null"`
	TotalUSDT string    `gorm:"column:total_usdt;type:decimal(30,8);not null"`
	Detail    string    `gorm:"type:text"`
}

func (TotalAssetsHistory) TableName() string { return "total_assets_history" }

// SQLStore implements Store on top of gorm.
type SQLStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open connects to the configured backend, retrying transient connect
// failures, and creates the history tables if they do not exist.
func Open(cfg config.DatabaseConfig, logger *zap.Logger) (*SQLStore, error) {
	var dial gorm.Dialector
	switch cfg.Driver {
	case config.DriverMySQL:
		dial = mysql.Open(cfg.DSN())
	case config.DriverSQLite:
		dial = sqlite.Open(cfg.Path)
	default:
		return nil, errors.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	r := retrier.New(retrier.WithMaxRetries(4), retrier.WithInitialInterval(2*time.Second))
	db, err := retrier.DoWithData(r, context.Background(), func(ctx context.Context) (*gorm.DB, error) {
		return gorm.Open(dial, &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
	})
	if err != nil {
		return nil, errors.Wrapf(err, "connect %s database", cfg.Driver)
	}

	if cfg.Driver == config.DriverMySQL {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "get underlying sql pool")
		}
		sqlDB.SetMaxIdleConns(2)
		sqlDB.SetMaxOpenConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.AutoMigrate(&AssetHistory{}, &TotalAssetsHistory{}); err != nil {
		return nil, errors.Wrap(err, "migrate history tables")
	}

	logger.Info("history store ready", zap.String("driver", cfg.Driver))
	return &SQLStore{db: db, logger: logger}, nil
}

// SaveSnapshot writes the asset rows and the aggregate row of one cycle
// in a single transaction, so a snapshot is never half visible.
func (s *SQLStore) SaveSnapshot(ctx context.Context, rows []domain.AssetRow, total domain.TotalRow) error {
	detail, err := total.DetailJSON()
	if err != nil {
		return err
	}

	records := make([]AssetHistory, 0, len(rows))
	for _, r := range rows {
		records = append(records, AssetHistory{
			UserID:    r.UserID,
			CreatedAt: r.CreatedAt,
			Coin:      r.Coin,
			Exchange:  r.Exchange,
			Type:      string(r.AccountType),
			Free:      r.Free.String(),
			Locked:    r.Locked.String(),
			Total:     r.Total.String(),
			PriceUSDT: r.PriceUSDT.String(),
			TotalUSDT: r.TotalUSDT.String(),
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(records) > 0 {
			if err := tx.CreateInBatches(records, 100).Error; err != nil {
				return err
			}
		}
		return tx.Create(&TotalAssetsHistory{
			UserID:    total.UserID,
			CreatedAt: total.CreatedAt,
			TotalUSDT: total.TotalUSDT.String(),
			Detail:    detail,
		}).Error
	})
	return errors.Wrap(err, "save snapshot")
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
