package database

import (
	"fmt"
	"sync"

	"github.com/olids-ncl/record-explorer/pkg/common/config"
	"github.com/olids-ncl/record-explorer/pkg/common/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	warehouse     *gorm.DB
	warehouseOnce sync.Once
	warehouseErr  error
)

// GetWarehouse returns the process-wide warehouse handle, created lazily on
// first call and reused for the lifetime of the process. All access through
// it is read-only. A connection failure is surfaced to the caller and is
// never retried here.
func GetWarehouse() (*gorm.DB, error) {
	warehouseOnce.Do(func() {
		cfg := config.Load()
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.WarehouseHost,
			cfg.WarehouseUser,
			cfg.WarehousePassword,
			cfg.WarehouseDB,
			cfg.WarehousePort,
			cfg.WarehouseSSLMode,
		)

		warehouse, warehouseErr = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if warehouseErr != nil {
			logger.Log.WithError(warehouseErr).Error("Failed to connect to warehouse")
			return
		}

		logger.Log.Info("Connected to warehouse")
	})

	return warehouse, warehouseErr
}

func CloseWarehouse() error {
	if warehouse != nil {
		sqlDB, err := warehouse.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
