package db

import (
	"fmt"
	"time"

	"chordprep/config"
	"chordprep/logger"
	"chordprep/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormDB is the catalog connection, nil until ConnectGormDB succeeds.
var GormDB *gorm.DB

// ConnectGormDB opens the MySQL catalog and migrates the track table.
func ConnectGormDB(cfg *config.Config) error {
	db, err := gorm.Open(mysql.Open(cfg.MySQLDSN()), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect catalog database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(4)
	sqlDB.SetMaxOpenConns(16)
	sqlDB.SetConnMaxLifetime(time.Hour)

	GormDB = db
	if err := AutoMigrateModels(&model.TrackRecord{}); err != nil {
		return err
	}
	logger.Info("connected to catalog database",
		logger.String("host", cfg.DB.Host),
		logger.String("database", cfg.DB.Name))
	return nil
}

// CloseGormDB closes the catalog connection if one is open.
func CloseGormDB() error {
	if GormDB == nil {
		return nil
	}
	sqlDB, err := GormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrateModels creates or updates the tables of the given models.
func AutoMigrateModels(models ...interface{}) error {
	if GormDB == nil {
		return fmt.Errorf("catalog database not initialized")
	}
	if err := GormDB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}
	return nil
}
