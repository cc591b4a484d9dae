package models

import (
	"fmt"

	"github.com/worknote/backend/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return DB.AutoMigrate(
		&User{},
		&Report{},
		&WorkItem{},
		&Appeal{},
		&Trouble{},
		&Client{},
		&Project{},
		&Mission{},
		&AppealCategory{},
		&TroubleCategory{},
		&SystemLog{},
		&RefreshToken{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData creates default reference rows if the tables are empty.
func SeedDefaultData() error {
	defaultAppealCategories := []AppealCategory{
		{Name: "Process improvement"},
		{Name: "Achievement"},
		{Name: "Request"},
	}
	var appealCount int64
	DB.Model(&AppealCategory{}).Count(&appealCount)
	if appealCount == 0 {
		if err := DB.Create(&defaultAppealCategories).Error; err != nil {
			return err
		}
	}

	defaultTroubleCategories := []TroubleCategory{
		{Name: "Blocker"},
		{Name: "Environment"},
		{Name: "Communication"},
	}
	var troubleCount int64
	DB.Model(&TroubleCategory{}).Count(&troubleCount)
	if troubleCount == 0 {
		if err := DB.Create(&defaultTroubleCategories).Error; err != nil {
			return err
		}
	}

	return nil
}
