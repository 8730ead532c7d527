package database

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var C *gorm.DB

func NewGorm() error {
	var dialector gorm.Dialector
	switch viper.GetString("database.dialect") {
	case "sqlite":
		dialector = sqlite.Open(viper.GetString("database.dsn"))
	default:
		dialector = postgres.Open(viper.GetString("database.dsn"))
	}

	var err error
	C, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return err
	}

	if sqlDB, err := C.DB(); err == nil {
		sqlDB.SetMaxOpenConns(viper.GetInt("database.max_open_conns"))
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	log.Info().Str("dialect", C.Dialector.Name()).Msg("Database connected.")
	return nil
}
