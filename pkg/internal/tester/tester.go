package tester

import (
	"os"

	"github.com/qetahub/qeta/pkg/internal/cache"
	"github.com/qetahub/qeta/pkg/internal/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPath = "../../../.test/"

// Setup opens a throwaway sqlite database, runs the migrations and wires
// the package-level handles the services read from.
func Setup() {
	RemoveDBFile()

	if err := os.MkdirAll(testPath+"db", os.ModePerm); err != nil {
		panic(err)
	}

	db, err := gorm.Open(sqlite.Open(testPath+"db/qeta.db"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}

	if err := database.RunMigration(db); err != nil {
		panic(err)
	}
	database.C = db

	if err := cache.NewStore(); err != nil {
		panic(err)
	}
}

func RemoveDBFile() {
	if err := os.RemoveAll(testPath); err != nil {
		panic(err)
	}
}
