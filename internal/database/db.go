package database

import (
	"folderr-backend/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Initialize(cfg *config.Config) error {
	var err error
	DB, err = gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		return err
	}
	return nil
}

func GetDB() *gorm.DB {
	return DB
}

// SetDB swaps the active connection. Tests use it to point the models
// package at an in-memory database.
func SetDB(db *gorm.DB) {
	DB = db
}
