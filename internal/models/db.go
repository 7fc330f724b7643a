package models

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Migrate runs the schema migration and seeds the lookup tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&User{},
		&FolderType{},
		&AssetType{},
		&Folder{},
		&FolderTransfer{},
		&File{},
		&VideoFile{},
		&Share{},
		&ShareNotification{},
		&StickyNote{},
		&TOTP{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %v", err)
	}

	if err := seedTypes(db); err != nil {
		return err
	}

	log.Info().Msg("database migrated")
	return nil
}

func seedTypes(db *gorm.DB) error {
	for _, title := range []string{"Assets", "Records"} {
		var ft FolderType
		err := db.Where("title = ?", title).First(&ft).Error
		if err == gorm.ErrRecordNotFound {
			if err := db.Create(&FolderType{Title: title}).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}

	var at AssetType
	err := db.Where("title = ?", AIFolderTitle).First(&at).Error
	if err == gorm.ErrRecordNotFound {
		return db.Create(&AssetType{Title: AIFolderTitle, Hidden: true}).Error
	}
	return err
}
