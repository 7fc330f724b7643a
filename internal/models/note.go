package models

import (
	"regexp"
	"strings"

	"gorm.io/gorm"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// StickyNote is a short rich-text note pinned to a folder.
type StickyNote struct {
	gorm.Model
	CreatedByID      uint    `json:"created_by_id" gorm:"not null;index"`
	CreatedBy        *User   `json:"-"`
	Description      string  `json:"description" gorm:"size:500;not null"`
	ShortDescription string  `json:"short_description" gorm:"size:150"`
	Color            string  `json:"color" gorm:"size:10;not null"`
	FolderID         uint    `json:"folder_id" gorm:"not null;index"`
	Folder           *Folder `json:"-"`
}

// BeforeSave derives the plain-text preview from the note body.
func (n *StickyNote) BeforeSave(tx *gorm.DB) error {
	plain := strings.TrimSpace(htmlTagPattern.ReplaceAllString(n.Description, " "))
	plain = strings.Join(strings.Fields(plain), " ")
	runes := []rune(plain)
	if len(runes) > 140 {
		runes = runes[:140]
	}
	n.ShortDescription = string(runes)
	return nil
}
