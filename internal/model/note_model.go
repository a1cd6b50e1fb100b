package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Note struct {
	Id          uuid.UUID                      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID                      `gorm:"type:uuid;not null;index"`
	UrlToken    uuid.UUID                      `gorm:"type:uuid;not null;uniqueIndex"`
	Title       string                         `gorm:"type:varchar(255);not null"`
	Description string                         `gorm:"type:text"`
	Labels      datatypes.JSONSlice[string]    `gorm:"type:jsonb"`
	Visibility  string                         `gorm:"type:varchar(16);not null;default:'private';index"`
	// SearchVector is refreshed by the indexer; never written through GORM.
	SearchVector string         `gorm:"type:tsvector;->"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Note) TableName() string {
	return "notes"
}

type Collaborator struct {
	Id        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NoteId    uuid.UUID  `gorm:"type:uuid;not null;index:idx_collaborators_note_email,unique"`
	Email     string     `gorm:"type:varchar(255);not null;index:idx_collaborators_note_email,unique"`
	UserId    *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
}

func (Collaborator) TableName() string {
	return "collaborators"
}
