package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CollaboratorOfNote struct {
	NoteID uuid.UUID
}

func (s CollaboratorOfNote) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("note_id = ?", s.NoteID)
}

type ByCollaboratorEmail struct {
	Email string
}

func (s ByCollaboratorEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(email) = LOWER(?)", s.Email)
}

// CollaboratorMatchesUser matches a link by user reference or stored email.
type CollaboratorMatchesUser struct {
	UserID uuid.UUID
	Email  string
}

func (s CollaboratorMatchesUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ? OR LOWER(email) = LOWER(?)", s.UserID, s.Email)
}
