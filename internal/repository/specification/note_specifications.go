package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteOwnedByUser struct {
	UserID uuid.UUID
}

func (s NoteOwnedByUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("notes.user_id = ?", s.UserID)
}

type ByUrlToken struct {
	UrlToken uuid.UUID
}

func (s ByUrlToken) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("url_token = ?", s.UrlToken)
}

type ByVisibility struct {
	Visibility string
}

func (s ByVisibility) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("notes.visibility = ?", s.Visibility)
}

// SharedWithUser selects notes having an active collaborator link for the user,
// matched by user reference or by stored email. The email fallback covers links
// created before the invitee registered.
type SharedWithUser struct {
	UserID uuid.UUID
	Email  string
}

func (s SharedWithUser) Apply(db *gorm.DB) *gorm.DB {
	// EXISTS instead of a JOIN so a note with several matching links still
	// appears (and counts) once.
	return db.Where(
		"EXISTS (SELECT 1 FROM collaborators c WHERE c.note_id = notes.id AND (c.user_id = ? OR LOWER(c.email) = LOWER(?)))",
		s.UserID, s.Email,
	)
}

// LabelsOverlap matches notes sharing at least one label with the requested set.
// Label comparison is exact (case-sensitive), consistent with storage.
type LabelsOverlap struct {
	Labels []string
}

func (s LabelsOverlap) Apply(db *gorm.DB) *gorm.DB {
	if len(s.Labels) == 0 {
		return db
	}
	// jsonb_exists_any instead of the ?| operator, which would collide with
	// the driver placeholder syntax.
	return db.Where("jsonb_exists_any(notes.labels, ARRAY[?])", s.Labels)
}
