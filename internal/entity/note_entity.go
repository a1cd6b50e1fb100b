package entity

import (
	"time"

	"github.com/google/uuid"
)

type NoteVisibility string

const (
	NoteVisibilityPublic  NoteVisibility = "public"
	NoteVisibilityPrivate NoteVisibility = "private"
	NoteVisibilityDraft   NoteVisibility = "draft"
)

func (v NoteVisibility) Valid() bool {
	switch v {
	case NoteVisibilityPublic, NoteVisibilityPrivate, NoteVisibilityDraft:
		return true
	}
	return false
}

type Note struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	UrlToken    uuid.UUID // public identifier, immutable after creation
	Title       string
	Description string
	Labels      []string
	Visibility  NoteVisibility
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// Collaborator links a note to an invited email. UserId is a weak reference
// resolved opportunistically: nil until (and unless) the invitee has an account.
type Collaborator struct {
	Id        uuid.UUID
	NoteId    uuid.UUID
	Email     string
	UserId    *uuid.UUID
	CreatedAt time.Time
}
