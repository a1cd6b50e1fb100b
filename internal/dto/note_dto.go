package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateNoteRequest struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description"`
	Labels      []string `json:"labels" validate:"dive,max=64"`
	Visibility  string   `json:"visibility" validate:"omitempty,oneof=public private draft"`
}

type UpdateNoteRequest struct {
	Id          uuid.UUID
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description"`
	Labels      []string `json:"labels" validate:"dive,max=64"`
	Visibility  string   `json:"visibility" validate:"omitempty,oneof=public private draft"`
}

type NoteResponse struct {
	Id          uuid.UUID  `json:"id"`
	UrlToken    uuid.UUID  `json:"url_token"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Labels      []string   `json:"labels"`
	Visibility  string     `json:"visibility"`
	OwnerId     uuid.UUID  `json:"owner_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type AddCollaboratorRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type CollaboratorResponse struct {
	Id         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	UserId     *uuid.UUID `json:"user_id,omitempty"`
	Registered bool       `json:"registered"`
	CreatedAt  time.Time  `json:"created_at"`
}

// IndexNoteMessage is the payload published to the indexer topic whenever a
// note's title or description changes.
type IndexNoteMessage struct {
	NoteId uuid.UUID `json:"note_id"`
}
