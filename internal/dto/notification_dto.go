package dto

import (
	"time"

	"github.com/google/uuid"
)

// NotificationMessage is what a websocket client receives when something
// happens to a note they are involved in.
type NotificationMessage struct {
	Type      string    `json:"type"`
	NoteId    uuid.UUID `json:"note_id"`
	NoteTitle string    `json:"note_title"`
	ActorName string    `json:"actor_name"`
	CreatedAt time.Time `json:"created_at"`
}
