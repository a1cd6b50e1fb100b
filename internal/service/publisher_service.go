package service

import (
	"encoding/json"

	"noteshare-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// TopicNoteIndex carries note ids whose search vector must be recomputed.
const TopicNoteIndex = "note.index"

type IIndexPublisher interface {
	PublishNoteIndex(noteId uuid.UUID) error
}

type indexPublisher struct {
	publisher message.Publisher
}

func NewIndexPublisher(publisher message.Publisher) IIndexPublisher {
	return &indexPublisher{publisher: publisher}
}

func (p *indexPublisher) PublishNoteIndex(noteId uuid.UUID) error {
	payload, err := json.Marshal(dto.IndexNoteMessage{NoteId: noteId})
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return p.publisher.Publish(TopicNoteIndex, msg)
}
