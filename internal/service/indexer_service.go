package service

import (
	"context"
	"encoding/json"

	"noteshare-be/internal/dto"
	"noteshare-be/internal/pkg/logger"
	"noteshare-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
)

// IndexerService consumes note-index messages and recomputes the search
// vector for the referenced note. It runs outside the request path so a slow
// tsvector update never blocks a writer.
type IndexerService struct {
	subscriber message.Subscriber
	uowFactory unitofwork.RepositoryFactory
	log        logger.ILogger
}

func NewIndexerService(subscriber message.Subscriber, uowFactory unitofwork.RepositoryFactory, log logger.ILogger) *IndexerService {
	return &IndexerService{
		subscriber: subscriber,
		uowFactory: uowFactory,
		log:        log,
	}
}

// Start subscribes and processes until ctx is cancelled.
func (s *IndexerService) Start(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, TopicNoteIndex)
	if err != nil {
		return err
	}
	go s.process(ctx, messages)
	return nil
}

func (s *IndexerService) process(ctx context.Context, messages <-chan *message.Message) {
	for msg := range messages {
		var payload dto.IndexNoteMessage
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			s.log.Error("indexer", "Dropping malformed index message", map[string]interface{}{
				"message_id": msg.UUID,
				"error":      err.Error(),
			})
			// Malformed payloads never become valid, so redelivery is pointless.
			msg.Ack()
			continue
		}

		uow := s.uowFactory.NewUnitOfWork(ctx)
		if err := uow.NoteRepository().RefreshSearchVector(ctx, payload.NoteId); err != nil {
			s.log.Warn("indexer", "Failed to refresh search vector, requesting redelivery", map[string]interface{}{
				"note_id": payload.NoteId,
				"error":   err.Error(),
			})
			msg.Nack()
			continue
		}

		msg.Ack()
	}
}
