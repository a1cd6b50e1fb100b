package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"noteshare-be/internal/dto"
	"noteshare-be/internal/entity"
	"noteshare-be/internal/pkg/mailer"
	"noteshare-be/internal/pkg/serverutils"
	"noteshare-be/internal/repository/implementation"
	"noteshare-be/internal/repository/specification"
	"noteshare-be/internal/repository/unitofwork"
	"noteshare-be/pkg/events"
	pktNats "noteshare-be/pkg/nats"

	"github.com/google/uuid"
)

// urlTokenRetries bounds regeneration attempts when a fresh url_token collides
// with an existing one.
const urlTokenRetries = 3

type INoteService interface {
	Create(ctx context.Context, caller *entity.User, req *dto.CreateNoteRequest) (*dto.NoteResponse, error)
	GetById(ctx context.Context, caller *entity.User, id uuid.UUID) (*dto.NoteResponse, error)
	Update(ctx context.Context, caller *entity.User, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error)
	Delete(ctx context.Context, caller *entity.User, id uuid.UUID) error

	AddCollaborator(ctx context.Context, caller *entity.User, noteId uuid.UUID, req *dto.AddCollaboratorRequest) (*dto.CollaboratorResponse, error)
	RemoveCollaboratorById(ctx context.Context, caller *entity.User, noteId, collaboratorId uuid.UUID) error
	RemoveCollaboratorByEmail(ctx context.Context, caller *entity.User, noteId uuid.UUID, email string) error
	ListCollaborators(ctx context.Context, caller *entity.User, noteId uuid.UUID) ([]dto.CollaboratorResponse, error)
}

type noteService struct {
	uowFactory          unitofwork.RepositoryFactory
	policy              INotePolicy
	emailService        mailer.IEmailService
	eventPublisher      *pktNats.Publisher
	indexPublisher      IIndexPublisher
	notificationService INotificationService
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	policy INotePolicy,
	emailService mailer.IEmailService,
	eventPublisher *pktNats.Publisher,
	indexPublisher IIndexPublisher,
	notificationService INotificationService,
) INoteService {
	return &noteService{
		uowFactory:          uowFactory,
		policy:              policy,
		emailService:        emailService,
		eventPublisher:      eventPublisher,
		indexPublisher:      indexPublisher,
		notificationService: notificationService,
	}
}

func noteResponse(n *entity.Note) *dto.NoteResponse {
	labels := n.Labels
	if labels == nil {
		labels = []string{}
	}
	return &dto.NoteResponse{
		Id:          n.Id,
		UrlToken:    n.UrlToken,
		Title:       n.Title,
		Description: n.Description,
		Labels:      labels,
		Visibility:  string(n.Visibility),
		OwnerId:     n.UserId,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

func collaboratorResponse(c *entity.Collaborator) dto.CollaboratorResponse {
	return dto.CollaboratorResponse{
		Id:         c.Id,
		Email:      c.Email,
		UserId:     c.UserId,
		Registered: c.UserId != nil,
		CreatedAt:  c.CreatedAt,
	}
}

func (s *noteService) Create(ctx context.Context, caller *entity.User, req *dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	visibility := entity.NoteVisibility(req.Visibility)
	if req.Visibility == "" {
		visibility = entity.NoteVisibilityPrivate
	}

	labels := req.Labels
	if labels == nil {
		labels = []string{}
	}

	now := time.Now()
	note := &entity.Note{
		Id:          uuid.New(),
		UserId:      caller.Id,
		UrlToken:    uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Labels:      labels,
		Visibility:  visibility,
		CreatedAt:   now,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	var err error
	for attempt := 0; attempt < urlTokenRetries; attempt++ {
		err = uow.NoteRepository().Create(ctx, note)
		if !errors.Is(err, implementation.ErrDuplicate) {
			break
		}
		note.UrlToken = uuid.New()
	}
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}

	s.requestIndexing(note.Id)
	publishEvent(ctx, s.eventPublisher, events.TypeNoteCreated, map[string]interface{}{
		"note_id": note.Id,
		"user_id": caller.Id,
	})

	return noteResponse(note), nil
}

func (s *noteService) GetById(ctx context.Context, caller *entity.User, id uuid.UUID) (*dto.NoteResponse, error) {
	note, err := s.loadNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireView(ctx, caller, note); err != nil {
		return nil, err
	}
	return noteResponse(note), nil
}

func (s *noteService) Update(ctx context.Context, caller *entity.User, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	note, err := s.loadNote(ctx, req.Id)
	if err != nil {
		return nil, err
	}

	canEdit, err := s.policy.CanEdit(ctx, caller, note)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}
	if !canEdit {
		// A caller who may not edit may not view either, so the note does not
		// exist as far as they are concerned.
		return nil, serverutils.NewNotFound("Note not found")
	}

	newVisibility := entity.NoteVisibility(req.Visibility)
	if req.Visibility != "" && newVisibility != note.Visibility && note.UserId != caller.Id {
		return nil, serverutils.NewForbidden("Only the owner can change a note's visibility")
	}

	contentChanged := note.Title != req.Title || note.Description != req.Description

	note.Title = req.Title
	note.Description = req.Description
	if req.Labels != nil {
		note.Labels = req.Labels
	}
	if req.Visibility != "" {
		note.Visibility = newVisibility
	}
	now := time.Now()
	note.UpdatedAt = &now

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return nil, serverutils.NewInternal(err)
	}

	if contentChanged {
		s.requestIndexing(note.Id)
	}

	return noteResponse(note), nil
}

func (s *noteService) Delete(ctx context.Context, caller *entity.User, id uuid.UUID) error {
	note, err := s.loadNote(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireView(ctx, caller, note); err != nil {
		return err
	}
	if !s.policy.CanDelete(caller, note) {
		return serverutils.NewForbidden("Only the owner can delete a note")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NoteRepository().Delete(ctx, id); err != nil {
		return serverutils.NewInternal(err)
	}
	return nil
}

func (s *noteService) AddCollaborator(ctx context.Context, caller *entity.User, noteId uuid.UUID, req *dto.AddCollaboratorRequest) (*dto.CollaboratorResponse, error) {
	note, err := s.requireOwnedNote(ctx, caller, noteId)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	if email == normalizeEmail(caller.Email) {
		return nil, serverutils.NewConflict("The owner already has access to this note")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Opportunistic user link; the stored email stays authoritative.
	invitee, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}

	link := &entity.Collaborator{
		Id:        uuid.New(),
		NoteId:    note.Id,
		Email:     email,
		CreatedAt: time.Now(),
	}
	if invitee != nil {
		link.UserId = &invitee.Id
	}

	if err := uow.CollaboratorRepository().Create(ctx, link); err != nil {
		if errors.Is(err, implementation.ErrDuplicate) {
			return nil, serverutils.NewConflict("This email is already a collaborator on the note")
		}
		return nil, serverutils.NewInternal(err)
	}

	go func() {
		if mailErr := s.emailService.SendCollaboratorInvite(email, caller.FullName, note.Title, note.UrlToken.String()); mailErr != nil {
			fmt.Printf("[WARN] Failed to send collaborator invite: %v\n", mailErr)
		}
	}()

	if invitee != nil && s.notificationService != nil {
		s.notificationService.Notify(ctx, invitee.Id, dto.NotificationMessage{
			Type:      events.TypeNoteShared,
			NoteId:    note.Id,
			NoteTitle: note.Title,
			ActorName: caller.FullName,
			CreatedAt: time.Now(),
		})
	}

	publishEvent(ctx, s.eventPublisher, events.TypeNoteShared, map[string]interface{}{
		"note_id": note.Id,
		"email":   email,
	})

	resp := collaboratorResponse(link)
	return &resp, nil
}

func (s *noteService) RemoveCollaboratorById(ctx context.Context, caller *entity.User, noteId, collaboratorId uuid.UUID) error {
	if _, err := s.requireOwnedNote(ctx, caller, noteId); err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	link, err := uow.CollaboratorRepository().FindOne(ctx,
		specification.CollaboratorOfNote{NoteID: noteId},
		specification.ByID{ID: collaboratorId},
	)
	if err != nil {
		return serverutils.NewInternal(err)
	}
	if link == nil {
		return serverutils.NewNotFound("Collaborator not found")
	}

	return s.removeLink(ctx, uow, link)
}

func (s *noteService) RemoveCollaboratorByEmail(ctx context.Context, caller *entity.User, noteId uuid.UUID, email string) error {
	if _, err := s.requireOwnedNote(ctx, caller, noteId); err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	link, err := uow.CollaboratorRepository().FindOne(ctx,
		specification.CollaboratorOfNote{NoteID: noteId},
		specification.ByCollaboratorEmail{Email: normalizeEmail(email)},
	)
	if err != nil {
		return serverutils.NewInternal(err)
	}
	if link == nil {
		return serverutils.NewNotFound("Collaborator not found")
	}

	return s.removeLink(ctx, uow, link)
}

func (s *noteService) ListCollaborators(ctx context.Context, caller *entity.User, noteId uuid.UUID) ([]dto.CollaboratorResponse, error) {
	note, err := s.loadNote(ctx, noteId)
	if err != nil {
		return nil, err
	}
	if err := s.requireView(ctx, caller, note); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	links, err := uow.CollaboratorRepository().FindAll(ctx,
		specification.CollaboratorOfNote{NoteID: noteId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}

	responses := make([]dto.CollaboratorResponse, 0, len(links))
	for _, link := range links {
		responses = append(responses, collaboratorResponse(link))
	}
	return responses, nil
}

func (s *noteService) removeLink(ctx context.Context, uow unitofwork.UnitOfWork, link *entity.Collaborator) error {
	if err := uow.CollaboratorRepository().Delete(ctx, link.Id); err != nil {
		return serverutils.NewInternal(err)
	}
	publishEvent(ctx, s.eventPublisher, events.TypeCollaboratorGone, map[string]interface{}{
		"note_id": link.NoteId,
		"email":   link.Email,
	})
	return nil
}

func (s *noteService) loadNote(ctx context.Context, id uuid.UUID) (*entity.Note, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}
	if note == nil {
		return nil, serverutils.NewNotFound("Note not found")
	}
	return note, nil
}

// requireView turns a view denial into 404 so callers cannot probe which note
// ids exist.
func (s *noteService) requireView(ctx context.Context, caller *entity.User, note *entity.Note) error {
	canView, err := s.policy.CanView(ctx, caller, note)
	if err != nil {
		return serverutils.NewInternal(err)
	}
	if !canView {
		return serverutils.NewNotFound("Note not found")
	}
	return nil
}

// requireOwnedNote guards collaborator management: a collaborator who can see
// the note gets 403, anyone else gets 404.
func (s *noteService) requireOwnedNote(ctx context.Context, caller *entity.User, noteId uuid.UUID) (*entity.Note, error) {
	note, err := s.loadNote(ctx, noteId)
	if err != nil {
		return nil, err
	}
	if note.UserId == caller.Id {
		return note, nil
	}
	canView, err := s.policy.CanView(ctx, caller, note)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}
	if canView {
		return nil, serverutils.NewForbidden("Only the owner can manage collaborators")
	}
	return nil, serverutils.NewNotFound("Note not found")
}

func (s *noteService) requestIndexing(noteId uuid.UUID) {
	if s.indexPublisher == nil {
		return
	}
	if err := s.indexPublisher.PublishNoteIndex(noteId); err != nil {
		fmt.Printf("[WARN] Failed to enqueue note for indexing: %v\n", err)
	}
}
