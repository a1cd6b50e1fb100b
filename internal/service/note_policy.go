package service

import (
	"context"

	"noteshare-be/internal/entity"
	"noteshare-be/internal/repository/specification"
	"noteshare-be/internal/repository/unitofwork"
)

// INotePolicy decides what a caller may do with a note. Decisions are plain
// booleans; calling code turns a denial into 403 or 404 depending on context.
type INotePolicy interface {
	CanView(ctx context.Context, caller *entity.User, note *entity.Note) (bool, error)
	CanEdit(ctx context.Context, caller *entity.User, note *entity.Note) (bool, error)
	CanDelete(caller *entity.User, note *entity.Note) bool
}

type notePolicy struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewNotePolicy(uowFactory unitofwork.RepositoryFactory) INotePolicy {
	return &notePolicy{uowFactory: uowFactory}
}

// CanDelete holds iff the caller owns the note. No exceptions.
func (p *notePolicy) CanDelete(caller *entity.User, note *entity.Note) bool {
	if caller == nil {
		return false
	}
	return note.UserId == caller.Id
}

func (p *notePolicy) CanView(ctx context.Context, caller *entity.User, note *entity.Note) (bool, error) {
	return p.ownerOrCollaborator(ctx, caller, note)
}

func (p *notePolicy) CanEdit(ctx context.Context, caller *entity.User, note *entity.Note) (bool, error) {
	return p.ownerOrCollaborator(ctx, caller, note)
}

// ownerOrCollaborator matches collaborator links by user reference or by the
// caller's email; a link may predate the invitee's registration, so the email
// fallback is required, not an optimization.
func (p *notePolicy) ownerOrCollaborator(ctx context.Context, caller *entity.User, note *entity.Note) (bool, error) {
	if caller == nil {
		return false, nil
	}
	if note.UserId == caller.Id {
		return true, nil
	}

	uow := p.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.CollaboratorRepository().Count(ctx,
		specification.CollaboratorOfNote{NoteID: note.Id},
		specification.CollaboratorMatchesUser{UserID: caller.Id, Email: caller.Email},
	)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
