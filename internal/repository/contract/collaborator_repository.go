package contract

import (
	"context"

	"noteshare-be/internal/entity"
	"noteshare-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CollaboratorRepository interface {
	Create(ctx context.Context, link *entity.Collaborator) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Collaborator, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Collaborator, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// AttachUser resolves pending invitations for an email to a freshly
	// registered user. The stored email stays authoritative either way.
	AttachUser(ctx context.Context, email string, userId uuid.UUID) error
	DetachUser(ctx context.Context, userId uuid.UUID) error
}
