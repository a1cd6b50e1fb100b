package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"noteshare-be/internal/entity"
	"noteshare-be/internal/pkg/token"
	"noteshare-be/internal/repository/specification"
	"noteshare-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

var (
	ErrMissingCredential = errors.New("missing bearer credential")
	ErrPrincipalNotFound = errors.New("token subject does not resolve to a user")
)

const bearerPrefix = "Bearer "

// IAuthenticator resolves an Authorization header to a caller identity.
type IAuthenticator interface {
	Authenticate(ctx context.Context, authorizationHeader string) (*entity.User, error)
}

type authenticator struct {
	codec      *token.Codec
	uowFactory unitofwork.RepositoryFactory
	// identityCache keeps hot-path subject lookups off the DB. Access tokens
	// are stateless anyway, so a short TTL loses nothing.
	identityCache *gocache.Cache
}

func NewAuthenticator(codec *token.Codec, uowFactory unitofwork.RepositoryFactory) IAuthenticator {
	return &authenticator{
		codec:         codec,
		uowFactory:    uowFactory,
		identityCache: gocache.New(time.Minute, 5*time.Minute),
	}
}

// Authenticate runs decode -> signature -> expiry -> subject, then resolves
// the subject: by email when it contains "@", by UUID otherwise.
func (a *authenticator) Authenticate(ctx context.Context, authorizationHeader string) (*entity.User, error) {
	if !strings.HasPrefix(authorizationHeader, bearerPrefix) {
		return nil, ErrMissingCredential
	}
	tokenStr := authorizationHeader[len(bearerPrefix):]
	if tokenStr == "" {
		return nil, ErrMissingCredential
	}

	subject, err := a.codec.Verify(tokenStr)
	if err != nil {
		return nil, err
	}

	if cached, ok := a.identityCache.Get(subject); ok {
		return cached.(*entity.User), nil
	}

	user, err := a.resolveSubject(ctx, subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrPrincipalNotFound
	}

	a.identityCache.SetDefault(subject, user)
	return user, nil
}

func (a *authenticator) resolveSubject(ctx context.Context, subject string) (*entity.User, error) {
	uow := a.uowFactory.NewUnitOfWork(ctx)

	if strings.Contains(subject, "@") {
		return uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: subject})
	}

	id, err := uuid.Parse(subject)
	if err != nil {
		return nil, ErrPrincipalNotFound
	}
	return uow.UserRepository().FindOne(ctx, specification.ByID{ID: id})
}
