package service

import (
	"context"

	"noteshare-be/internal/dto"
	"noteshare-be/internal/entity"
	"noteshare-be/internal/pkg/serverutils"
	"noteshare-be/internal/repository/specification"
	"noteshare-be/internal/repository/unitofwork"
)

type IUserService interface {
	Me(ctx context.Context, caller *entity.User) (*dto.UserDTO, error)
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewUserService(uowFactory unitofwork.RepositoryFactory) IUserService {
	return &userService{uowFactory: uowFactory}
}

// Me re-reads the profile rather than echoing the cached identity, so a just
// verified account shows up as verified immediately.
func (s *userService) Me(ctx context.Context, caller *entity.User) (*dto.UserDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: caller.Id})
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}
	if user == nil {
		return nil, serverutils.NewUnauthorized()
	}
	profile := userDTO(user)
	return &profile, nil
}
