package service

import (
	"context"
	"time"

	"medassist-be/internal/dto"
	"medassist-be/internal/pkg/apperror"
	"medassist-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IUserService interface {
	UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewUserService(uowFactory unitofwork.RepositoryFactory) IUserService {
	return &userService{uowFactory: uowFactory}
}

func (s *userService) UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindByID(ctx, userId)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}

	if req.Name != "" {
		user.FullName = req.Name
	}
	if req.Specialization != "" {
		user.Specialization = &req.Specialization
	}
	if req.HospitalName != "" {
		user.HospitalName = &req.HospitalName
	}
	user.UpdatedAt = time.Now()

	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return nil, err
	}

	res := toUserResponse(user)
	return &res, nil
}
