package service

import (
	"context"
	"strings"
	"time"

	"medassist-be/internal/dto"
	"medassist-be/internal/entity"
	"medassist-be/internal/pkg/apperror"
	"medassist-be/internal/pkg/serverutils"
	"medassist-be/internal/repository/specification"
	"medassist-be/internal/repository/unitofwork"
	"medassist-be/pkg/events"
	pktNats "medassist-be/pkg/nats"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error)
}

type authService struct {
	uowFactory     unitofwork.RepositoryFactory
	tokenExpiry    time.Duration
	eventPublisher *pktNats.Publisher
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, tokenExpiry time.Duration, eventPublisher *pktNats.Publisher) IAuthService {
	return &authService{
		uowFactory:     uowFactory,
		tokenExpiry:    tokenExpiry,
		eventPublisher: eventPublisher,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Validation("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Id:           uuid.New(),
		FullName:     req.Name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if req.Specialization != "" {
		user.Specialization = &req.Specialization
	}
	if req.HospitalName != "" {
		user.HospitalName = &req.HospitalName
	}

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: events.TypeUserRegistered,
			Data: map[string]interface{}{"user_id": user.Id.String()},
		}
		s.eventPublisher.Publish(ctx, evt)
	}

	return s.issueToken(user)
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, err
	}
	// Same message for unknown email and wrong password.
	if user == nil {
		return nil, apperror.Auth("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.Auth("invalid credentials")
	}

	return s.issueToken(user)
}

func (s *authService) Me(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindByID(ctx, userId)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}

	res := toUserResponse(user)
	return &res, nil
}

func (s *authService) issueToken(user *entity.User) (*dto.AuthResponse, error) {
	token, err := serverutils.GenerateToken(user.Id.String(), s.tokenExpiry)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Token: token,
		User:  toUserResponse(user),
	}, nil
}

func toUserResponse(user *entity.User) dto.UserResponse {
	res := dto.UserResponse{
		Id:        user.Id,
		Name:      user.FullName,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
	if user.Specialization != nil {
		res.Specialization = *user.Specialization
	}
	if user.HospitalName != nil {
		res.HospitalName = *user.HospitalName
	}
	return res
}
