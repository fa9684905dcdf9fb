package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/tuanvumaihuynh/vending-machine/internal/apperr"
	"github.com/tuanvumaihuynh/vending-machine/internal/model"
	"github.com/tuanvumaihuynh/vending-machine/internal/repository"
	"github.com/tuanvumaihuynh/vending-machine/internal/storage/db"
	"github.com/tuanvumaihuynh/vending-machine/pkg/validator"
)

type LoginParams struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateUserParams struct {
	Username  string `json:"username" validate:"required,max=150,username"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

type AuthService interface {
	// Login checks the credentials and returns the buyer profile, creating
	// an empty buyer the first time the user logs in.
	Login(ctx context.Context, params LoginParams) (model.BuyerProfile, error)
	Profile(ctx context.Context, userID uuid.UUID) (model.BuyerProfile, error)
	CreateUser(ctx context.Context, params CreateUserParams) (model.User, error)
}

type authService struct {
	db         db.DB
	userRepo   repository.UserRepository
	buyerRepo  repository.BuyerRepository
	validator  validator.Validator
	bcryptCost int
}

func NewAuthService(
	db db.DB,
	userRepo repository.UserRepository,
	buyerRepo repository.BuyerRepository,
	validator validator.Validator,
) AuthService {
	return &authService{
		db:         db,
		userRepo:   userRepo,
		buyerRepo:  buyerRepo,
		validator:  validator,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// dummyHash is compared against when the username is unknown so both failure
// paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.MinCost)

func (s *authService) Login(ctx context.Context, params LoginParams) (model.BuyerProfile, error) {
	if err := validate(s.validator, params); err != nil {
		return model.BuyerProfile{}, err
	}

	user, err := s.userRepo.GetUserByUsername(ctx, params.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			//nolint:errcheck
			bcrypt.CompareHashAndPassword(dummyHash, []byte(params.Password))
			return model.BuyerProfile{}, apperr.AuthenticationFailedErr
		}
		return model.BuyerProfile{}, fmt.Errorf("user repository get user by username: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(params.Password)); err != nil {
		return model.BuyerProfile{}, apperr.AuthenticationFailedErr.WrapParent(err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.BuyerProfile{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	buyer, _, err := s.buyerRepo.GetOrCreateBuyer(ctx, model.Buyer{
		ID:     id,
		UserID: user.ID,
		Credit: decimal.Zero,
	})
	if err != nil {
		return model.BuyerProfile{}, fmt.Errorf("buyer repository get or create buyer: %w", err)
	}

	return model.BuyerProfile{Buyer: buyer, User: user}, nil
}

func (s *authService) Profile(ctx context.Context, userID uuid.UUID) (model.BuyerProfile, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.BuyerProfile{}, apperr.UnauthenticatedErr
		}
		return model.BuyerProfile{}, fmt.Errorf("user repository get user by id: %w", err)
	}

	buyer, err := getBuyer(ctx, s.buyerRepo, userID, false)
	if err != nil {
		return model.BuyerProfile{}, err
	}

	return model.BuyerProfile{Buyer: buyer, User: user}, nil
}

func (s *authService) CreateUser(ctx context.Context, params CreateUserParams) (model.User, error) {
	if err := validate(s.validator, params); err != nil {
		return model.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.bcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.User{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	user := model.User{
		ID:           id,
		Username:     params.Username,
		PasswordHash: string(hash),
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return model.User{}, apperr.UsernameTakenErr
		}
		return model.User{}, fmt.Errorf("user repository create user: %w", err)
	}

	return user, nil
}
