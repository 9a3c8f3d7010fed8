package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/edumanage/internal/app/models"
	"github.com/yigit/edumanage/internal/app/models/dto"
	"github.com/yigit/edumanage/internal/app/repositories"
	"github.com/yigit/edumanage/internal/pkg/apperrors"
	"github.com/yigit/edumanage/internal/pkg/auth"
)

// AuthService handles registration, authentication and session issuing
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	IssueSessionToken(user *models.User) (*dto.TokenResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

type authServiceImpl struct {
	userRepo   repositories.IUserRepository
	hasher     *auth.PasswordHasher
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	hasher *auth.PasswordHasher,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:   userRepo,
		hasher:     hasher,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Register creates a user with a hashed password. Usernames are unique and
// compared case-sensitively.
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error) {
	if err := requireNonBlank("userName", req.UserName); err != nil {
		return nil, err
	}
	if req.UserPassword == "" {
		return nil, apperrors.NewValidationError("userPassword is required")
	}
	if err := requireNonBlank("fullName", req.FullName); err != nil {
		return nil, err
	}

	role, ok := models.ParseRole(req.Role)
	if !ok {
		return nil, apperrors.ErrInvalidRole
	}

	hash, err := s.hasher.Hash(req.UserPassword)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     req.UserName,
		PasswordHash: hash,
		FullName:     req.FullName,
		Role:         role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateUsername) {
			s.logger.Info().Str("username", req.UserName).Msg("Registration rejected, username taken")
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(role)).Msg("User registered")
	return user, nil
}

// Authenticate verifies credentials. Unknown user and wrong password produce
// the same error and take comparable time.
func (s *authServiceImpl) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.hasher.VerifyDummy(password)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	ok, needsRehash := s.hasher.Verify(user.PasswordHash, password)
	if !ok {
		return nil, apperrors.ErrInvalidCredentials
	}

	if needsRehash {
		s.upgradeHash(ctx, user, password)
	}

	return user, nil
}

// upgradeHash replaces a legacy or weak hash. Failure is logged and the
// login still succeeds; the next login retries.
func (s *authServiceImpl) upgradeHash(ctx context.Context, user *models.User, password string) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to rehash password")
		return
	}
	if err := s.userRepo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to store upgraded password hash")
		return
	}
	user.PasswordHash = hash
	s.logger.Info().Int64("userID", user.ID).Msg("Password hash upgraded")
}

// IssueSessionToken signs a bearer token for the user
func (s *authServiceImpl) IssueSessionToken(user *models.User) (*dto.TokenResponse, error) {
	token, expiresAt, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		Token:       token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwtService.Expiration().Seconds()),
		ExpiresAt:   expiresAt,
	}, nil
}

// Login authenticates and issues a token in one step
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.Authenticate(ctx, req.UserName, req.UserPassword)
	if err != nil {
		return nil, err
	}

	token, err := s.IssueSessionToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Msg("User logged in")
	return &dto.LoginResponse{
		User:          dto.NewUserResponse(user),
		TokenResponse: *token,
	}, nil
}
