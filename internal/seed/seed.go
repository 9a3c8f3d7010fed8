package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/edumanage/internal/app/models"
	appRepos "github.com/yigit/edumanage/internal/app/repositories"
	"github.com/yigit/edumanage/internal/pkg/apperrors"
	"github.com/yigit/edumanage/internal/pkg/auth"
)

// Instructor describes the account created on first start
type Instructor struct {
	Username string
	Password string
	FullName string
}

// CreateDefaultData creates the initial instructor if it does not exist yet.
// An empty password disables seeding. Running it again is a no-op.
func CreateDefaultData(ctx context.Context, userRepo appRepos.IUserRepository, hasher *auth.PasswordHasher, instructor Instructor, lgr zerolog.Logger) error {
	if instructor.Password == "" {
		lgr.Info().Msg("No seed instructor password configured, skipping default data")
		return nil
	}
	if instructor.Username == "" {
		return errors.New("seed instructor username is required")
	}

	_, err := userRepo.GetByUsername(ctx, instructor.Username)
	switch {
	case err == nil:
		lgr.Info().Str("username", instructor.Username).Msg("Seed instructor already exists, skipping creation")
		return nil
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return fmt.Errorf("error checking seed instructor: %w", err)
	}

	hash, err := hasher.Hash(instructor.Password)
	if err != nil {
		return fmt.Errorf("error hashing seed instructor password: %w", err)
	}

	fullName := instructor.FullName
	if fullName == "" {
		fullName = instructor.Username
	}

	user := &appModels.User{
		Username:     instructor.Username,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         appModels.RoleInstructor,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		// another replica won the race
		if errors.Is(err, apperrors.ErrDuplicateUsername) {
			return nil
		}
		return fmt.Errorf("error creating seed instructor: %w", err)
	}

	lgr.Info().Int64("userID", user.ID).Str("username", user.Username).Msg("Seed instructor created")
	return nil
}
