package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/edumanage/internal/app/models"
	"github.com/yigit/edumanage/internal/pkg/apperrors"
	"github.com/yigit/edumanage/internal/pkg/dberrors"
	"github.com/yigit/edumanage/internal/pkg/logger"
)

const constraintUsersUsername = "users_username_key"

var userColumns = []string{"id", "username", "password_hash", "full_name", "role", "created_at"}

// UserRepository handles user database operations
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	var role string
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.FullName, &role, &user.CreatedAt); err != nil {
		return nil, err
	}
	user.Role = models.RoleType(role)
	return user, nil
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	sql, args, err := r.sb.Insert("users").
		Columns("username", "password_hash", "full_name", "role").
		Values(user.Username, user.PasswordHash, user.FullName, string(user.Role)).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, constraintUsersUsername) {
			return apperrors.ErrDuplicateUsername
		}
		logger.Error().Err(err).Str("username", user.Username).Msg("Error executing create user query")
		return fmt.Errorf("error creating user: %w", err)
	}

	return nil
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).
		From("users").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByUsername retrieves a user by exact (case-sensitive) username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"username": username})
}

// List returns every user ordered by id
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	return r.list(ctx, r.sb.Select(userColumns...).From("users").OrderBy("id ASC"))
}

// ListRecent returns the most recently registered users
func (r *UserRepository) ListRecent(ctx context.Context, limit int) ([]*models.User, error) {
	return r.list(ctx, r.sb.Select(userColumns...).From("users").OrderBy("id DESC").Limit(uint64(limit)))
}

func (r *UserRepository) list(ctx context.Context, query squirrel.SelectBuilder) ([]*models.User, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list users query")
		return nil, fmt.Errorf("error querying users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

// CountByRole returns the number of users per role. Roles without users map to zero.
func (r *UserRepository) CountByRole(ctx context.Context) (map[models.RoleType]int64, error) {
	sql, args, err := r.sb.Select("role", "COUNT(*)").
		From("users").
		GroupBy("role").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error counting users: %w", err)
	}
	defer rows.Close()

	counts := map[models.RoleType]int64{models.RoleStudent: 0, models.RoleInstructor: 0}
	for rows.Next() {
		var role string
		var n int64
		if err := rows.Scan(&role, &n); err != nil {
			return nil, fmt.Errorf("error scanning user count: %w", err)
		}
		counts[models.RoleType(role)] = n
	}
	return counts, rows.Err()
}

// UpdatePasswordHash replaces the stored hash, used when upgrading legacy hashes
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	sql, args, err := r.sb.Update("users").
		Set("password_hash", hash).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update password query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
