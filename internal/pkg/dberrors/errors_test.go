package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateConstraintError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}

	assert.True(t, IsDuplicateConstraintError(pgErr, "users_username_key"))
	assert.True(t, IsDuplicateConstraintError(fmt.Errorf("insert: %w", pgErr), "users_username_key"))
	assert.False(t, IsDuplicateConstraintError(pgErr, "enrollments_student_course_key"))
	assert.False(t, IsDuplicateConstraintError(errors.New("boom"), "users_username_key"))
	assert.False(t, IsDuplicateConstraintError(nil, "users_username_key"))
}

func TestIsForeignKeyViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23503", ConstraintName: "enrollments_course_id_fkey"}

	assert.True(t, IsForeignKeyViolation(pgErr, "enrollments_course_id_fkey"))
	assert.False(t, IsForeignKeyViolation(pgErr, "enrollments_student_id_fkey"))
	assert.False(t, IsDuplicateConstraintError(pgErr, "enrollments_course_id_fkey"))
}
