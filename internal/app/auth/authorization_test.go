package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/edumanage/internal/app/models"
	"github.com/yigit/edumanage/internal/pkg/apperrors"
	jwtauth "github.com/yigit/edumanage/internal/pkg/auth"
)

var (
	student    = &Principal{UserID: 7, Username: "stu", Role: models.RoleStudent}
	instructor = &Principal{UserID: 1, Username: "prof", Role: models.RoleInstructor}
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		p       *Principal
		req     Requirement
		wantErr error
	}{
		{"anonymous", nil, Authenticated, apperrors.ErrUnauthenticated},
		{"anonymous instructor route", nil, InstructorOnly, apperrors.ErrUnauthenticated},
		{"student authenticated", student, Authenticated, nil},
		{"student instructor route", student, InstructorOnly, apperrors.ErrPermissionDenied},
		{"instructor", instructor, InstructorOnly, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.p, tt.req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCanAccessStudentRecords(t *testing.T) {
	assert.NoError(t, CanAccessStudentRecords(student, 7))
	assert.ErrorIs(t, CanAccessStudentRecords(student, 8), apperrors.ErrPermissionDenied)
	assert.NoError(t, CanAccessStudentRecords(instructor, 8))
	assert.ErrorIs(t, CanAccessStudentRecords(nil, 7), apperrors.ErrUnauthenticated)
}

func TestResolveEnrollee(t *testing.T) {
	other := int64(8)
	self := int64(7)

	id, err := ResolveEnrollee(student, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	id, err = ResolveEnrollee(student, &self)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	_, err = ResolveEnrollee(student, &other)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	id, err = ResolveEnrollee(instructor, &other)
	require.NoError(t, err)
	assert.Equal(t, int64(8), id)
}

func TestPrincipalFromClaims(t *testing.T) {
	p := PrincipalFromClaims(&jwtauth.Claims{UserID: 3, Username: "x", FullName: "X Y", Role: "Instructor"})
	assert.Equal(t, int64(3), p.UserID)
	assert.True(t, p.IsInstructor())

	var none *Principal
	assert.False(t, none.IsInstructor())
}
