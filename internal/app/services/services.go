// Package services holds the business rules. Services depend on the
// repository interfaces only, so they run unchanged against PostgreSQL or
// the in-memory store.
//
//   - AuthService: registration, credential checks and session tokens
//   - UserService: user lookups
//   - CourseService: course catalog
//   - EnrollmentService: the enrollment ledger
//   - AdminService: dashboard counts and reports
package services

import (
	"fmt"
	"strings"

	"github.com/yigit/edumanage/internal/pkg/apperrors"
)

func requirePositiveID(name string, id int64) error {
	if id <= 0 {
		return apperrors.NewValidationError(fmt.Sprintf("%s must be a positive integer", name))
	}
	return nil
}

func requireNonBlank(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.NewValidationError(name + " is required")
	}
	return nil
}
