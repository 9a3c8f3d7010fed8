package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/edumanage/internal/app/models"
	"github.com/yigit/edumanage/internal/app/models/dto"
	"github.com/yigit/edumanage/internal/app/repositories"
	"github.com/yigit/edumanage/internal/app/repositories/memory"
	"github.com/yigit/edumanage/internal/pkg/apperrors"
	"github.com/yigit/edumanage/internal/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	repos       *repositories.Repositories
	hasher      *auth.PasswordHasher
	jwt         *auth.JWTService
	auth        AuthService
	users       UserService
	courses     CourseService
	enrollments EnrollmentService
	admin       AdminService
	events      *recordingNotifier
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.EnrollmentEvent
}

func (r *recordingNotifier) EnrollmentChanged(kind models.EnrollmentEvent, _ *models.Enrollment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, kind)
}

func (r *recordingNotifier) kinds() []models.EnrollmentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.EnrollmentEvent(nil), r.events...)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:  "test-secret",
		Issuer:     "edumanage-test",
		Audience:   "edumanage-test",
		Expiration: time.Hour,
	})

	repos := memory.NewRepositories()
	lgr := zerolog.Nop()
	events := &recordingNotifier{}

	return &fixture{
		repos:       repos,
		hasher:      hasher,
		jwt:         jwtService,
		auth:        NewAuthService(repos.Users, hasher, jwtService, lgr),
		users:       NewUserService(repos.Users, lgr),
		courses:     NewCourseService(repos.Courses, lgr),
		enrollments: NewEnrollmentService(repos.Enrollments, events, lgr),
		admin:       NewAdminService(repos, lgr),
		events:      events,
	}
}

func (f *fixture) register(t *testing.T, username string, role models.RoleType) *models.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), &dto.RegisterRequest{
		UserName:     username,
		UserPassword: "pw-" + username,
		FullName:     strings.ToUpper(username),
		Role:         string(role),
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) course(t *testing.T, title string) *models.Course {
	t.Helper()
	c, err := f.courses.CreateCourse(context.Background(), &dto.CourseRequest{Title: title})
	require.NoError(t, err)
	return c
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u := f.register(t, "alice", models.RoleStudent)
	assert.Positive(t, u.ID)
	assert.NotEqual(t, "pw-alice", u.PasswordHash)

	resp, err := f.auth.Login(ctx, &dto.LoginRequest{UserName: "alice", UserPassword: "pw-alice"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, resp.User.UserID)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := f.jwt.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "Student", claims.Role)
}

func TestAuthService_RegisterRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "bob", models.RoleInstructor)

	_, err := f.auth.Register(ctx, &dto.RegisterRequest{UserName: "bob", UserPassword: "x", FullName: "Other", Role: "Student"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateUsername)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = f.auth.Register(ctx, &dto.RegisterRequest{UserName: "carol", UserPassword: "x", FullName: "Carol", Role: "student"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidRole)

	_, err = f.auth.Register(ctx, &dto.RegisterRequest{UserName: "   ", UserPassword: "x", FullName: "Blank", Role: "Student"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.auth.Register(ctx, &dto.RegisterRequest{UserName: "dave", UserPassword: "", FullName: "Dave", Role: "Student"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestAuthService_InvalidCredentialsAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice", models.RoleStudent)

	_, errWrongPassword := f.auth.Authenticate(ctx, "alice", "nope")
	_, errUnknownUser := f.auth.Authenticate(ctx, "mallory", "nope")

	assert.ErrorIs(t, errWrongPassword, apperrors.ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknownUser, apperrors.ErrInvalidCredentials)
	assert.Equal(t, errWrongPassword.Error(), errUnknownUser.Error())
}

func TestAuthService_UpgradesLegacyHash(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	legacy := &models.User{
		Username:     "old",
		PasswordHash: auth.LegacyHash("hunter2"),
		FullName:     "Old Timer",
		Role:         models.RoleStudent,
	}
	require.NoError(t, f.repos.Users.Create(ctx, legacy))

	u, err := f.auth.Authenticate(ctx, "old", "hunter2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u.PasswordHash, "$2"))

	stored, err := f.repos.Users.GetByID(ctx, legacy.ID)
	require.NoError(t, err)
	assert.Equal(t, u.PasswordHash, stored.PasswordHash)

	_, err = f.auth.Authenticate(ctx, "old", "hunter2")
	assert.NoError(t, err)
}

func TestUserService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.register(t, "a", models.RoleStudent)
	f.register(t, "b", models.RoleInstructor)

	got, err := f.users.GetUserByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Username)

	_, err = f.users.GetUserByID(ctx, 404)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	_, err = f.users.GetUserByID(ctx, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	all, err := f.users.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCourseService_CRUD(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	desc := "  basics  "
	c, err := f.courses.CreateCourse(ctx, &dto.CourseRequest{Title: " Go 101 ", Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Go 101", c.Title)
	require.NotNil(t, c.Description)
	assert.Equal(t, "basics", *c.Description)

	_, err = f.courses.CreateCourse(ctx, &dto.CourseRequest{Title: "  "})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	updated, err := f.courses.UpdateCourse(ctx, c.ID, &dto.CourseRequest{Title: "Go 102"})
	require.NoError(t, err)
	assert.Equal(t, "Go 102", updated.Title)
	assert.Nil(t, updated.Description)

	got, err := f.courses.GetCourseByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go 102", got.Title)

	_, err = f.courses.UpdateCourse(ctx, 999, &dto.CourseRequest{Title: "x"})
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)

	deleted, err := f.courses.DeleteCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = f.courses.DeleteCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = f.courses.GetCourseByID(ctx, c.ID)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestEnrollmentService_EnrollOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := f.register(t, "s", models.RoleStudent)
	c := f.course(t, "Go")

	e, err := f.enrollments.Enroll(ctx, s.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, e.Status)

	_, err = f.enrollments.Approve(ctx, e.ID)
	require.NoError(t, err)

	_, err = f.enrollments.Enroll(ctx, s.ID, c.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyEnrolled)

	// the existing enrollment keeps its status
	list, err := f.enrollments.ListByStudent(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.StatusApproved, list[0].Status)

	_, err = f.enrollments.Enroll(ctx, s.ID, 999)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)

	_, err = f.enrollments.Enroll(ctx, 0, c.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestEnrollmentService_ConcurrentEnrollCreatesOne(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := f.register(t, "s", models.RoleStudent)
	c := f.course(t, "Go")

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.enrollments.Enroll(ctx, s.ID, c.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if assert.ErrorIs(t, err, apperrors.ErrAlreadyEnrolled) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicts)

	all, err := f.enrollments.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEnrollmentService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := f.register(t, "s", models.RoleStudent)
	c := f.course(t, "Go")
	e, err := f.enrollments.Enroll(ctx, s.ID, c.ID)
	require.NoError(t, err)

	tests := []struct {
		name    string
		status  string
		want    models.EnrollmentStatus
		wantErr error
	}{
		{name: "approve", status: "Approved", want: models.StatusApproved},
		{name: "reject after approve", status: "Rejected", want: models.StatusRejected},
		{name: "back to pending", status: "Pending", want: models.StatusPending},
		{name: "lowercase is invalid", status: "approved", wantErr: apperrors.ErrInvalidStatus},
		{name: "unknown", status: "Done", wantErr: apperrors.ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.enrollments.UpdateStatus(ctx, e.ID, tt.status)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Status)
		})
	}

	_, err = f.enrollments.UpdateStatus(ctx, 999, "Approved")
	assert.ErrorIs(t, err, apperrors.ErrEnrollmentNotFound)

	_, err = f.enrollments.Reject(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrEnrollmentNotFound)
}

func TestEnrollmentService_Listings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s1 := f.register(t, "s1", models.RoleStudent)
	s2 := f.register(t, "s2", models.RoleStudent)
	c1 := f.course(t, "Go")
	c2 := f.course(t, "SQL")

	e1, err := f.enrollments.Enroll(ctx, s1.ID, c1.ID)
	require.NoError(t, err)
	_, err = f.enrollments.Enroll(ctx, s1.ID, c2.ID)
	require.NoError(t, err)
	_, err = f.enrollments.Enroll(ctx, s2.ID, c1.ID)
	require.NoError(t, err)
	_, err = f.enrollments.Approve(ctx, e1.ID)
	require.NoError(t, err)

	mine, err := f.enrollments.ListByStudent(ctx, s1.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, e := range mine {
		assert.Equal(t, s1.ID, e.StudentID)
	}

	pending, err := f.enrollments.ListByStatus(ctx, models.StatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, err = f.enrollments.ListByStatus(ctx, "pending")
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
}

func TestAdminService_StatsAndReports(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	empty, err := f.admin.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, dto.DashboardStats{}, *empty)

	f.register(t, "lecturer", models.RoleInstructor)
	var students []*models.User
	for _, name := range []string{"s1", "s2", "s3", "s4", "s5", "s6"} {
		students = append(students, f.register(t, name, models.RoleStudent))
	}
	c1 := f.course(t, "Go")
	c2 := f.course(t, "SQL")

	var last *models.Enrollment
	for _, s := range students {
		last, err = f.enrollments.Enroll(ctx, s.ID, c1.ID)
		require.NoError(t, err)
		_, err = f.enrollments.Enroll(ctx, s.ID, c2.ID)
		require.NoError(t, err)
	}
	_, err = f.enrollments.Approve(ctx, 1)
	require.NoError(t, err)
	_, err = f.enrollments.Reject(ctx, 2)
	require.NoError(t, err)

	stats, err := f.admin.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, dto.DashboardStats{
		TotalUsers:          7,
		TotalStudents:       6,
		TotalInstructors:    1,
		TotalCourses:        2,
		TotalEnrollments:    12,
		PendingEnrollments:  10,
		ApprovedEnrollments: 1,
		RejectedEnrollments: 1,
	}, *stats)

	userReport, err := f.admin.GetUserReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), userReport.TotalUsers)
	require.Len(t, userReport.RecentUsers, RecentUsersLimit)
	assert.Equal(t, "s6", userReport.RecentUsers[0].UserName)

	enrollmentReport, err := f.admin.GetEnrollmentReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12), enrollmentReport.TotalEnrollments)
	require.Len(t, enrollmentReport.RecentEnrollments, RecentEnrollmentsLimit)
	assert.Equal(t, last.ID+1, enrollmentReport.RecentEnrollments[0].EnrollmentID)
	assert.Greater(t, enrollmentReport.RecentEnrollments[0].EnrollmentID, enrollmentReport.RecentEnrollments[1].EnrollmentID)
}

func TestEnrollmentService_NotifiesCommittedChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stu := f.register(t, "nina", models.RoleStudent)
	c := f.course(t, "Networks")

	e, err := f.enrollments.Enroll(ctx, stu.ID, c.ID)
	require.NoError(t, err)

	_, err = f.enrollments.Enroll(ctx, stu.ID, c.ID)
	require.ErrorIs(t, err, apperrors.ErrAlreadyEnrolled)

	_, err = f.enrollments.UpdateStatus(ctx, e.ID, "approved")
	require.ErrorIs(t, err, apperrors.ErrInvalidStatus)

	_, err = f.enrollments.Approve(ctx, e.ID)
	require.NoError(t, err)

	assert.Equal(t, []models.EnrollmentEvent{
		models.EventEnrollmentCreated,
		models.EventEnrollmentStatusChanged,
	}, f.events.kinds())
}

func TestEnrollmentService_NilNotifier(t *testing.T) {
	repos := memory.NewRepositories()
	svc := NewEnrollmentService(repos.Enrollments, nil, zerolog.Nop())

	_, err := svc.Approve(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrEnrollmentNotFound)
}
