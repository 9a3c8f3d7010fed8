package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/edumanage/internal/app/controllers"
	"github.com/yigit/edumanage/internal/app/models/dto"
	"github.com/yigit/edumanage/internal/app/repositories/memory"
	"github.com/yigit/edumanage/internal/app/services"
	"github.com/yigit/edumanage/internal/middleware"
	"github.com/yigit/edumanage/internal/pkg/auth"
	"github.com/yigit/edumanage/internal/pkg/websocket"
	"golang.org/x/crypto/bcrypt"
)

type apiEnvelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Error   *dto.ErrorDetail `json:"error"`
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	lgr := zerolog.Nop()
	repos := memory.NewRepositories()
	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:  "route-test-secret",
		Issuer:     "edumanage",
		Audience:   "edumanage-api",
		Expiration: time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := websocket.NewHub(lgr)
	go hub.Run(ctx)

	authService := services.NewAuthService(repos.Users, hasher, jwtService, lgr)
	ctrl := Controllers{
		Auth:       controllers.NewAuthController(authService, lgr),
		User:       controllers.NewUserController(services.NewUserService(repos.Users, lgr)),
		Course:     controllers.NewCourseController(services.NewCourseService(repos.Courses, lgr)),
		Enrollment: controllers.NewEnrollmentController(services.NewEnrollmentService(repos.Enrollments, hub, lgr)),
		Admin:      controllers.NewAdminController(services.NewAdminService(repos, lgr), authService, lgr),
		Health:     controllers.NewHealthController(nil, "memory"),
		Feed:       websocket.NewHandler(hub, lgr),
	}

	router := gin.New()
	router.Use(middleware.Recovery(lgr))
	SetupRouter(router, ctrl, middleware.NewAuthMiddleware(jwtService, lgr))
	return &testAPI{t: t, router: router}
}

func (a *testAPI) do(method, path, token string, body interface{}) (int, apiEnvelope) {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env apiEnvelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func (a *testAPI) data(env apiEnvelope, out interface{}) {
	a.t.Helper()
	require.NoError(a.t, json.Unmarshal(env.Data, out))
}

// signup registers and logs in, returning the user id and token.
func (a *testAPI) signup(username, role string) (int64, string) {
	a.t.Helper()

	status, env := a.do(http.MethodPost, "/api/users/register", "", map[string]string{
		"userName": username, "userPassword": "pw", "fullName": username + " Name", "role": role,
	})
	require.Equal(a.t, http.StatusOK, status)
	var user dto.UserResponse
	a.data(env, &user)

	status, env = a.do(http.MethodPost, "/api/users/login", "", map[string]string{
		"userName": username, "userPassword": "pw",
	})
	require.Equal(a.t, http.StatusOK, status)
	var login dto.LoginResponse
	a.data(env, &login)
	return user.UserID, login.Token
}

func (a *testAPI) createCourse(token, title string) int64 {
	a.t.Helper()
	status, env := a.do(http.MethodPost, "/api/admin/courses", token, map[string]string{"title": title})
	require.Equal(a.t, http.StatusCreated, status)
	var c dto.CourseResponse
	a.data(env, &c)
	return c.CourseID
}

func TestRegisterAndLogin(t *testing.T) {
	api := newTestAPI(t)
	id, token := api.signup("alice", "Student")
	assert.Positive(t, id)
	assert.NotEmpty(t, token)

	status, env := api.do(http.MethodPost, "/api/users/register", "", map[string]string{
		"userName": "alice", "userPassword": "x", "fullName": "Dup", "role": "Student",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, dto.ErrorCodeResourceAlreadyExists, env.Error.Code)

	status, env = api.do(http.MethodPost, "/api/users/register", "", map[string]string{
		"userName": "bob", "userPassword": "x", "fullName": "Bob", "role": "Admin",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, dto.ErrorCodeInvalidRole, env.Error.Code)

	status, _ = api.do(http.MethodPost, "/api/users/register", "", map[string]string{"userName": "carol"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = api.do(http.MethodPost, "/api/users/login", "", map[string]string{"userName": "alice", "userPassword": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, dto.ErrorCodeInvalidCredentials, env.Error.Code)

	status, env = api.do(http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	var me dto.UserResponse
	api.data(env, &me)
	assert.Equal(t, "alice", me.UserName)
	assert.NotContains(t, string(env.Data), "password")
}

func TestLoginResponseCarriesFlatToken(t *testing.T) {
	api := newTestAPI(t)
	api.signup("dana", "Student")

	status, env := api.do(http.MethodPost, "/api/users/login", "", map[string]string{
		"userName": "dana", "userPassword": "pw",
	})
	require.Equal(t, http.StatusOK, status)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &body))
	for _, key := range []string{"user", "token", "tokenType", "expiresIn", "expiresAt"} {
		assert.Contains(t, body, key)
	}

	var token string
	require.NoError(t, json.Unmarshal(body["token"], &token), "token must be the JWT string")
	assert.Equal(t, 3, len(strings.Split(token, ".")))

	status, _ = api.do(http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestRegisterRejectsOverlongPassword(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name     string
		password string
	}{
		{"ascii over 72 bytes", strings.Repeat("p", 73)},
		{"multi-byte runes over 72 bytes", strings.Repeat("€", 30)},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := api.do(http.MethodPost, "/api/users/register", "", map[string]string{
				"userName": fmt.Sprintf("long%d", i), "userPassword": tt.password, "fullName": "Long", "role": "Student",
			})
			assert.Equal(t, http.StatusBadRequest, status)
			require.NotNil(t, env.Error)
			assert.Equal(t, dto.ErrorCodeValidationFailed, env.Error.Code)
		})
	}

	status, _ := api.do(http.MethodPost, "/api/users/register", "", map[string]string{
		"userName": "edge", "userPassword": strings.Repeat("p", 72), "fullName": "Edge", "role": "Student",
	})
	assert.Equal(t, http.StatusOK, status)
}

func TestCoursesArePublicButWritesAreInstructorOnly(t *testing.T) {
	api := newTestAPI(t)
	_, prof := api.signup("prof", "Instructor")
	_, stu := api.signup("stu", "Student")

	courseID := api.createCourse(prof, "Distributed Systems")

	status, env := api.do(http.MethodGet, "/api/courses", "", nil)
	require.Equal(t, http.StatusOK, status)
	var list []dto.CourseResponse
	api.data(env, &list)
	assert.Len(t, list, 1)

	status, _ = api.do(http.MethodGet, fmt.Sprintf("/api/courses/%d", courseID), "", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = api.do(http.MethodGet, "/api/courses/999", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = api.do(http.MethodGet, "/api/courses/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = api.do(http.MethodPost, "/api/admin/courses", stu, map[string]string{"title": "Nope"})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = api.do(http.MethodPost, "/api/admin/courses", "", map[string]string{"title": "Nope"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = api.do(http.MethodPut, fmt.Sprintf("/api/admin/courses/%d", courseID), prof, map[string]string{"title": "DS II"})
	require.Equal(t, http.StatusOK, status)
	var updated dto.CourseResponse
	api.data(env, &updated)
	assert.Equal(t, "DS II", updated.Title)

	status, _ = api.do(http.MethodDelete, fmt.Sprintf("/api/admin/courses/%d", courseID), prof, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = api.do(http.MethodDelete, fmt.Sprintf("/api/admin/courses/%d", courseID), prof, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestEnrollmentFlow(t *testing.T) {
	api := newTestAPI(t)
	_, prof := api.signup("prof", "Instructor")
	stuID, stu := api.signup("stu", "Student")
	otherID, other := api.signup("other", "Student")
	courseID := api.createCourse(prof, "Go")

	status, env := api.do(http.MethodPost, "/api/enrollments", stu, map[string]int64{"courseId": courseID})
	require.Equal(t, http.StatusOK, status)
	var e dto.EnrollmentResponse
	api.data(env, &e)
	assert.Equal(t, stuID, e.StudentID)
	assert.Equal(t, "Pending", e.Status)

	status, _ = api.do(http.MethodPost, "/api/enrollments", stu, map[string]int64{"courseId": courseID})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = api.do(http.MethodPost, "/api/enrollments", stu, map[string]int64{"courseId": courseID, "studentId": otherID})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = api.do(http.MethodPost, "/api/enrollments", other, map[string]int64{"courseId": 999})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = api.do(http.MethodPost, "/api/enrollments", prof, map[string]int64{"courseId": courseID, "studentId": otherID})
	assert.Equal(t, http.StatusOK, status)

	status, _ = api.do(http.MethodGet, fmt.Sprintf("/api/enrollments/student/%d", otherID), stu, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = api.do(http.MethodGet, fmt.Sprintf("/api/enrollments/student/%d", stuID), stu, nil)
	require.Equal(t, http.StatusOK, status)
	var mine []dto.EnrollmentResponse
	api.data(env, &mine)
	assert.Len(t, mine, 1)

	status, _ = api.do(http.MethodGet, "/api/enrollments", stu, nil)
	assert.Equal(t, http.StatusForbidden, status)

	statusURL := fmt.Sprintf("/api/enrollments/%d/status", e.EnrollmentID)
	status, _ = api.do(http.MethodPut, statusURL+"?status=Approved", stu, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = api.do(http.MethodPut, statusURL+"?status=approved", prof, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, dto.ErrorCodeInvalidStatus, env.Error.Code)

	status, env = api.do(http.MethodPut, statusURL+"?status=Approved", prof, nil)
	require.Equal(t, http.StatusOK, status)
	api.data(env, &e)
	assert.Equal(t, "Approved", e.Status)

	status, _ = api.do(http.MethodPut, "/api/enrollments/999/status?status=Approved", prof, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = api.do(http.MethodGet, "/api/admin/enrollments/pending", prof, nil)
	require.Equal(t, http.StatusOK, status)
	var pending []dto.EnrollmentResponse
	api.data(env, &pending)
	require.Len(t, pending, 1)
	assert.Equal(t, otherID, pending[0].StudentID)

	status, env = api.do(http.MethodPut, fmt.Sprintf("/api/admin/enrollments/%d/reject", pending[0].EnrollmentID), prof, nil)
	require.Equal(t, http.StatusOK, status)
	api.data(env, &e)
	assert.Equal(t, "Rejected", e.Status)
}

func TestAdminArea(t *testing.T) {
	api := newTestAPI(t)
	_, prof := api.signup("prof", "Instructor")
	stuID, stu := api.signup("stu", "Student")
	courseID := api.createCourse(prof, "Go")
	status, _ := api.do(http.MethodPost, "/api/enrollments", stu, map[string]int64{"courseId": courseID})
	require.Equal(t, http.StatusOK, status)

	for _, path := range []string{
		"/api/admin/dashboard/stats",
		"/api/admin/users",
		"/api/admin/reports/users",
		"/api/admin/reports/enrollments",
	} {
		status, _ := api.do(http.MethodGet, path, stu, nil)
		assert.Equal(t, http.StatusForbidden, status, path)
	}

	status, env := api.do(http.MethodGet, "/api/admin/dashboard/stats", prof, nil)
	require.Equal(t, http.StatusOK, status)
	var stats dto.DashboardStats
	api.data(env, &stats)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.TotalCourses)
	assert.Equal(t, int64(1), stats.PendingEnrollments)

	status, env = api.do(http.MethodPost, "/api/admin/users", prof, map[string]string{
		"userName": "ta", "userPassword": "pw", "fullName": "Teaching Assistant", "role": "Instructor",
	})
	require.Equal(t, http.StatusCreated, status)
	status, _ = api.do(http.MethodPost, "/api/admin/users", prof, map[string]string{
		"userName": "ta", "userPassword": "pw", "fullName": "Again", "role": "Instructor",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, env = api.do(http.MethodGet, fmt.Sprintf("/api/admin/users/%d", stuID), prof, nil)
	require.Equal(t, http.StatusOK, status)
	var u dto.UserResponse
	api.data(env, &u)
	assert.Equal(t, "stu", u.UserName)

	status, env = api.do(http.MethodGet, "/api/admin/reports/enrollments", prof, nil)
	require.Equal(t, http.StatusOK, status)
	var report dto.EnrollmentReport
	api.data(env, &report)
	assert.Equal(t, int64(1), report.TotalEnrollments)
	assert.Len(t, report.RecentEnrollments, 1)
}

func TestTokenFailures(t *testing.T) {
	api := newTestAPI(t)

	status, env := api.do(http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, dto.ErrorCodeUnauthorized, env.Error.Code)

	status, env = api.do(http.MethodGet, "/api/users/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, dto.ErrorCodeInvalidToken, env.Error.Code)
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	status, env := api.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	var h dto.HealthResponse
	api.data(env, &h)
	assert.Equal(t, "ok", h.Status)
}

func TestEnrollmentFeed(t *testing.T) {
	api := newTestAPI(t)
	_, profToken := api.signup("prof", "Instructor")
	aliceID, aliceToken := api.signup("alice", "Student")
	_, bobToken := api.signup("bob", "Student")
	courseID := api.createCourse(profToken, "Compilers")

	srv := httptest.NewServer(api.router)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/enrollments"

	_, resp, err := gorilla.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	dial := func(token string) *gorilla.Conn {
		conn, _, err := gorilla.DefaultDialer.Dial(wsURL+"?token="+token, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		return conn
	}
	profConn := dial(profToken)
	aliceConn := dial(aliceToken)
	bobConn := dial(bobToken)

	// registration happens on the hub goroutine
	time.Sleep(50 * time.Millisecond)

	status, _ := api.do(http.MethodPost, "/api/enrollments", aliceToken, map[string]int64{"courseId": courseID})
	require.Equal(t, http.StatusOK, status)

	for _, conn := range []*gorilla.Conn{profConn, aliceConn} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var event websocket.Event
		require.NoError(t, conn.ReadJSON(&event))
		assert.Equal(t, "enrollment.created", string(event.Type))
		assert.Equal(t, aliceID, event.Enrollment.StudentID)
		assert.Equal(t, "Pending", event.Enrollment.Status)
	}

	require.NoError(t, bobConn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = bobConn.ReadMessage()
	assert.Error(t, err, "other students must not see the event")
}

func TestEnrollmentFeedSendsOneEventPerFrame(t *testing.T) {
	api := newTestAPI(t)
	_, profToken := api.signup("prof", "Instructor")
	stuID, _ := api.signup("stu", "Student")

	const burst = 30
	courseIDs := make([]int64, burst)
	for i := range courseIDs {
		courseIDs[i] = api.createCourse(profToken, fmt.Sprintf("Course %d", i))
	}

	srv := httptest.NewServer(api.router)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/enrollments?token=" + profToken
	conn, _, err := gorilla.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	time.Sleep(50 * time.Millisecond)

	for _, courseID := range courseIDs {
		status, _ := api.do(http.MethodPost, "/api/enrollments", profToken, map[string]int64{"courseId": courseID, "studentId": stuID})
		require.Equal(t, http.StatusOK, status)
	}

	seen := make(map[int64]bool)
	for i := 0; i < burst; i++ {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		msgType, frame, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, gorilla.TextMessage, msgType)

		var event websocket.Event
		require.NoError(t, json.Unmarshal(frame, &event), "frame %d is not a single event: %q", i, frame)
		seen[event.Enrollment.CourseID] = true
	}
	assert.Len(t, seen, burst)
}
