package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/edumanage/internal/app/auth"
	"github.com/yigit/edumanage/internal/app/controllers"
	"github.com/yigit/edumanage/internal/middleware"
	"github.com/yigit/edumanage/internal/pkg/websocket"
)

// Controllers groups every handler the router mounts
type Controllers struct {
	Auth       *controllers.AuthController
	User       *controllers.UserController
	Course     *controllers.CourseController
	Enrollment *controllers.EnrollmentController
	Admin      *controllers.AdminController
	Health     *controllers.HealthController
	Feed       *websocket.Handler
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, ctrl Controllers, authMiddleware *middleware.AuthMiddleware) {
	api := router.Group("/api")

	api.GET("/health", ctrl.Health.Health)

	// --- Public routes ---
	users := api.Group("/users")
	{
		users.POST("/register", ctrl.Auth.Register)
		users.POST("/login", ctrl.Auth.Login)
	}

	courses := api.Group("/courses")
	{
		courses.GET("", ctrl.Course.ListCourses)
		courses.GET("/:id", ctrl.Course.GetCourseByID)
	}

	// --- Authenticated routes ---
	authenticated := api.Group("")
	authenticated.Use(authMiddleware.JWTAuth(), authMiddleware.Require(auth.Authenticated))

	usersProtected := authenticated.Group("/users")
	{
		usersProtected.GET("/me", ctrl.User.GetCurrentUser)
		usersProtected.GET("/:id", ctrl.User.GetUserByID)
	}

	enrollments := authenticated.Group("/enrollments")
	{
		// ownership is checked in the handlers
		enrollments.POST("", ctrl.Enrollment.Enroll)
		enrollments.GET("/student/:studentId", ctrl.Enrollment.ListByStudent)

		enrollmentsInstructor := enrollments.Group("")
		enrollmentsInstructor.Use(authMiddleware.Require(auth.InstructorOnly))
		{
			enrollmentsInstructor.GET("", ctrl.Enrollment.ListEnrollments)
			enrollmentsInstructor.PUT("/:id/status", ctrl.Enrollment.UpdateStatus)
		}
	}

	// --- Instructor-only admin area ---
	admin := authenticated.Group("/admin")
	admin.Use(authMiddleware.Require(auth.InstructorOnly))
	{
		admin.GET("/dashboard/stats", ctrl.Admin.GetDashboardStats)

		admin.GET("/users", ctrl.User.ListUsers)
		admin.POST("/users", ctrl.Admin.CreateUser)
		admin.GET("/users/:id", ctrl.User.GetUserByID)

		admin.GET("/courses", ctrl.Course.ListCourses)
		admin.POST("/courses", ctrl.Course.CreateCourse)
		admin.GET("/courses/:id", ctrl.Course.GetCourseByID)
		admin.PUT("/courses/:id", ctrl.Course.UpdateCourse)
		admin.DELETE("/courses/:id", ctrl.Course.DeleteCourse)

		admin.GET("/enrollments", ctrl.Enrollment.ListEnrollments)
		admin.GET("/enrollments/pending", ctrl.Enrollment.ListPending)
		admin.PUT("/enrollments/:id/approve", ctrl.Enrollment.Approve)
		admin.PUT("/enrollments/:id/reject", ctrl.Enrollment.Reject)

		admin.GET("/reports/users", ctrl.Admin.GetUserReport)
		admin.GET("/reports/enrollments", ctrl.Admin.GetEnrollmentReport)
	}

	// WebSocket upgrade requests may carry the token in the query string
	api.GET("/ws/enrollments",
		authMiddleware.JWTAuthWithQueryToken(),
		authMiddleware.Require(auth.Authenticated),
		ctrl.Feed.HandleConnection,
	)

	SetupSwagger(router)
}
