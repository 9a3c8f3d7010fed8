package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/edumanage/internal/app/models/dto"
	"github.com/yigit/edumanage/internal/app/services"
	"github.com/yigit/edumanage/internal/middleware"
)

// AdminController serves the instructor-only dashboard, reports and user creation
type AdminController struct {
	adminService services.AdminService
	authService  services.AuthService
	logger       zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(adminService services.AdminService, authService services.AuthService, logger zerolog.Logger) *AdminController {
	return &AdminController{
		adminService: adminService,
		authService:  authService,
		logger:       logger,
	}
}

// GetDashboardStats returns counts across users, courses and enrollments
// @Summary Dashboard statistics
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.DashboardStats}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Instructor role required"
// @Router /admin/dashboard/stats [get]
func (c *AdminController) GetDashboardStats(ctx *gin.Context) {
	stats, err := c.adminService.GetDashboardStats(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stats))
}

// GetUserReport returns user totals and the latest registrations
// @Summary User report
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UserReport}
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Instructor role required"
// @Router /admin/reports/users [get]
func (c *AdminController) GetUserReport(ctx *gin.Context) {
	report, err := c.adminService.GetUserReport(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(report))
}

// GetEnrollmentReport returns enrollment totals and the latest enrollments
// @Summary Enrollment report
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.EnrollmentReport}
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Instructor role required"
// @Router /admin/reports/enrollments [get]
func (c *AdminController) GetEnrollmentReport(ctx *gin.Context) {
	report, err := c.adminService.GetEnrollmentReport(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(report))
}

// CreateUser lets an instructor create an account directly
// @Summary Create a user
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RegisterRequest true "User information"
// @Success 201 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or role"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Instructor role required"
// @Failure 409 {object} dto.ErrorResponse "Username already exists"
// @Router /admin/users [post]
func (c *AdminController) CreateUser(ctx *gin.Context) {
	var req dto.RegisterRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	user, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	principal := middleware.CurrentPrincipal(ctx)
	c.logger.Info().
		Int64("userID", user.ID).
		Int64("createdBy", principal.UserID).
		Msg("User created by instructor")

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewUserResponse(user)))
}
