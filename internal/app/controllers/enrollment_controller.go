package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/edumanage/internal/app/auth"
	"github.com/yigit/edumanage/internal/app/models"
	"github.com/yigit/edumanage/internal/app/models/dto"
	"github.com/yigit/edumanage/internal/app/services"
	"github.com/yigit/edumanage/internal/middleware"
)

// EnrollmentController exposes the enrollment ledger
type EnrollmentController struct {
	enrollmentService services.EnrollmentService
}

// NewEnrollmentController creates a new EnrollmentController
func NewEnrollmentController(enrollmentService services.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{enrollmentService: enrollmentService}
}

func (c *EnrollmentController) writeList(ctx *gin.Context, list []*models.Enrollment, err error) {
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewEnrollmentResponses(list)))
}

func (c *EnrollmentController) writeOne(ctx *gin.Context, e *models.Enrollment, err error) {
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewEnrollmentResponse(e)))
}

// Enroll creates a Pending enrollment
// @Summary Enroll in a course
// @Description Students enroll themselves; studentId may be omitted. Instructors may enroll any user.
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.EnrollmentRequest true "Enrollment request"
// @Success 200 {object} dto.APIResponse{data=dto.EnrollmentResponse} "Enrollment created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Students may only enroll themselves"
// @Failure 404 {object} dto.ErrorResponse "Course or student not found"
// @Failure 409 {object} dto.ErrorResponse "Already enrolled"
// @Router /enrollments [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	var req dto.EnrollmentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	studentID, err := auth.ResolveEnrollee(middleware.CurrentPrincipal(ctx), req.StudentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	e, err := c.enrollmentService.Enroll(ctx.Request.Context(), studentID, req.CourseID)
	c.writeOne(ctx, e, err)
}

// ListEnrollments returns every enrollment
// @Summary List all enrollments
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.EnrollmentResponse}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Instructor role required"
// @Router /enrollments [get]
func (c *EnrollmentController) ListEnrollments(ctx *gin.Context) {
	list, err := c.enrollmentService.ListAll(ctx.Request.Context())
	c.writeList(ctx, list, err)
}

// ListByStudent returns one student's enrollments
// @Summary List a student's enrollments
// @Description Students may only read their own enrollments
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student user ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=[]dto.EnrollmentResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid student ID format"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Not your enrollments"
// @Router /enrollments/student/{studentId} [get]
func (c *EnrollmentController) ListByStudent(ctx *gin.Context) {
	studentID, ok := parseIDParam(ctx, "studentId", "Student")
	if !ok {
		return
	}

	if err := auth.CanAccessStudentRecords(middleware.CurrentPrincipal(ctx), studentID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	list, err := c.enrollmentService.ListByStudent(ctx.Request.Context(), studentID)
	c.writeList(ctx, list, err)
}

// UpdateStatus sets the status given in the query string
// @Summary Change enrollment status
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID" Format(int64) minimum(1)
// @Param status query string true "New status" Enums(Pending, Approved, Rejected)
// @Success 200 {object} dto.APIResponse{data=dto.EnrollmentResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Instructor role required"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Router /enrollments/{id}/status [put]
func (c *EnrollmentController) UpdateStatus(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Enrollment")
	if !ok {
		return
	}

	e, err := c.enrollmentService.UpdateStatus(ctx.Request.Context(), id, ctx.Query("status"))
	c.writeOne(ctx, e, err)
}

// ListPending returns enrollments awaiting a decision
// @Summary List pending enrollments
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.EnrollmentResponse}
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Instructor role required"
// @Router /admin/enrollments/pending [get]
func (c *EnrollmentController) ListPending(ctx *gin.Context) {
	list, err := c.enrollmentService.ListByStatus(ctx.Request.Context(), models.StatusPending)
	c.writeList(ctx, list, err)
}

// Approve marks an enrollment Approved
// @Summary Approve an enrollment
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.EnrollmentResponse}
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Instructor role required"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Router /admin/enrollments/{id}/approve [put]
func (c *EnrollmentController) Approve(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Enrollment")
	if !ok {
		return
	}

	e, err := c.enrollmentService.Approve(ctx.Request.Context(), id)
	c.writeOne(ctx, e, err)
}

// Reject marks an enrollment Rejected
// @Summary Reject an enrollment
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.EnrollmentResponse}
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Instructor role required"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Router /admin/enrollments/{id}/reject [put]
func (c *EnrollmentController) Reject(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Enrollment")
	if !ok {
		return
	}

	e, err := c.enrollmentService.Reject(ctx.Request.Context(), id)
	c.writeOne(ctx, e, err)
}
