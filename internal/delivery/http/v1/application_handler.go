package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-hirestream-backend/internal/delivery/http/middleware"
	"go-hirestream-backend/internal/delivery/http/response"
	"go-hirestream-backend/internal/domain"
	"go-hirestream-backend/pkg/apperror"
)

type ApplicationHandler struct {
	applicationUC domain.ApplicationUsecase
}

// NewApplicationHandler registers application routes
func NewApplicationHandler(r *gin.RouterGroup, applicationUC domain.ApplicationUsecase) {
	handler := &ApplicationHandler{applicationUC: applicationUC}

	// Candidate routes
	candidates := r.Group("/candidates")
	{
		candidates.POST("/jobs/:jobId/apply", handler.ApplyToJob)
		candidates.GET("/applications", handler.GetMyApplications)
	}

	// Employer routes
	employers := r.Group("/employers")
	{
		employers.GET("/jobs/:jobId/applications", handler.ListJobApplications)
	}

	r.GET("/applications/:id", handler.GetApplicationDetail)
	r.PATCH("/applications/:id/status", handler.UpdateApplicationStatus)
	r.POST("/applications/:id/interview", handler.ScheduleInterview)
}

// ApplyToJobRequest is the request payload for applying to a job
type ApplyToJobRequest struct {
	CoverLetter string `json:"cover_letter"`
	ResumeURL   string `json:"resume_url"`
}

func (h *ApplicationHandler) ApplyToJob(c *gin.Context) {
	var req ApplyToJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation(err.Error()))
		return
	}

	app, err := h.applicationUC.ApplyToJob(c.Request.Context(), middleware.Actor(c),
		c.Param("jobId"), req.CoverLetter, req.ResumeURL)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Application submitted successfully", app)
}

func (h *ApplicationHandler) GetMyApplications(c *gin.Context) {
	apps, err := h.applicationUC.GetMyApplications(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applications retrieved", apps)
}

func (h *ApplicationHandler) ListJobApplications(c *gin.Context) {
	apps, err := h.applicationUC.ListByJobID(c.Request.Context(), middleware.Actor(c), c.Param("jobId"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applications retrieved", apps)
}

func (h *ApplicationHandler) GetApplicationDetail(c *gin.Context) {
	app, err := h.applicationUC.GetApplicationDetail(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application retrieved", app)
}

// UpdateStatusRequest carries the target lifecycle status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *ApplicationHandler) UpdateApplicationStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation(err.Error()))
		return
	}

	app, err := h.applicationUC.Transition(c.Request.Context(), middleware.Actor(c), c.Param("id"), req.Status)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application status updated", app)
}

// ScheduleInterviewRequest carries the interview booking details
type ScheduleInterviewRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Duration    int       `json:"duration" binding:"required,gt=0"`
	Type        string    `json:"type" binding:"required"`
	Location    *string   `json:"location"`
	Notes       *string   `json:"notes"`
}

func (h *ApplicationHandler) ScheduleInterview(c *gin.Context) {
	var req ScheduleInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation(err.Error()))
		return
	}

	app, err := h.applicationUC.ScheduleInterview(c.Request.Context(), middleware.Actor(c), c.Param("id"), domain.InterviewDetails{
		ScheduledAt: req.ScheduledAt,
		Duration:    req.Duration,
		Type:        req.Type,
		Location:    req.Location,
		Notes:       req.Notes,
	})
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Interview scheduled", app)
}
