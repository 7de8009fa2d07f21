package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-hirestream-backend/internal/delivery/http/middleware"
	"go-hirestream-backend/internal/delivery/http/response"
	"go-hirestream-backend/internal/domain"
	"go-hirestream-backend/pkg/apperror"
)

type JobHandler struct {
	jobUC domain.JobUsecase
}

// NewJobHandler registers job routes
func NewJobHandler(public, protected *gin.RouterGroup, jobUC domain.JobUsecase) {
	handler := &JobHandler{jobUC: jobUC}

	public.GET("/jobs", handler.ListJobs)
	public.GET("/jobs/:jobId", handler.GetJob)

	protected.POST("/jobs", handler.CreateJob)
	protected.PUT("/jobs/:jobId", handler.UpdateJob)
	protected.DELETE("/jobs/:jobId", handler.DeleteJob)
	protected.GET("/employers/jobs", handler.ListMyJobs)
}

// JobRequest is the payload for creating or updating a job posting
type JobRequest struct {
	Title        string `json:"title" binding:"required"`
	Company      string `json:"company" binding:"required"`
	Location     string `json:"location" binding:"required"`
	Type         string `json:"type" binding:"required"`
	Description  string `json:"description" binding:"required"`
	Requirements string `json:"requirements"`
	SalaryRange  string `json:"salary_range"`
}

func (r *JobRequest) toDomain() *domain.Job {
	return &domain.Job{
		Title:        r.Title,
		Company:      r.Company,
		Location:     r.Location,
		Type:         r.Type,
		Description:  r.Description,
		Requirements: r.Requirements,
		SalaryRange:  r.SalaryRange,
	}
}

func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs, err := h.jobUC.ListJobs(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Jobs retrieved", jobs)
}

func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.jobUC.GetJobDetails(c.Request.Context(), c.Param("jobId"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job retrieved", job)
}

func (h *JobHandler) CreateJob(c *gin.Context) {
	var req JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation(err.Error()))
		return
	}

	job := req.toDomain()
	if err := h.jobUC.CreateJob(c.Request.Context(), middleware.Actor(c), job); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Job created", job)
}

func (h *JobHandler) UpdateJob(c *gin.Context) {
	var req JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation(err.Error()))
		return
	}

	job := req.toDomain()
	job.ID = c.Param("jobId")
	if err := h.jobUC.UpdateJob(c.Request.Context(), middleware.Actor(c), job); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job updated", job)
}

func (h *JobHandler) DeleteJob(c *gin.Context) {
	if err := h.jobUC.DeleteJob(c.Request.Context(), middleware.Actor(c), c.Param("jobId")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job deleted", nil)
}

func (h *JobHandler) ListMyJobs(c *gin.Context) {
	jobs, err := h.jobUC.ListJobsByOwner(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Jobs retrieved", jobs)
}
