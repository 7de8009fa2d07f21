package v1

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-hirestream-backend/internal/delivery/http/middleware"
	"go-hirestream-backend/internal/delivery/http/response"
	"go-hirestream-backend/internal/domain"
	"go-hirestream-backend/pkg/apperror"
)

// maxRecordingBytes caps a single uploaded answer at 64 MiB.
const maxRecordingBytes = 64 << 20

type InterviewHandler struct {
	interviewUC domain.InterviewUsecase
}

// NewInterviewHandler registers interview session routes. The AI-backed
// question generation endpoint gets its own rate limit.
func NewInterviewHandler(r *gin.RouterGroup, interviewUC domain.InterviewUsecase, aiLimit int) {
	handler := &InterviewHandler{interviewUC: interviewUC}

	interviews := r.Group("/interviews")
	{
		interviews.POST("/:applicationId/start", handler.StartSession)
		interviews.POST("/:applicationId/responses",
			middleware.RateLimitMiddleware(middleware.UploadRateLimitConfig()),
			handler.CaptureResponse)
		interviews.POST("/:applicationId/complete", handler.CompleteSession)
		interviews.DELETE("/:applicationId", handler.AbandonSession)
	}

	r.POST("/generate-questions",
		middleware.RateLimitMiddleware(middleware.AIRateLimitConfig(aiLimit)),
		handler.GenerateQuestions)
}

func (h *InterviewHandler) StartSession(c *gin.Context) {
	session, err := h.interviewUC.StartSession(c.Request.Context(), middleware.Actor(c), c.Param("applicationId"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Interview session started", session)
}

// CaptureResponse accepts a multipart upload: the recorded answer under
// "recording" plus the "question_id" field.
func (h *InterviewHandler) CaptureResponse(c *gin.Context) {
	questionID := c.PostForm("question_id")
	if questionID == "" {
		c.Error(apperror.BadRequest("question_id is required"))
		return
	}

	file, _, err := c.Request.FormFile("recording")
	if err != nil {
		c.Error(apperror.BadRequest("recording file is required"))
		return
	}
	defer file.Close()

	artifact, err := io.ReadAll(io.LimitReader(file, maxRecordingBytes+1))
	if err != nil {
		c.Error(apperror.BadRequest("failed to read recording"))
		return
	}
	if len(artifact) > maxRecordingBytes {
		c.Error(apperror.BadRequest("recording exceeds the size limit"))
		return
	}

	resp, err := h.interviewUC.CaptureResponse(c.Request.Context(), middleware.Actor(c),
		c.Param("applicationId"), questionID, artifact)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Response captured", resp)
}

func (h *InterviewHandler) CompleteSession(c *gin.Context) {
	app, err := h.interviewUC.CompleteSession(c.Request.Context(), middleware.Actor(c), c.Param("applicationId"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Interview completed", app)
}

func (h *InterviewHandler) AbandonSession(c *gin.Context) {
	h.interviewUC.AbandonSession(c.Param("applicationId"))
	response.Success(c, http.StatusOK, "Interview session abandoned", nil)
}

// GenerateQuestionsRequest identifies the job and application to generate for
type GenerateQuestionsRequest struct {
	JobID         string `json:"job_id" binding:"required"`
	ApplicationID string `json:"application_id" binding:"required"`
}

func (h *InterviewHandler) GenerateQuestions(c *gin.Context) {
	var req GenerateQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation(err.Error()))
		return
	}

	questions, err := h.interviewUC.GenerateQuestions(c.Request.Context(), req.JobID, req.ApplicationID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Questions ready", gin.H{"questions": questions})
}
