package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-hirestream-backend/internal/delivery/http/middleware"
	"go-hirestream-backend/internal/delivery/http/response"
	"go-hirestream-backend/internal/domain"
	"go-hirestream-backend/pkg/apperror"
)

type EvaluationHandler struct {
	evaluationUC domain.EvaluationUsecase
}

// NewEvaluationHandler registers evaluation routes
func NewEvaluationHandler(r *gin.RouterGroup, evaluationUC domain.EvaluationUsecase, aiLimit int) {
	handler := &EvaluationHandler{evaluationUC: evaluationUC}

	r.GET("/applications/:id/evaluation", handler.GetEvaluation)
	r.POST("/evaluate-interview",
		middleware.RateLimitMiddleware(middleware.AIRateLimitConfig(aiLimit)),
		handler.EvaluateInterview)
}

func (h *EvaluationHandler) GetEvaluation(c *gin.Context) {
	evaluation, err := h.evaluationUC.GetByApplicationID(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Evaluation retrieved", evaluation)
}

// EvaluateInterviewRequest is a direct transcript evaluation submission
type EvaluateInterviewRequest struct {
	ApplicationID string   `json:"application_id" binding:"required"`
	Questions     []string `json:"questions" binding:"required,min=1"`
	Answers       []string `json:"answers" binding:"required,min=1"`
}

func (h *EvaluationHandler) EvaluateInterview(c *gin.Context) {
	var req EvaluateInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation(err.Error()))
		return
	}

	evaluation, err := h.evaluationUC.EvaluateSubmission(c.Request.Context(), &domain.EvaluationRequest{
		ApplicationID: req.ApplicationID,
		Questions:     req.Questions,
		Answers:       req.Answers,
	})
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Interview evaluated", evaluation)
}
