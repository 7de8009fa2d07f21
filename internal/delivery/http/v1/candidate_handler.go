package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-hirestream-backend/internal/delivery/http/middleware"
	"go-hirestream-backend/internal/delivery/http/response"
	"go-hirestream-backend/internal/domain"
	"go-hirestream-backend/pkg/apperror"
)

type CandidateHandler struct {
	candidateUC domain.CandidateUsecase
}

// NewCandidateHandler registers candidate profile routes
func NewCandidateHandler(r *gin.RouterGroup, candidateUC domain.CandidateUsecase) {
	handler := &CandidateHandler{candidateUC: candidateUC}

	r.GET("/candidates/profile", handler.GetProfile)
	r.PUT("/candidates/profile", handler.UpsertProfile)
}

func (h *CandidateHandler) GetProfile(c *gin.Context) {
	profile, err := h.candidateUC.GetProfile(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile retrieved", profile)
}

func (h *CandidateHandler) UpsertProfile(c *gin.Context) {
	var profile domain.CandidateProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.Error(apperror.Validation(err.Error()))
		return
	}

	if err := h.candidateUC.UpsertProfile(c.Request.Context(), middleware.Actor(c), &profile); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile saved", profile)
}
