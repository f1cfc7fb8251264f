package v1

import (
	"net/http"

	"gradhire-backend/internal/delivery/http/middleware"
	"gradhire-backend/internal/delivery/http/response"
	"gradhire-backend/internal/domain"
	"gradhire-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type VerificationHandler struct {
	verificationUC domain.VerificationUsecase
}

func NewVerificationHandler(r *gin.RouterGroup, uc domain.VerificationUsecase) {
	handler := &VerificationHandler{
		verificationUC: uc,
	}

	// Employer routes
	r.GET("/employers/verification", handler.GetStatus)

	// Admin routes
	admin := r.Group("/admin", middleware.RequireRole(domain.RoleAdmin))
	{
		admin.PUT("/employers/:id/verification/:slot", handler.ReviewDocument)
	}
}

type ReviewDocumentRequest struct {
	Status string `json:"status" binding:"required,oneof=not_submitted submitted pending approved rejected"`
}

// GetVerificationStatus godoc
// @Summary      My verification status
// @Description  Per-document review state and the derived overall status
// @Tags         verification
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.EmployerVerification}
// @Failure      403  {object}  response.Response
// @Router       /employers/verification [get]
// @Security     BearerAuth
func (h *VerificationHandler) GetStatus(c *gin.Context) {
	actor := actorFrom(c)
	if !actor.IsEmployer() {
		c.Error(apperror.Forbidden("Only employers have a verification status"))
		return
	}

	v, err := h.verificationUC.GetStatus(c.Request.Context(), actor.ID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Verification status", v)
}

// ReviewDocument godoc
// @Summary      Review a verification document
// @Description  Set one document's status; the overall status is recomputed in the same write (Admin only)
// @Tags         verification
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "Employer user ID"
// @Param        slot  path      string                 true  "registration_proof | government_id | address_proof"
// @Param        body  body      ReviewDocumentRequest  true  "Document status"
// @Success      200   {object}  response.Response{data=domain.EmployerVerification}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Router       /admin/employers/{id}/verification/{slot} [put]
// @Security     BearerAuth
func (h *VerificationHandler) ReviewDocument(c *gin.Context) {
	var req ReviewDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	v, err := h.verificationUC.RecordDocumentReview(c.Request.Context(), c.Param("id"),
		domain.DocumentSlot(c.Param("slot")), domain.DocumentStatus(req.Status))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Document reviewed", v)
}
