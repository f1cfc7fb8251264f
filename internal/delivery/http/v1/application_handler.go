package v1

import (
	"net/http"

	"gradhire-backend/internal/delivery/http/response"
	"gradhire-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	applicationUC domain.ApplicationUsecase
}

// NewApplicationHandler registers application routes
func NewApplicationHandler(r *gin.RouterGroup, applicationUC domain.ApplicationUsecase) {
	handler := &ApplicationHandler{applicationUC: applicationUC}

	r.POST("/jobs/:id/apply", handler.ApplyToJob)
	r.GET("/applications/:id", handler.GetApplicationDetail)
	r.PATCH("/applications/:id/status", handler.UpdateApplicationStatus)

	// Jobseeker routes
	r.GET("/jobseekers/applications", handler.GetMyApplications)

	// Employer routes
	r.GET("/employers/jobs/:id/applications", handler.ListJobApplications)
}

// ApplyToJobRequest is the request payload for applying to a job. The resume
// comes from the jobseeker profile.
type ApplyToJobRequest struct {
	CoverLetter string `json:"cover_letter" binding:"max=5000"`
}

// UpdateStatusRequest is the request payload for a review
type UpdateStatusRequest struct {
	Status string  `json:"status" binding:"required,application_status"`
	Notes  *string `json:"notes" binding:"omitempty,max=2000"`
}

// ApplyToJob godoc
// @Summary      Apply to a job
// @Description  Submit an application for a published job (Jobseeker only, resume required)
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Job ID"
// @Param        body  body      ApplyToJobRequest  true  "Application data"
// @Success      201   {object}  response.Response{data=domain.Application}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /jobs/{id}/apply [post]
// @Security     BearerAuth
func (h *ApplicationHandler) ApplyToJob(c *gin.Context) {
	jobID, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req ApplyToJobRequest
	// An empty body is a valid application without a cover letter.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(bindError(err))
			return
		}
	}

	app, err := h.applicationUC.ApplyForJob(c.Request.Context(), actorFrom(c), jobID, req.CoverLetter)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Application submitted", app)
}

// GetMyApplications godoc
// @Summary      List my applications
// @Tags         applications
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Application}
// @Failure      403  {object}  response.Response
// @Router       /jobseekers/applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) GetMyApplications(c *gin.Context) {
	apps, err := h.applicationUC.GetMyApplications(c.Request.Context(), actorFrom(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Applications retrieved", apps)
}

// ListJobApplications godoc
// @Summary      List applications for a job
// @Tags         applications
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  response.Response{data=[]domain.Application}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /employers/jobs/{id}/applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) ListJobApplications(c *gin.Context) {
	jobID, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	apps, err := h.applicationUC.ListJobApplications(c.Request.Context(), actorFrom(c), jobID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Applications retrieved", apps)
}

// GetApplicationDetail godoc
// @Summary      Get an application
// @Description  Visible to the applicant and the job owner
// @Tags         applications
// @Produce      json
// @Param        id   path      int  true  "Application ID"
// @Success      200  {object}  response.Response{data=domain.Application}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /applications/{id} [get]
// @Security     BearerAuth
func (h *ApplicationHandler) GetApplicationDetail(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	app, err := h.applicationUC.GetApplication(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Application detail", app)
}

// UpdateApplicationStatus godoc
// @Summary      Review an application
// @Description  Move an application along pending → shortlisted → accepted/rejected (job owner only)
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id    path      int                  true  "Application ID"
// @Param        body  body      UpdateStatusRequest  true  "New status"
// @Success      200   {object}  response.Response{data=domain.Application}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /applications/{id}/status [patch]
// @Security     BearerAuth
func (h *ApplicationHandler) UpdateApplicationStatus(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	app, err := h.applicationUC.UpdateApplicationStatus(c.Request.Context(), actorFrom(c), id, domain.ApplicationStatus(req.Status), req.Notes)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Application status updated", app)
}
