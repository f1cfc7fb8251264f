package v1

import (
	"net/http"
	"time"

	"gradhire-backend/internal/delivery/http/response"
	"gradhire-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobUC domain.JobUsecase
}

func NewJobHandler(protected *gin.RouterGroup, jobUC domain.JobUsecase) {
	handler := &JobHandler{jobUC: jobUC}

	jobs := protected.Group("/jobs")
	{
		jobs.POST("", handler.Create)
		jobs.GET("/:id", handler.GetDetails)
		jobs.PUT("/:id", handler.Update)
		jobs.POST("/:id/publish", handler.Publish)
		jobs.DELETE("/:id", handler.Delete)
	}

	// Employer-specific job routes (only shows employer's own jobs)
	employers := protected.Group("/employers")
	{
		employers.GET("/jobs", handler.ListByEmployer)
	}
}

// JobRequest is shared by create and update. Status "published" on create
// publishes immediately and goes through the verification check.
type JobRequest struct {
	Title               string     `json:"title" binding:"required,max=200,no_emoji"`
	Description         string     `json:"description" binding:"required"`
	Location            string     `json:"location" binding:"required,max=200"`
	EmploymentType      *string    `json:"employment_type" binding:"omitempty,max=50"`
	SalaryMin           *float64   `json:"salary_min" binding:"omitempty,gte=0"`
	SalaryMax           *float64   `json:"salary_max" binding:"omitempty,gte=0"`
	SkillsRequired      []string   `json:"skills_required" binding:"skill_list"`
	ApplicationDeadline *time.Time `json:"application_deadline"`
	Status              string     `json:"status" binding:"job_status"`
}

func (r JobRequest) toInput() domain.JobInput {
	return domain.JobInput{
		Title:               r.Title,
		Description:         r.Description,
		Location:            r.Location,
		EmploymentType:      r.EmploymentType,
		SalaryMin:           r.SalaryMin,
		SalaryMax:           r.SalaryMax,
		SkillsRequired:      r.SkillsRequired,
		ApplicationDeadline: r.ApplicationDeadline,
		Status:              domain.JobStatus(r.Status),
	}
}

// CreateJob godoc
// @Summary      Create a new job
// @Description  Create a draft or published job posting (Employer only). Publishing requires a verified employer.
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        job  body      JobRequest  true  "Job JSON"
// @Success      201  {object}  response.Response{data=domain.Job}
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /jobs [post]
// @Security     BearerAuth
func (h *JobHandler) Create(c *gin.Context) {
	var req JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	job, err := h.jobUC.CreateJob(c.Request.Context(), actorFrom(c), req.toInput())
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Job created", job)
}

// GetJob godoc
// @Summary      Get job details
// @Tags         jobs
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  response.Response{data=domain.Job}
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [get]
// @Security     BearerAuth
func (h *JobHandler) GetDetails(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	job, err := h.jobUC.GetJob(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Job details", job)
}

// UpdateJob godoc
// @Summary      Update a job
// @Description  Replace the editable fields of an owned job. Moving a draft to published runs the verification check.
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id   path      int         true  "Job ID"
// @Param        job  body      JobRequest  true  "Job JSON"
// @Success      200  {object}  response.Response{data=domain.Job}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [put]
// @Security     BearerAuth
func (h *JobHandler) Update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	job, err := h.jobUC.UpdateJob(c.Request.Context(), actorFrom(c), id, req.toInput())
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Job updated", job)
}

// PublishJob godoc
// @Summary      Publish a job
// @Description  Move an owned draft to published and start candidate matching. No-op when already published.
// @Tags         jobs
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  response.Response{data=domain.Job}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id}/publish [post]
// @Security     BearerAuth
func (h *JobHandler) Publish(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	job, err := h.jobUC.PublishJob(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Job published", job)
}

// DeleteJob godoc
// @Summary      Delete a job
// @Tags         jobs
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [delete]
// @Security     BearerAuth
func (h *JobHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.jobUC.DeleteJob(c.Request.Context(), actorFrom(c), id); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Job deleted", nil)
}

// ListEmployerJobs godoc
// @Summary      List my jobs
// @Description  Jobs owned by the authenticated employer, drafts included
// @Tags         jobs
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Job}
// @Failure      403  {object}  response.Response
// @Router       /employers/jobs [get]
// @Security     BearerAuth
func (h *JobHandler) ListByEmployer(c *gin.Context) {
	jobs, err := h.jobUC.ListJobsByEmployer(c.Request.Context(), actorFrom(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Employer job list", jobs)
}
