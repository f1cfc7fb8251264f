package v1

import (
	"net/http"
	"strconv"
	"time"

	"gradhire-backend/internal/delivery/http/response"
	"gradhire-backend/internal/domain"
	"gradhire-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messagingUC domain.MessagingUsecase
}

// NewMessageHandler registers messaging routes. sendLimit guards the write
// routes and may be nil.
func NewMessageHandler(r *gin.RouterGroup, messagingUC domain.MessagingUsecase, sendLimit gin.HandlerFunc) {
	handler := &MessageHandler{messagingUC: messagingUC}

	writes := []gin.HandlerFunc{}
	if sendLimit != nil {
		writes = append(writes, sendLimit)
	}

	messages := r.Group("/messages")
	{
		messages.GET("/eligibility/:userId", handler.CheckEligibility)
		messages.GET("/conversations/:userId", handler.ListConversation)
		messages.POST("", append(writes, handler.Send)...)
	}
	r.POST("/interviews", append(writes, handler.ScheduleInterview)...)
}

type SendMessageRequest struct {
	RecipientID string `json:"recipient_id" binding:"required"`
	JobID       *int64 `json:"job_id" binding:"omitempty,gt=0"`
	Body        string `json:"body" binding:"required,max=5000"`
}

type ScheduleInterviewRequest struct {
	RecipientID     string    `json:"recipient_id" binding:"required"`
	JobID           *int64    `json:"job_id" binding:"omitempty,gt=0"`
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	Location        *string   `json:"location" binding:"omitempty,max=300"`
	MeetingURL      *string   `json:"meeting_url" binding:"omitempty,url"`
	Notes           *string   `json:"notes" binding:"omitempty,max=2000"`
}

// CheckEligibility godoc
// @Summary      Check messaging eligibility
// @Description  Whether the caller may message userId. Requires a shortlisted or accepted application between them.
// @Tags         messages
// @Produce      json
// @Param        userId  path      string  true   "Counterpart user ID"
// @Param        job_id  query     int     false  "Narrow to one job"
// @Success      200     {object}  response.Response{data=domain.Eligibility}
// @Router       /messages/eligibility/{userId} [get]
// @Security     BearerAuth
func (h *MessageHandler) CheckEligibility(c *gin.Context) {
	var jobID *int64
	if raw := c.Query("job_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.Error(apperror.BadRequest("Invalid job_id"))
			return
		}
		jobID = &id
	}

	actor := actorFrom(c)
	elig, err := h.messagingUC.CheckEligibility(c.Request.Context(), actor.ID, c.Param("userId"), jobID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Eligibility checked", elig)
}

// SendMessage godoc
// @Summary      Send a message
// @Description  Every send re-checks eligibility against the current application status
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        body  body      SendMessageRequest  true  "Message"
// @Success      201   {object}  response.Response{data=domain.Message}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Router       /messages [post]
// @Security     BearerAuth
func (h *MessageHandler) Send(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	msg, err := h.messagingUC.SendMessage(c.Request.Context(), actorFrom(c), domain.SendMessageInput{
		RecipientID: req.RecipientID,
		JobID:       req.JobID,
		Body:        req.Body,
	})
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Message sent", msg)
}

// ScheduleInterview godoc
// @Summary      Schedule an interview
// @Description  Employer sends an interview invitation through the conversation
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        body  body      ScheduleInterviewRequest  true  "Interview"
// @Success      201   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Router       /interviews [post]
// @Security     BearerAuth
func (h *MessageHandler) ScheduleInterview(c *gin.Context) {
	var req ScheduleInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	msg, interview, err := h.messagingUC.ScheduleInterview(c.Request.Context(), actorFrom(c), domain.ScheduleInterviewInput{
		RecipientID:     req.RecipientID,
		JobID:           req.JobID,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		Location:        req.Location,
		MeetingURL:      req.MeetingURL,
		Notes:           req.Notes,
	})
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Interview scheduled", gin.H{
		"message":   msg,
		"interview": interview,
	})
}

// ListConversation godoc
// @Summary      Conversation history
// @Tags         messages
// @Produce      json
// @Param        userId  path      string  true  "Counterpart user ID"
// @Success      200     {object}  response.Response{data=[]domain.Message}
// @Router       /messages/conversations/{userId} [get]
// @Security     BearerAuth
func (h *MessageHandler) ListConversation(c *gin.Context) {
	messages, err := h.messagingUC.ListConversation(c.Request.Context(), actorFrom(c), c.Param("userId"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Conversation retrieved", messages)
}
