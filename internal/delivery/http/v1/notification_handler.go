package v1

import (
	"net/http"

	"gradhire-backend/internal/delivery/http/response"
	"gradhire-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationUC domain.NotificationUsecase
}

func NewNotificationHandler(r *gin.RouterGroup, notificationUC domain.NotificationUsecase) {
	handler := &NotificationHandler{notificationUC: notificationUC}

	notifications := r.Group("/notifications")
	{
		notifications.GET("", handler.List)
		notifications.GET("/unread-count", handler.UnreadCount)
		notifications.PATCH("/read-all", handler.MarkAllRead)
		notifications.PATCH("/:id/read", handler.MarkRead)
		notifications.DELETE("/:id", handler.Delete)
		notifications.DELETE("", handler.ClearAll)
	}
}

// ListNotifications godoc
// @Summary      List my notifications
// @Description  Newest first, at most 100
// @Tags         notifications
// @Produce      json
// @Param        include_archived  query     bool  false  "Include cleared notifications"
// @Success      200               {object}  response.Response{data=[]domain.Notification}
// @Router       /notifications [get]
// @Security     BearerAuth
func (h *NotificationHandler) List(c *gin.Context) {
	includeArchived := c.Query("include_archived") == "true"

	items, err := h.notificationUC.List(c.Request.Context(), actorFrom(c), includeArchived)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Notifications retrieved", items)
}

// UnreadCount godoc
// @Summary      Unread notification count
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /notifications/unread-count [get]
// @Security     BearerAuth
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notificationUC.UnreadCount(c.Request.Context(), actorFrom(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Unread count", gin.H{"count": count})
}

// MarkRead godoc
// @Summary      Mark one notification read
// @Tags         notifications
// @Produce      json
// @Param        id   path      int  true  "Notification ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /notifications/{id}/read [patch]
// @Security     BearerAuth
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.notificationUC.MarkRead(c.Request.Context(), actorFrom(c), id); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Notification marked as read", nil)
}

// MarkAllRead godoc
// @Summary      Mark all notifications read
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /notifications/read-all [patch]
// @Security     BearerAuth
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	updated, err := h.notificationUC.MarkAllRead(c.Request.Context(), actorFrom(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "All notifications marked as read", gin.H{"updated": updated})
}

// DeleteNotification godoc
// @Summary      Delete one notification
// @Tags         notifications
// @Produce      json
// @Param        id   path      int  true  "Notification ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /notifications/{id} [delete]
// @Security     BearerAuth
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.notificationUC.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Notification deleted", nil)
}

// ClearAll godoc
// @Summary      Clear all notifications
// @Description  Archives every notification; they stay reachable with include_archived
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /notifications [delete]
// @Security     BearerAuth
func (h *NotificationHandler) ClearAll(c *gin.Context) {
	archived, err := h.notificationUC.ClearAll(c.Request.Context(), actorFrom(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Notifications cleared", gin.H{"archived": archived})
}
