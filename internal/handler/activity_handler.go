package handler

import (
	"errors"
	"net/http"

	"livesystem/internal/repository"
	"livesystem/internal/service"
	"livesystem/pkg/response"

	"github.com/gin-gonic/gin"
)

// ListActivities 进行中的活动
func (h *Handler) ListActivities(c *gin.Context) {
	activities, err := h.activitySvc.ListRunning(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, activities)
}

// ParticipateActivity 报名参与
func (h *Handler) ParticipateActivity(c *gin.Context) {
	activityID, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "活动 id 不合法")
		return
	}

	member := currentMember(c)
	participation, err := h.activitySvc.Participate(c.Request.Context(), activityID, member.UserID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrActivityNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, repository.ErrParticipationConflict),
			errors.Is(err, service.ErrActivityNotRunning):
			response.Fail(c, http.StatusBadRequest, response.CodeDuplicate, err.Error())
		default:
			response.FromError(c, err)
		}
		return
	}
	response.Success(c, participation)
}

// RankTop 榜单
func (h *Handler) RankTop(c *gin.Context) {
	duration := c.DefaultQuery("duration", "DAILY")
	metric := c.DefaultQuery("metric", "received_diamond")

	records, err := h.rankSvc.Top(c.Request.Context(), duration, metric, 50)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, records)
}

// MyRank 自己的榜单行
func (h *Handler) MyRank(c *gin.Context) {
	member := currentMember(c)
	duration := c.DefaultQuery("duration", "DAILY")

	record, err := h.rankSvc.UserRank(c.Request.Context(), member.UserID, duration)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, record)
}
