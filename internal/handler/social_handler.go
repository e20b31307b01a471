package handler

import (
	"errors"
	"net/http"

	"livesystem/internal/model"
	"livesystem/internal/repository"
	"livesystem/internal/service"
	"livesystem/pkg/response"

	"github.com/gin-gonic/gin"
)

type markRequest struct {
	Subject    string `json:"subject" binding:"required"`
	TargetKind string `json:"target_kind" binding:"required"`
	TargetID   int64  `json:"target_id" binding:"required"`
}

// CreateMark 关注/点赞/拉黑
func (h *Handler) CreateMark(c *gin.Context) {
	var req markRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	member := currentMember(c)
	err := h.socialSvc.Mark(c.Request.Context(), member.UserID, req.Subject, req.TargetKind, req.TargetID)
	if err != nil {
		h.socialError(c, err)
		return
	}
	response.Success(c, nil)
}

// DeleteMark 取消标记
func (h *Handler) DeleteMark(c *gin.Context) {
	var req markRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	member := currentMember(c)
	err := h.socialSvc.Unmark(c.Request.Context(), member.UserID, req.Subject, req.TargetKind, req.TargetID)
	if err != nil {
		h.socialError(c, err)
		return
	}
	response.Success(c, nil)
}

// Following 我关注的
func (h *Handler) Following(c *gin.Context) {
	member := currentMember(c)
	targetKind := c.DefaultQuery("target_kind", model.MarkTargetMember)

	marks, err := h.socialSvc.Following(c.Request.Context(), member.UserID, targetKind)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, marks)
}

// Followers 关注我的
func (h *Handler) Followers(c *gin.Context) {
	member := currentMember(c)
	marks, err := h.socialSvc.Followers(c.Request.Context(), member.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	count, err := h.socialSvc.FollowerCount(c.Request.Context(), member.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{
		"list":  marks,
		"total": count,
	})
}

type contactRequest struct {
	UserID int64  `json:"user_id" binding:"required"`
	Type   string `json:"type"`
}

// AddContact 加联系人
func (h *Handler) AddContact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}
	if req.Type == "" {
		req.Type = model.ContactTypeOpen
	}

	member := currentMember(c)
	if err := h.socialSvc.AddContact(c.Request.Context(), member.UserID, req.UserID, req.Type); err != nil {
		h.socialError(c, err)
		return
	}
	response.Success(c, nil)
}

// RemoveContact 删联系人
func (h *Handler) RemoveContact(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "用户 id 不合法")
		return
	}

	member := currentMember(c)
	if err := h.socialSvc.RemoveContact(c.Request.Context(), member.UserID, userID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

// ListContacts 联系人列表
func (h *Handler) ListContacts(c *gin.Context) {
	member := currentMember(c)
	contacts, err := h.socialSvc.ListContacts(c.Request.Context(), member.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, contacts)
}

// ListFriends 好友列表（双向 OPEN）
func (h *Handler) ListFriends(c *gin.Context) {
	member := currentMember(c)
	ids, err := h.socialSvc.ListFriends(c.Request.Context(), member.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, ids)
}

func (h *Handler) socialError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrMarkDuplicate):
		response.Fail(c, http.StatusBadRequest, response.CodeDuplicate, err.Error())
	case errors.Is(err, repository.ErrMarkNotFound),
		errors.Is(err, repository.ErrMemberNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, repository.ErrMarkTargetKind),
		errors.Is(err, service.ErrSelfTarget):
		response.Fail(c, http.StatusBadRequest, response.CodeInvalidParams, err.Error())
	default:
		response.FromError(c, err)
	}
}
