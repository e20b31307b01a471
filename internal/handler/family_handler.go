package handler

import (
	"errors"
	"net/http"
	"time"

	"livesystem/internal/model"
	"livesystem/internal/repository"
	"livesystem/internal/service"
	"livesystem/pkg/response"

	"github.com/gin-gonic/gin"
)

type createFamilyRequest struct {
	Name   string `json:"name" binding:"required"`
	Notice string `json:"notice"`
}

// CreateFamily 建族
func (h *Handler) CreateFamily(c *gin.Context) {
	var req createFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "家族名不能为空")
		return
	}

	member := currentMember(c)
	family, err := h.familySvc.CreateFamily(c.Request.Context(), member.UserID, req.Name, req.Notice)
	if err != nil {
		h.familyError(c, err)
		return
	}
	response.Success(c, family)
}

// GetFamily 家族详情
func (h *Handler) GetFamily(c *gin.Context) {
	familyID, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "家族 id 不合法")
		return
	}

	family, err := h.familySvc.GetFamily(c.Request.Context(), familyID)
	if err != nil {
		h.familyError(c, err)
		return
	}
	response.Success(c, family)
}

// ApplyFamily 申请入族
func (h *Handler) ApplyFamily(c *gin.Context) {
	familyID, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "家族 id 不合法")
		return
	}

	member := currentMember(c)
	if err := h.familySvc.Apply(c.Request.Context(), familyID, member.UserID); err != nil {
		h.familyError(c, err)
		return
	}
	response.Success(c, nil)
}

type approveRequest struct {
	UserID  int64 `json:"user_id" binding:"required"`
	Approve *bool `json:"approve" binding:"required"`
}

// ApproveFamilyMember 审批申请
func (h *Handler) ApproveFamilyMember(c *gin.Context) {
	familyID, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "家族 id 不合法")
		return
	}

	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	member := currentMember(c)
	var err error
	if *req.Approve {
		err = h.familySvc.Approve(c.Request.Context(), familyID, req.UserID, member.UserID)
	} else {
		err = h.familySvc.Reject(c.Request.Context(), familyID, req.UserID, member.UserID)
	}
	if err != nil {
		h.familyError(c, err)
		return
	}
	response.Success(c, nil)
}

type blacklistRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

// BlacklistFamilyMember 拉黑成员
func (h *Handler) BlacklistFamilyMember(c *gin.Context) {
	familyID, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "家族 id 不合法")
		return
	}

	var req blacklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	member := currentMember(c)
	if err := h.familySvc.Blacklist(c.Request.Context(), familyID, req.UserID, member.UserID); err != nil {
		h.familyError(c, err)
		return
	}
	response.Success(c, nil)
}

type setRoleRequest struct {
	UserID int64  `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

// SetFamilyRole 提拔/罢免管理员
func (h *Handler) SetFamilyRole(c *gin.Context) {
	familyID, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "家族 id 不合法")
		return
	}

	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	member := currentMember(c)
	if err := h.familySvc.SetRole(c.Request.Context(), familyID, req.UserID, member.UserID, req.Role); err != nil {
		h.familyError(c, err)
		return
	}
	response.Success(c, nil)
}

// ListFamilyMembers 成员列表
func (h *Handler) ListFamilyMembers(c *gin.Context) {
	familyID, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "家族 id 不合法")
		return
	}

	members, err := h.familySvc.ListMembers(c.Request.Context(), familyID, c.Query("status"))
	if err != nil {
		h.familyError(c, err)
		return
	}
	response.Success(c, members)
}

type createMissionRequest struct {
	Title      string `json:"title" binding:"required"`
	Content    string `json:"content"`
	TargetCoin int64  `json:"target_coin" binding:"required,min=1"`
	Hours      int    `json:"hours" binding:"required,min=1"`
}

// CreateFamilyMission 开家族任务
func (h *Handler) CreateFamilyMission(c *gin.Context) {
	familyID, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "家族 id 不合法")
		return
	}

	var req createMissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	member := currentMember(c)
	now := time.Now()
	mission := &model.FamilyMission{
		FamilyID:   familyID,
		CreatorID:  member.UserID,
		Title:      req.Title,
		Content:    req.Content,
		TargetCoin: req.TargetCoin,
		DateBegin:  now,
		DateEnd:    now.Add(time.Duration(req.Hours) * time.Hour),
	}
	if err := h.familySvc.CreateMission(c.Request.Context(), mission); err != nil {
		h.familyError(c, err)
		return
	}
	response.Success(c, mission)
}

// ListFamilyMissions 任务列表
func (h *Handler) ListFamilyMissions(c *gin.Context) {
	familyID, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "家族 id 不合法")
		return
	}

	missions, err := h.familySvc.ListMissions(c.Request.Context(), familyID)
	if err != nil {
		h.familyError(c, err)
		return
	}
	response.Success(c, missions)
}

type articleRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
}

// PublishFamilyArticle 发家族公告
func (h *Handler) PublishFamilyArticle(c *gin.Context) {
	familyID, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "家族 id 不合法")
		return
	}

	var req articleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "标题不能为空")
		return
	}

	member := currentMember(c)
	article := &model.FamilyArticle{
		FamilyID: familyID,
		AuthorID: member.UserID,
		Title:    req.Title,
		Content:  req.Content,
	}
	if err := h.familySvc.PublishArticle(c.Request.Context(), article); err != nil {
		h.familyError(c, err)
		return
	}
	response.Success(c, article)
}

// ListFamilyArticles 公告列表
func (h *Handler) ListFamilyArticles(c *gin.Context) {
	familyID, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "家族 id 不合法")
		return
	}

	articles, err := h.familySvc.ListArticles(c.Request.Context(), familyID)
	if err != nil {
		h.familyError(c, err)
		return
	}
	response.Success(c, articles)
}

func (h *Handler) familyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrFamilyNotFound),
		errors.Is(err, repository.ErrFamilyMemberNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrFamilyNoPermission):
		response.Fail(c, http.StatusForbidden, response.CodeStateConflict, err.Error())
	case errors.Is(err, service.ErrFamilyAlreadyJoined),
		errors.Is(err, repository.ErrFamilyMemberExists),
		errors.Is(err, repository.ErrFamilyStatusInvalid),
		errors.Is(err, repository.ErrMissionLocked):
		response.Fail(c, http.StatusBadRequest, response.CodeStateConflict, err.Error())
	default:
		response.FromError(c, err)
	}
}
