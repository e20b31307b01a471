package handler

import (
	"errors"
	"net/http"
	"strconv"

	"livesystem/internal/model"
	"livesystem/internal/repository"
	"livesystem/internal/service"
	"livesystem/pkg/response"

	"github.com/gin-gonic/gin"
)

type createLiveRequest struct {
	Name       string `json:"name" binding:"required"`
	CategoryID *int64 `json:"category_id"`
	Password   string `json:"password"`
	Quota      *int   `json:"quota"`
	IsPrivate  bool   `json:"is_private"`
}

// CreateLive 开播
func (h *Handler) CreateLive(c *gin.Context) {
	var req createLiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "房间名不能为空")
		return
	}

	member := currentMember(c)
	live, err := h.liveSvc.CreateLive(c.Request.Context(), &model.Live{
		AuthorID:   member.UserID,
		CategoryID: req.CategoryID,
		Name:       req.Name,
		Password:   req.Password,
		Quota:      req.Quota,
		IsPrivate:  req.IsPrivate,
		IsFree:     true,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, live)
}

// ListLives 直播间列表，支持前缀过滤参数
func (h *Handler) ListLives(c *gin.Context) {
	page, pageSize := pagination(c)
	query := applyFilters(h.db.WithContext(c.Request.Context()), c.Request.URL.Query())

	lives, total, err := h.liveSvc.List(c.Request.Context(), query, page, pageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{
		"list":  lives,
		"total": total,
	})
}

// GetLive 房间详情
func (h *Handler) GetLive(c *gin.Context) {
	liveID, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "房间 id 不合法")
		return
	}

	live, err := h.liveSvc.GetLive(c.Request.Context(), liveID)
	if err != nil {
		if errors.Is(err, repository.ErrLiveNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{
		"live":     live,
		"status":   live.Status(),
		"play_url": h.liveSvc.PlayURL(live.ID),
	})
}

type enterLiveRequest struct {
	Password string `json:"password"`
}

// EnterLive 进房
func (h *Handler) EnterLive(c *gin.Context) {
	liveID, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "房间 id 不合法")
		return
	}

	var req enterLiveRequest
	_ = c.ShouldBindJSON(&req)

	member := currentMember(c)
	watchLog, err := h.liveSvc.Enter(c.Request.Context(), member.UserID, liveID, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrLiveNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, repository.ErrLiveOver),
			errors.Is(err, service.ErrLivePassword),
			errors.Is(err, service.ErrLiveFull):
			response.Fail(c, http.StatusBadRequest, response.CodeStateConflict, err.Error())
		default:
			response.FromError(c, err)
		}
		return
	}
	response.Success(c, watchLog)
}

// LeaveLive 离房
func (h *Handler) LeaveLive(c *gin.Context) {
	liveID, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "房间 id 不合法")
		return
	}

	member := currentMember(c)
	if err := h.liveSvc.Leave(c.Request.Context(), member.UserID, liveID); err != nil {
		if errors.Is(err, repository.ErrWatchLogNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

// EndLive 收播，仅主播本人可操作
func (h *Handler) EndLive(c *gin.Context) {
	liveID, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "房间 id 不合法")
		return
	}

	member := currentMember(c)
	live, err := h.liveSvc.GetLive(c.Request.Context(), liveID)
	if err != nil {
		if errors.Is(err, repository.ErrLiveNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.FromError(c, err)
		return
	}
	if live.AuthorID != member.UserID {
		response.Fail(c, http.StatusForbidden, response.CodeStateConflict, "只有主播本人可以收播")
		return
	}

	if err := h.liveSvc.End(c.Request.Context(), liveID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

type likeRequest struct {
	Count int64 `json:"count"`
}

// LikeLive 点赞
func (h *Handler) LikeLive(c *gin.Context) {
	liveID, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "房间 id 不合法")
		return
	}

	var req likeRequest
	_ = c.ShouldBindJSON(&req)

	member := currentMember(c)
	if err := h.liveSvc.Like(c.Request.Context(), member.UserID, liveID, req.Count); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

type barrageRequest struct {
	Type    string `json:"type"`
	Content string `json:"content" binding:"required"`
}

// SendBarrage 发弹幕
func (h *Handler) SendBarrage(c *gin.Context) {
	liveID, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "房间 id 不合法")
		return
	}

	var req barrageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "弹幕内容不能为空")
		return
	}
	if req.Type == "" {
		req.Type = model.BarrageTypeNormal
	}

	member := currentMember(c)
	barrage, err := h.liveSvc.SendBarrage(c.Request.Context(), member.UserID, liveID, req.Type, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLiveSilenced):
			response.Fail(c, http.StatusForbidden, response.CodeStateConflict, err.Error())
		case errors.Is(err, repository.ErrWatchLogNotFound):
			response.Fail(c, http.StatusBadRequest, response.CodeStateConflict, "请先进入房间")
		default:
			response.FromError(c, err)
		}
		return
	}
	response.Success(c, barrage)
}

// ListBarrages 弹幕列表
func (h *Handler) ListBarrages(c *gin.Context) {
	liveID, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "房间 id 不合法")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	barrages, err := h.liveSvc.ListBarrages(c.Request.Context(), liveID, limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, barrages)
}

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

// CommentLive 发评论
func (h *Handler) CommentLive(c *gin.Context) {
	liveID, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "房间 id 不合法")
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "评论内容不能为空")
		return
	}

	member := currentMember(c)
	comment, err := h.liveSvc.Comment(c.Request.Context(), member.UserID, liveID, req.Content)
	if err != nil {
		if errors.Is(err, repository.ErrWatchLogNotFound) {
			response.Fail(c, http.StatusBadRequest, response.CodeStateConflict, "请先进入房间")
			return
		}
		response.FromError(c, err)
		return
	}
	response.Success(c, comment)
}

// ListComments 评论列表
func (h *Handler) ListComments(c *gin.Context) {
	liveID, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "房间 id 不合法")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	comments, err := h.liveSvc.ListComments(c.Request.Context(), liveID, limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, comments)
}

// LiveWS 直播间事件 websocket
func (h *Handler) LiveWS(c *gin.Context) {
	liveID, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "房间 id 不合法")
		return
	}
	if err := h.hub.ServeWS(c.Writer, c.Request, liveID); err != nil {
		response.InternalError(c)
	}
}
