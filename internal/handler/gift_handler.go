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

type purchaseGiftRequest struct {
	Prize int64 `json:"prize" binding:"required"`
	Count int   `json:"count" binding:"required,min=1"`
}

// PurchaseGift 金币买礼物送出，直播间维度的动作
func (h *Handler) PurchaseGift(c *gin.Context) {
	liveID, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "直播间 id 不合法")
		return
	}
	var req purchaseGiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	member := currentMember(c)
	order, err := h.giftSvc.Purchase(c.Request.Context(), member.UserID, liveID, req.Prize, req.Count)
	if err != nil {
		h.giftError(c, err)
		return
	}
	response.Success(c, order)
}

type activePrizeRequest struct {
	Prize     int64  `json:"prize" binding:"required"`
	Count     int    `json:"count" binding:"required,min=1"`
	SourceTag string `json:"source_tag"`
}

// SendActivePrize 送活动礼物（扣库存不扣金币）
// source_tag 指定扣哪个分仓，缺省扣活动仓
func (h *Handler) SendActivePrize(c *gin.Context) {
	liveID, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "直播间 id 不合法")
		return
	}
	var req activePrizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}
	if req.SourceTag != "" && !model.SourceTagValid(req.SourceTag) {
		response.BadRequest(c, "未知的库存分仓")
		return
	}

	member := currentMember(c)
	order, err := h.giftSvc.SendActivePrize(c.Request.Context(), member.UserID, liveID, req.Prize, req.Count, req.SourceTag)
	if err != nil {
		h.giftError(c, err)
		return
	}
	response.Success(c, order)
}

// OpenStarBox 开星光宝盒
func (h *Handler) OpenStarBox(c *gin.Context) {
	member := currentMember(c)
	outcome, err := h.giftSvc.OpenStarBox(c.Request.Context(), member.UserID)
	if err != nil {
		h.giftError(c, err)
		return
	}
	response.Success(c, outcome)
}

// ListPrizes 礼物目录
func (h *Handler) ListPrizes(c *gin.Context) {
	var categoryID *int64
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.BadRequest(c, "分类 id 不合法")
			return
		}
		categoryID = &id
	}

	prizes, err := h.giftSvc.ListPrizes(c.Request.Context(), categoryID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, prizes)
}

// ListPrizeCategories 礼物分类
func (h *Handler) ListPrizeCategories(c *gin.Context) {
	categories, err := h.giftSvc.ListPrizeCategories(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, categories)
}

// ListBadges 徽章目录
func (h *Handler) ListBadges(c *gin.Context) {
	badges, err := h.socialSvc.ListBadges(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, badges)
}

// MyBadges 我的徽章
func (h *Handler) MyBadges(c *gin.Context) {
	member := currentMember(c)
	records, err := h.socialSvc.MyBadges(c.Request.Context(), member.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, records)
}

func (h *Handler) giftError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrInsufficientFunds):
		response.Fail(c, http.StatusBadRequest, response.CodeInsufficientFunds, err.Error())
	case errors.Is(err, service.ErrGiftBusy):
		response.Fail(c, http.StatusTooManyRequests, response.CodeDuplicate, err.Error())
	case errors.Is(err, repository.ErrLiveNotFound),
		errors.Is(err, repository.ErrPrizeNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, repository.ErrLiveOver),
		errors.Is(err, repository.ErrWatchLogNotFound),
		errors.Is(err, service.ErrStickerExpired),
		errors.Is(err, service.ErrStarBoxEmpty),
		errors.Is(err, service.ErrInvalidCount):
		response.Fail(c, http.StatusBadRequest, response.CodeStateConflict, err.Error())
	default:
		response.FromError(c, err)
	}
}
