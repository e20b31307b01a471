package handler

import (
	"errors"
	"net/http"

	"livesystem/internal/model"
	"livesystem/internal/repository"
	"livesystem/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Balances 全币种余额
func (h *Handler) Balances(c *gin.Context) {
	member := currentMember(c)
	balances, err := h.ledgerSvc.Balances(c.Request.Context(), member.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, balances)
}

// LedgerEntries 某币种流水
func (h *Handler) LedgerEntries(c *gin.Context) {
	member := currentMember(c)
	kind := model.Currency(c.Param("kind"))
	if !kind.Valid() {
		response.BadRequest(c, "未知币种")
		return
	}

	page, pageSize := pagination(c)
	entries, total, err := h.ledgerSvc.ListEntries(c.Request.Context(), kind, member.UserID, page, pageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{
		"list":  entries,
		"total": total,
	})
}

type exchangeRequest struct {
	Kind   string `json:"kind" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// Exchange 钻石金币互兑，kind 是付出的币种
func (h *Handler) Exchange(c *gin.Context) {
	var req exchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "兑换参数不能为空")
		return
	}

	from := model.Currency(req.Kind)
	if from != model.CurrencyDiamond && from != model.CurrencyCoin {
		response.BadRequest(c, "只支持钻石和金币互兑")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		response.BadRequest(c, "兑换数量必须是正数")
		return
	}

	member := currentMember(c)
	got, err := h.ledgerSvc.Exchange(c.Request.Context(), member.UserID, from, amount)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientFunds) {
			response.Fail(c, http.StatusBadRequest, response.CodeInsufficientFunds, err.Error())
			return
		}
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"got_amount": got})
}
