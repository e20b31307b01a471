package handler

import (
	"errors"
	"net/http"
	"strconv"

	"livesystem/internal/service"
	"livesystem/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// RechargeNotify 第三方支付回调
// 应答协议固定：{"code":"0","msg":""} 成功，{"code":"1","msg":...} 失败，HTTP 始终 200
func (h *Handler) RechargeNotify(c *gin.Context) {
	imoney, err := decimal.NewFromString(c.PostForm("imoney"))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": "1", "msg": "imoney invalid"})
		return
	}
	payTime, err := strconv.ParseInt(c.PostForm("time"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": "1", "msg": "time invalid"})
		return
	}

	notify := &service.RechargeNotify{
		Account:   c.PostForm("account"),
		ServerID:  c.PostForm("serverid"),
		Platform:  c.PostForm("platform"),
		OrderID:   c.PostForm("orderid"),
		ProductID: c.PostForm("productid"),
		IMoney:    imoney,
		ToAccount: c.PostForm("to_account"),
		Extra:     c.PostForm("extra"),
		Time:      payTime,
		Sign:      c.PostForm("verify"),
	}
	if notify.Account == "" || notify.OrderID == "" || notify.Sign == "" {
		c.JSON(http.StatusOK, gin.H{"code": "1", "msg": "param missing"})
		return
	}

	duplicate, err := h.rechargeSvc.HandleNotify(c.Request.Context(), notify)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRechargeSign):
			c.JSON(http.StatusOK, gin.H{"code": "1", "msg": "verify incorrect"})
		case errors.Is(err, service.ErrRechargeAccount):
			c.JSON(http.StatusOK, gin.H{"code": "1", "msg": "account not exist"})
		default:
			c.JSON(http.StatusOK, gin.H{"code": "1", "msg": "internal error"})
		}
		return
	}

	if duplicate {
		// 同一 orderid 只入账一次
		c.JSON(http.StatusOK, gin.H{"code": "1", "msg": "record exist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": "0", "msg": ""})
}

// ListRechargeRecords 充值记录
func (h *Handler) ListRechargeRecords(c *gin.Context) {
	member := currentMember(c)
	page, pageSize := pagination(c)

	records, total, err := h.rechargeSvc.ListRecords(c.Request.Context(), member.UserID, page, pageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{
		"list":  records,
		"total": total,
	})
}
