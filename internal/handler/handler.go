package handler

import (
	"strconv"

	"livesystem/internal/service"
	"livesystem/internal/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler HTTP 入口，持有全部领域服务
type Handler struct {
	db          *gorm.DB
	hub         *ws.Hub
	memberSvc   *service.MemberService
	ledgerSvc   *service.LedgerService
	liveSvc     *service.LiveService
	giftSvc     *service.GiftService
	activitySvc *service.ActivityService
	rankSvc     *service.RankService
	familySvc   *service.FamilyService
	socialSvc   *service.SocialService
	rechargeSvc *service.RechargeService
}

func NewHandler(
	db *gorm.DB,
	hub *ws.Hub,
	memberSvc *service.MemberService,
	ledgerSvc *service.LedgerService,
	liveSvc *service.LiveService,
	giftSvc *service.GiftService,
	activitySvc *service.ActivityService,
	rankSvc *service.RankService,
	familySvc *service.FamilyService,
	socialSvc *service.SocialService,
	rechargeSvc *service.RechargeService,
) *Handler {
	return &Handler{
		db:          db,
		hub:         hub,
		memberSvc:   memberSvc,
		ledgerSvc:   ledgerSvc,
		liveSvc:     liveSvc,
		giftSvc:     giftSvc,
		activitySvc: activitySvc,
		rankSvc:     rankSvc,
		familySvc:   familySvc,
		socialSvc:   socialSvc,
		rechargeSvc: rechargeSvc,
	}
}

// parseID 路径参数里的数字 id
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// pagination page/page_size 查询参数，带默认值与上限
func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
