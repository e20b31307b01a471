package handler

import (
	"livesystem/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRouter 注册路由
func SetupRouter(h *Handler, memberSvc *service.MemberService) *gin.Engine {
	router := gin.New()

	router.Use(LoggerMiddleware())
	router.Use(RecoveryMiddleware())
	router.Use(CORSMiddleware())

	api := router.Group("/api")

	// 开放接口
	api.POST("/member/send_vcode/", h.SendVcode)
	api.POST("/member/register/", h.Register)
	api.POST("/member/login/", h.Login)
	api.POST("/recharge_record/notify/", h.RechargeNotify)
	api.GET("/live/", h.ListLives)
	api.GET("/live/:id/", h.GetLive)
	api.GET("/live/:id/barrage/", h.ListBarrages)
	api.GET("/live/:id/comment/", h.ListComments)
	api.GET("/rank/", h.RankTop)
	api.GET("/active_event/", h.ListActivities)
	api.GET("/prize/", h.ListPrizes)
	api.GET("/prize_category/", h.ListPrizeCategories)
	api.GET("/badge/", h.ListBadges)

	// 会话接口
	auth := api.Group("", AuthMiddleware(memberSvc))
	{
		auth.POST("/member/logout/", h.Logout)
		auth.GET("/member/me/", h.Me)
		auth.PUT("/member/me/", h.UpdateProfile)
		auth.POST("/member/referrer/", h.SetReferrer)
		auth.DELETE("/member/me/", h.Destroy)

		auth.GET("/wallet/", h.Balances)
		auth.GET("/wallet/:kind/entries/", h.LedgerEntries)
		auth.POST("/wallet/exchange/", h.Exchange)

		auth.POST("/live/", h.CreateLive)
		auth.POST("/live/:id/enter/", h.EnterLive)
		auth.POST("/live/:id/leave/", h.LeaveLive)
		auth.POST("/live/:id/end/", h.EndLive)
		auth.POST("/live/:id/like/", h.LikeLive)
		auth.POST("/live/:id/barrage/", h.SendBarrage)
		auth.POST("/live/:id/comment/", h.CommentLive)
		auth.GET("/live/:id/ws/", h.LiveWS)

		auth.POST("/live/:id/buy_prize/", h.PurchaseGift)
		auth.POST("/live/:id/active_prize/", h.SendActivePrize)
		auth.POST("/star_box/open/", h.OpenStarBox)

		auth.POST("/active_event/:id/participate/", h.ParticipateActivity)
		auth.GET("/rank/me/", h.MyRank)

		auth.POST("/family/", h.CreateFamily)
		auth.GET("/family/:id/", h.GetFamily)
		auth.POST("/family/:id/apply/", h.ApplyFamily)
		auth.POST("/family/:id/approve/", h.ApproveFamilyMember)
		auth.POST("/family/:id/blacklist/", h.BlacklistFamilyMember)
		auth.POST("/family/:id/role/", h.SetFamilyRole)
		auth.GET("/family/:id/member/", h.ListFamilyMembers)
		auth.POST("/family/:id/mission/", h.CreateFamilyMission)
		auth.GET("/family/:id/mission/", h.ListFamilyMissions)
		auth.POST("/family/:id/article/", h.PublishFamilyArticle)
		auth.GET("/family/:id/article/", h.ListFamilyArticles)

		auth.POST("/mark/", h.CreateMark)
		auth.DELETE("/mark/", h.DeleteMark)
		auth.GET("/mark/following/", h.Following)
		auth.GET("/mark/followers/", h.Followers)

		auth.POST("/user_contact/", h.AddContact)
		auth.DELETE("/user_contact/:id/", h.RemoveContact)
		auth.GET("/user_contact/", h.ListContacts)
		auth.GET("/user_contact/friends/", h.ListFriends)

		auth.GET("/badge/me/", h.MyBadges)
		auth.GET("/recharge_record/", h.ListRechargeRecords)
	}

	return router
}
