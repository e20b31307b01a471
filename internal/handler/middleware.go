package handler

import (
	"log"
	"time"

	"livesystem/internal/model"
	"livesystem/internal/service"
	"livesystem/pkg/response"

	"github.com/gin-gonic/gin"
)

const ctxMemberKey = "current_member"

// LoggerMiddleware 日志中间件
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if query != "" {
			path = path + "?" + query
		}

		log.Printf("[HTTP] %d | %13v | %15s | %-7s %s",
			status,
			latency,
			c.ClientIP(),
			c.Request.Method,
			path,
		)
	}
}

// RecoveryMiddleware 恢复中间件，防止 panic 导致服务崩溃
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[PANIC] %v", err)
				c.AbortWithStatusJSON(500, gin.H{
					"ok":         false,
					"error_code": response.CodeInternalError,
					"msg":        "服务器内部错误",
				})
			}
		}()
		c.Next()
	}
}

// CORSMiddleware 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Session-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// AuthMiddleware 会话鉴权，X-Session-Key 对不上就 401 静默跳登录
func AuthMiddleware(memberSvc *service.MemberService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionKey := c.GetHeader("X-Session-Key")
		if sessionKey == "" {
			sessionKey = c.Query("session_key")
		}

		member, err := memberSvc.Authenticate(c.Request.Context(), sessionKey)
		if err != nil {
			response.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(ctxMemberKey, member)
		c.Next()
	}
}

// currentMember 从上下文取已鉴权会员
func currentMember(c *gin.Context) *model.Member {
	value, ok := c.Get(ctxMemberKey)
	if !ok {
		return nil
	}
	member, ok := value.(*model.Member)
	if !ok {
		return nil
	}
	return member
}
