package handler

import (
	"errors"
	"net/http"

	"livesystem/internal/repository"
	"livesystem/internal/service"
	"livesystem/pkg/response"

	"github.com/gin-gonic/gin"
)

type sendVcodeRequest struct {
	Mobile string `json:"mobile" binding:"required"`
}

// SendVcode 下发验证码
func (h *Handler) SendVcode(c *gin.Context) {
	var req sendVcodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "手机号不能为空")
		return
	}

	if err := h.memberSvc.SendVcode(c.Request.Context(), req.Mobile); err != nil {
		if errors.Is(err, service.ErrVcodeCooldown) {
			response.Fail(c, http.StatusBadRequest, response.CodeVcodeCooldown, err.Error())
			return
		}
		response.FromError(c, err)
		return
	}
	response.SuccessWithMsg(c, "验证码已发送成功", nil)
}

type registerRequest struct {
	Mobile   string `json:"mobile" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Vcode    string `json:"mobile_vcode" binding:"required"`
	Nickname string `json:"nickname"`
}

// Register 注册
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	member, err := h.memberSvc.Register(c.Request.Context(), req.Mobile, req.Password, req.Vcode, req.Nickname)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVcodeMismatch):
			response.Fail(c, http.StatusBadRequest, response.CodeVcodeMismatch, err.Error())
		case errors.Is(err, repository.ErrMobileRegistered):
			response.Fail(c, http.StatusBadRequest, response.CodeMobileRegistered, "註冊失敗，手機號碼已被註冊！")
		default:
			response.FromError(c, err)
		}
		return
	}
	response.Success(c, member)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 登录
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "用户名和密码不能为空")
		return
	}

	member, sessionKey, err := h.memberSvc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrWrongPassword) || errors.Is(err, service.ErrMemberDisabled) {
			response.Fail(c, http.StatusBadRequest, response.CodeInvalidParams, err.Error())
			return
		}
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{
		"member":      member,
		"session_key": sessionKey,
	})
}

// Logout 登出
func (h *Handler) Logout(c *gin.Context) {
	member := currentMember(c)
	if err := h.memberSvc.Logout(c.Request.Context(), member.UserID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

// Me 当前会员资料
func (h *Handler) Me(c *gin.Context) {
	response.Success(c, currentMember(c))
}

type updateProfileRequest struct {
	Nickname  *string `json:"nickname"`
	Gender    *int    `json:"gender"`
	AvatarURL *string `json:"avatar_url"`
}

// UpdateProfile 改资料，只收白名单字段
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Nickname != nil {
		updates["nickname"] = *req.Nickname
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}
	if len(updates) == 0 {
		response.BadRequest(c, "没有可更新的字段")
		return
	}

	member := currentMember(c)
	if err := h.memberSvc.UpdateProfile(c.Request.Context(), member.UserID, updates); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

type setReferrerRequest struct {
	ReferrerID int64 `json:"referrer_id" binding:"required"`
}

// SetReferrer 绑定推荐人
func (h *Handler) SetReferrer(c *gin.Context) {
	var req setReferrerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "推荐人不能为空")
		return
	}

	member := currentMember(c)
	if err := h.memberSvc.SetReferrer(c.Request.Context(), member.UserID, req.ReferrerID); err != nil {
		switch {
		case errors.Is(err, repository.ErrReferrerAlready), errors.Is(err, repository.ErrReferrerSelf):
			response.Fail(c, http.StatusBadRequest, response.CodeStateConflict, err.Error())
		case errors.Is(err, repository.ErrMemberNotFound):
			response.NotFound(c, err.Error())
		default:
			response.FromError(c, err)
		}
		return
	}
	response.Success(c, nil)
}

// Destroy 注销账号
func (h *Handler) Destroy(c *gin.Context) {
	member := currentMember(c)
	if err := h.memberSvc.Destroy(c.Request.Context(), member.UserID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}
