package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// 业务错误码
const (
	CodeSuccess = 0

	// 40000 段：请求校验
	CodeInvalidParams    = 40000
	CodeVcodeCooldown    = 40010
	CodeVcodeMismatch    = 40011
	CodeMobileRegistered = 40031
	CodeDuplicate        = 40040
	CodeStateConflict    = 40041
	CodeNotFound         = 40400

	// 50000 段：账务与服务端
	CodeInsufficientFunds = 50001
	CodePriceFrozen       = 50002
	CodeInternalError     = 50000
)

// Response 统一响应结构
type Response struct {
	OK        bool        `json:"ok"`
	ErrorCode int         `json:"error_code"`
	Msg       string      `json:"msg"`
	Data      interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		OK:        true,
		ErrorCode: CodeSuccess,
		Msg:       "success",
		Data:      data,
	})
}

// SuccessWithMsg 带提示语的成功响应
func SuccessWithMsg(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		OK:        true,
		ErrorCode: CodeSuccess,
		Msg:       msg,
		Data:      data,
	})
}

// Fail 业务失败响应
func Fail(c *gin.Context, httpStatus, errorCode int, msg string) {
	c.JSON(httpStatus, Response{
		OK:        false,
		ErrorCode: errorCode,
		Msg:       msg,
	})
}

// BadRequest 参数校验失败
func BadRequest(c *gin.Context, msg string) {
	Fail(c, http.StatusBadRequest, CodeInvalidParams, msg)
}

// Unauthorized 未登录或会话失效；silent 告知客户端静默跳登录页
func Unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"ok":     false,
		"silent": true,
		"msg":    "请先登录",
	})
}

// NotFound 资源不存在
func NotFound(c *gin.Context, msg string) {
	Fail(c, http.StatusNotFound, CodeNotFound, msg)
}

// InternalError 服务器内部错误
func InternalError(c *gin.Context) {
	Fail(c, http.StatusInternalServerError, CodeInternalError, "服务器内部错误")
}

// DomainError 领域错误到响应的映射表
type DomainError struct {
	Err        error
	HTTPStatus int
	Code       int
}

var domainErrors []DomainError

// RegisterDomainError 启动时登记领域错误映射
func RegisterDomainError(err error, httpStatus, code int) {
	domainErrors = append(domainErrors, DomainError{Err: err, HTTPStatus: httpStatus, Code: code})
}

// FromError 按登记的映射输出响应；未登记的按内部错误处理
func FromError(c *gin.Context, err error) {
	for _, de := range domainErrors {
		if errors.Is(err, de.Err) {
			Fail(c, de.HTTPStatus, de.Code, err.Error())
			return
		}
	}
	InternalError(c)
}
