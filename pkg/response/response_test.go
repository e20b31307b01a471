package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func record(fn func(c *gin.Context)) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fn(c)
	return w
}

func TestSuccessEnvelope(t *testing.T) {
	w := record(func(c *gin.Context) {
		Success(c, gin.H{"value": 42})
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, CodeSuccess, resp.ErrorCode)
	assert.Equal(t, "success", resp.Msg)
}

func TestBadRequestEnvelope(t *testing.T) {
	w := record(func(c *gin.Context) {
		BadRequest(c, "参数错误")
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Equal(t, CodeInvalidParams, resp.ErrorCode)
}

func TestUnauthorizedSilent(t *testing.T) {
	w := record(Unauthorized)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["ok"])
	assert.Equal(t, true, resp["silent"])
}

func TestFromErrorRegistered(t *testing.T) {
	errTest := errors.New("测试领域错误")
	RegisterDomainError(errTest, http.StatusBadRequest, CodeStateConflict)

	// 包装过的错误同样命中
	w := record(func(c *gin.Context) {
		FromError(c, fmt.Errorf("外层: %w", errTest))
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, CodeStateConflict, resp.ErrorCode)
}

func TestFromErrorUnregistered(t *testing.T) {
	w := record(func(c *gin.Context) {
		FromError(c, errors.New("没登记过的错误"))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, CodeInternalError, resp.ErrorCode)
}
