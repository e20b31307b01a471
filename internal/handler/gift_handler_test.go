package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSendActivePrizeRejectsUnknownSourceTag(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/live/1/active_prize/",
		strings.NewReader(`{"prize":1,"count":1,"source_tag":"WAREHOUSE_X"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	h := &Handler{}
	h.SendActivePrize(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendActivePrizeRejectsBadLiveID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/live/x/active_prize/", strings.NewReader(`{}`))
	c.Params = gin.Params{{Key: "id", Value: "x"}}

	h := &Handler{}
	h.SendActivePrize(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
