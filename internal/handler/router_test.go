package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"livesystem/internal/config"
	"livesystem/internal/infrastructure/sms"
	"livesystem/internal/service"
	"livesystem/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// newTestRouter 不连库，只覆盖进库前就能判定的路径
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	hub := ws.NewHub()
	smsClient := sms.NewClient(&cfg.SMS)

	ledgerSvc := service.NewLedgerService(nil, cfg, nil)
	memberSvc := service.NewMemberService(nil, cfg, nil, smsClient)
	liveSvc := service.NewLiveService(nil, cfg, hub, ledgerSvc)
	familySvc := service.NewFamilyService(nil, cfg)
	giftSvc := service.NewGiftService(nil, cfg, nil, hub, ledgerSvc, familySvc)
	activitySvc := service.NewActivityService(nil, cfg, ledgerSvc)
	rankSvc := service.NewRankService(nil, cfg)
	socialSvc := service.NewSocialService(nil)
	vipSvc := service.NewVipService(nil, cfg)
	rechargeSvc := service.NewRechargeService(nil, cfg, ledgerSvc, vipSvc)

	h := NewHandler(nil, hub,
		memberSvc, ledgerSvc, liveSvc, giftSvc,
		activitySvc, rankSvc, familySvc, socialSvc, rechargeSvc)
	return SetupRouter(h, memberSvc)
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSendVcodeRequiresMobile(t *testing.T) {
	router := newTestRouter()

	w := doJSON(router, http.MethodPost, "/api/member/send_vcode/", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["ok"])
	assert.Equal(t, float64(40000), resp["error_code"])
}

func TestRegisterValidatesPassword(t *testing.T) {
	router := newTestRouter()

	// 密码最短 6 位
	w := doJSON(router, http.MethodPost, "/api/member/register/",
		`{"mobile":"13800138000","password":"123","mobile_vcode":"888888"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginRequiresCredentials(t *testing.T) {
	router := newTestRouter()

	w := doJSON(router, http.MethodPost, "/api/member/login/", `{"username":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthRoutesRejectAnonymous(t *testing.T) {
	router := newTestRouter()

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/member/me/"},
		{http.MethodGet, "/api/wallet/"},
		{http.MethodPost, "/api/wallet/exchange/"},
		{http.MethodPost, "/api/live/1/buy_prize/"},
		{http.MethodGet, "/api/recharge_record/"},
	} {
		w := doJSON(router, route.method, route.path, `{}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)

		var resp map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, false, resp["ok"])
		assert.Equal(t, true, resp["silent"])
	}
}

func TestGetLiveRejectsBadID(t *testing.T) {
	router := newTestRouter()

	w := doJSON(router, http.MethodGet, "/api/live/abc/", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func postForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRechargeNotifyBadAmount(t *testing.T) {
	router := newTestRouter()

	w := postForm(router, "/api/recharge_record/notify/", url.Values{
		"account": {"13800138000"},
		"orderid": {"ORD1"},
		"imoney":  {"not-a-number"},
		"time":    {"1756600000"},
		"verify":  {"ABC"},
	})
	// 回调协议始终 200，以 code 区分成败
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "1", resp["code"])
}

func TestRechargeNotifyMissingFields(t *testing.T) {
	router := newTestRouter()

	w := postForm(router, "/api/recharge_record/notify/", url.Values{
		"imoney": {"100"},
		"time":   {"1756600000"},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "1", resp["code"])
}

func TestRechargeNotifyBadSign(t *testing.T) {
	router := newTestRouter()

	w := postForm(router, "/api/recharge_record/notify/", url.Values{
		"account": {"13800138000"},
		"orderid": {"ORD1"},
		"imoney":  {"100"},
		"time":    {"1756600000"},
		"verify":  {"DEADBEEF"},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "1", resp["code"])
	assert.Equal(t, "verify incorrect", resp["msg"])
}

func TestPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=3&page_size=50", nil)
	page, pageSize := pagination(c)
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, pageSize)

	// 非法值回落默认
	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=-1&page_size=9999", nil)
	page, pageSize = pagination(c)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, pageSize)
}
