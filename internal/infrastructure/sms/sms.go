package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"livesystem/internal/config"
)

// Client 短信通道客户端，验证码走模板下发
type Client struct {
	cfg        *config.SMSConfig
	httpClient *http.Client
}

func NewClient(cfg *config.SMSConfig) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

type sendRequest struct {
	AppID      string `json:"app_id"`
	AppSecret  string `json:"app_secret"`
	Mobile     string `json:"mobile"`
	TemplateID string `json:"template_id"`
	Content    string `json:"content"`
}

type sendResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// SendVcode 下发验证码短信
func (c *Client) SendVcode(ctx context.Context, mobile, code string) error {
	// 未配置通道时只打日志，开发环境直接看日志取码
	if c.cfg.Endpoint == "" {
		log.Printf("[SMS] 未配置短信通道, mobile=%s, code=%s", mobile, code)
		return nil
	}

	body, err := json.Marshal(sendRequest{
		AppID:      c.cfg.AppID,
		AppSecret:  c.cfg.AppSecret,
		Mobile:     mobile,
		TemplateID: c.cfg.TemplateVcode,
		Content:    code,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("短信通道返回异常状态: %d", resp.StatusCode)
	}

	var result sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}
	if result.Code != 0 {
		return fmt.Errorf("短信发送失败: %s", result.Msg)
	}
	return nil
}
