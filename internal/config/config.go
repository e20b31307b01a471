package config

import (
	"encoding/json"
	"log"

	"github.com/spf13/viper"
)

// Config 全局配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	SMS      SMSConfig      `mapstructure:"sms"`
	Stream   StreamConfig   `mapstructure:"stream"`
	Business BusinessConfig `mapstructure:"business"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type MySQLConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers []string         `mapstructure:"brokers"`
	Topic   KafkaTopicConfig `mapstructure:"topic"`
}

type KafkaTopicConfig struct {
	GiftResult     string `mapstructure:"gift_result"`
	LiveEvent      string `mapstructure:"live_event"`
	RechargeResult string `mapstructure:"recharge_result"`
}

type SMSConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	AppID          string `mapstructure:"app_id"`
	AppSecret      string `mapstructure:"app_secret"`
	TemplateVcode  string `mapstructure:"template_vcode"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// StreamConfig 流媒体服务地址模板，核心只拼 URL 不碰媒体字节
type StreamConfig struct {
	PushURLFormat string `mapstructure:"push_url_format"`
	PlayURLFormat string `mapstructure:"play_url_format"`
}

// BusinessConfig 业务策略参数
type BusinessConfig struct {
	DiamondPerCoin           float64 `mapstructure:"diamond_per_coin"`            // 金币->主播钻石折算率
	StarIndexPerCoin         float64 `mapstructure:"star_index_per_coin"`         // 金币->星光指数折算率
	CoinPerDiamond           float64 `mapstructure:"coin_per_diamond"`            // 钻石兑金币比
	LiveIdleEndMinutes       int     `mapstructure:"live_idle_end_minutes"`       // 无动静超时收播阈值
	RechargeSecret           string  `mapstructure:"recharge_secret"`             // 充值回调签名密钥
	RechargeAwardRate        float64 `mapstructure:"recharge_award_rate"`         // 充值奖励比例
	WithdrawFeeRate          float64 `mapstructure:"withdraw_fee_rate"`           // 提现手续费率（百分比）
	VcodeCooldownSecs        int     `mapstructure:"vcode_cooldown_seconds"`      // 验证码冷却
	VcodeTTLSecs             int     `mapstructure:"vcode_ttl_seconds"`           // 验证码有效期
	MaxRetryCount            int     `mapstructure:"max_retry_count"`             // 外发消息最大重试
	AutoApproveMinutesFamily int     `mapstructure:"auto_approve_minutes_family"` // 入族申请超时自动通过，0 关闭
	LevelRules               string  `mapstructure:"level_rules"`                 // JSON：等级门槛与返利
	VipRules                 string  `mapstructure:"vip_rules"`                   // JSON：会员规则
	GuidePage                string  `mapstructure:"guide_page"`                  // JSON：引导页图片 id 数组
}

// LevelRule 单条等级规则：累计充值达到 threshold 升到 level
type LevelRule struct {
	Level      int     `json:"level"`
	Threshold  float64 `json:"threshold"`
	RebateRate float64 `json:"rebate_rate"`
}

// ParseLevelRules 解析 level_rules；空串给空表
func (b *BusinessConfig) ParseLevelRules() ([]LevelRule, error) {
	if b.LevelRules == "" {
		return nil, nil
	}
	var rules []LevelRule
	if err := json.Unmarshal([]byte(b.LevelRules), &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

var GlobalConfig *Config

// LoadConfig 加载配置文件
func LoadConfig(configPath string) *Config {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("读取配置文件失败: %v", err)
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	applyDefaults(config)
	GlobalConfig = config
	return config
}

func applyDefaults(c *Config) {
	if c.Business.DiamondPerCoin <= 0 {
		c.Business.DiamondPerCoin = 0.4
	}
	if c.Business.StarIndexPerCoin <= 0 {
		c.Business.StarIndexPerCoin = 1.0
	}
	if c.Business.CoinPerDiamond <= 0 {
		c.Business.CoinPerDiamond = 1.0
	}
	if c.Business.LiveIdleEndMinutes <= 0 {
		c.Business.LiveIdleEndMinutes = 30
	}
	if c.Business.VcodeCooldownSecs <= 0 {
		c.Business.VcodeCooldownSecs = 60
	}
	if c.Business.VcodeTTLSecs <= 0 {
		c.Business.VcodeTTLSecs = 600
	}
	if c.Business.MaxRetryCount <= 0 {
		c.Business.MaxRetryCount = 3
	}
	if c.SMS.TimeoutSeconds <= 0 {
		c.SMS.TimeoutSeconds = 5
	}
}
