package service

import (
	"testing"

	"livesystem/internal/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func vipTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Business.LevelRules = `[
		{"level":1,"threshold":100,"rebate_rate":0.01},
		{"level":2,"threshold":1000,"rebate_rate":0.02},
		{"level":3,"threshold":10000,"rebate_rate":0.05}
	]`
	return cfg
}

func TestLevelFor(t *testing.T) {
	svc := NewVipService(nil, vipTestConfig())

	cases := []struct {
		total int64
		level int
	}{
		{0, 0},
		{99, 0},
		{100, 1},
		{999, 1},
		{1000, 2},
		{10000, 3},
		{999999, 3},
	}
	for _, c := range cases {
		level, err := svc.LevelFor(decimal.NewFromInt(c.total))
		assert.NoError(t, err)
		assert.Equal(t, c.level, level, "累计充值 %d", c.total)
	}
}

func TestLevelForBadRules(t *testing.T) {
	cfg := &config.Config{}
	cfg.Business.LevelRules = `{broken`
	svc := NewVipService(nil, cfg)

	_, err := svc.LevelFor(decimal.NewFromInt(100))
	assert.Error(t, err)
}
