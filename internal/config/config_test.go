package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevelRules(t *testing.T) {
	b := &BusinessConfig{
		LevelRules: `[{"level":1,"threshold":100,"rebate_rate":0.01},{"level":2,"threshold":1000,"rebate_rate":0.02}]`,
	}

	rules, err := b.ParseLevelRules()
	assert.NoError(t, err)
	assert.Len(t, rules, 2)
	assert.Equal(t, 1, rules[0].Level)
	assert.Equal(t, float64(100), rules[0].Threshold)
	assert.Equal(t, 0.02, rules[1].RebateRate)
}

func TestParseLevelRulesEmpty(t *testing.T) {
	b := &BusinessConfig{}
	rules, err := b.ParseLevelRules()
	assert.NoError(t, err)
	assert.Empty(t, rules)
}

func TestParseLevelRulesBadJSON(t *testing.T) {
	b := &BusinessConfig{LevelRules: `{broken`}
	_, err := b.ParseLevelRules()
	assert.Error(t, err)
}

func TestApplyDefaults(t *testing.T) {
	c := &Config{}
	applyDefaults(c)

	assert.Equal(t, 0.4, c.Business.DiamondPerCoin)
	assert.Equal(t, 1.0, c.Business.StarIndexPerCoin)
	assert.Equal(t, 1.0, c.Business.CoinPerDiamond)
	assert.Equal(t, 30, c.Business.LiveIdleEndMinutes)
	assert.Equal(t, 60, c.Business.VcodeCooldownSecs)
	assert.Equal(t, 600, c.Business.VcodeTTLSecs)
	assert.Equal(t, 3, c.Business.MaxRetryCount)
	assert.Equal(t, 5, c.SMS.TimeoutSeconds)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	c := &Config{}
	c.Business.DiamondPerCoin = 0.5
	c.Business.LiveIdleEndMinutes = 10
	applyDefaults(c)

	assert.Equal(t, 0.5, c.Business.DiamondPerCoin)
	assert.Equal(t, 10, c.Business.LiveIdleEndMinutes)
}
