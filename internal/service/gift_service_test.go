package service

import (
	"testing"
	"time"

	"livesystem/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestDrawOutcome(t *testing.T) {
	outcomes := []*model.StarBoxOutcome{
		{ID: 1, Weight: 10},
		{ID: 2, Weight: 30},
		{ID: 3, Weight: 60},
	}

	// seed 对总权重取模后按区间落位
	assert.Equal(t, int64(1), drawOutcome(outcomes, 0).ID)
	assert.Equal(t, int64(1), drawOutcome(outcomes, 9).ID)
	assert.Equal(t, int64(2), drawOutcome(outcomes, 10).ID)
	assert.Equal(t, int64(2), drawOutcome(outcomes, 39).ID)
	assert.Equal(t, int64(3), drawOutcome(outcomes, 40).ID)
	assert.Equal(t, int64(3), drawOutcome(outcomes, 99).ID)
	assert.Equal(t, int64(1), drawOutcome(outcomes, 100).ID)
}

func TestDrawOutcomeSkipsZeroWeight(t *testing.T) {
	outcomes := []*model.StarBoxOutcome{
		{ID: 1, Weight: 0},
		{ID: 2, Weight: 5},
	}
	for seed := int64(0); seed < 20; seed++ {
		assert.Equal(t, int64(2), drawOutcome(outcomes, seed).ID)
	}
}

func TestDrawOutcomeAllZeroWeight(t *testing.T) {
	outcomes := []*model.StarBoxOutcome{
		{ID: 1, Weight: 0},
		{ID: 2, Weight: 0},
	}
	assert.Equal(t, int64(1), drawOutcome(outcomes, 42).ID)
}

func TestCheckSticker(t *testing.T) {
	now := time.Now()
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	// 非贴纸礼物不限时
	assert.NoError(t, checkSticker(&model.Prize{}, now))

	// 窗口内可送
	assert.NoError(t, checkSticker(&model.Prize{StickerFrom: &before, StickerTo: &after}, now))

	// 未开始
	assert.ErrorIs(t, checkSticker(&model.Prize{StickerFrom: &after}, now), ErrStickerExpired)

	// 已过期
	assert.ErrorIs(t, checkSticker(&model.Prize{StickerTo: &before}, now), ErrStickerExpired)
}
