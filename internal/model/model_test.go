package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrencyTableName(t *testing.T) {
	assert.Equal(t, "ledger_coin", CurrencyCoin.TableName())
	assert.Equal(t, "ledger_diamond", CurrencyDiamond.TableName())
	assert.Equal(t, "ledger_star_index_sender", CurrencyStarIndexSender.TableName())
	assert.Equal(t, "ledger_star_index_receiver", CurrencyStarIndexReceiver.TableName())
	assert.Equal(t, "ledger_prize", CurrencyPrize.TableName())
}

func TestCurrencyValid(t *testing.T) {
	for _, kind := range AllCurrencies {
		assert.True(t, kind.Valid(), "币种 %s 应当合法", kind)
	}
	assert.False(t, Currency("gold").Valid())
	assert.False(t, Currency("").Valid())
}

func TestLiveStatus(t *testing.T) {
	live := &Live{}
	assert.Equal(t, LiveStatusActive, live.Status())

	now := time.Now()
	live.EndedAt = &now
	assert.Equal(t, LiveStatusOver, live.Status())
}

func TestFamilyStatusTransitions(t *testing.T) {
	assert.True(t, FamilyStatusCanTransition(FamilyStatusPending, FamilyStatusApproved))
	assert.True(t, FamilyStatusCanTransition(FamilyStatusPending, FamilyStatusRejected))
	assert.True(t, FamilyStatusCanTransition(FamilyStatusApproved, FamilyStatusBlacklisted))

	// 不可回头
	assert.False(t, FamilyStatusCanTransition(FamilyStatusApproved, FamilyStatusPending))
	assert.False(t, FamilyStatusCanTransition(FamilyStatusRejected, FamilyStatusApproved))
	assert.False(t, FamilyStatusCanTransition(FamilyStatusBlacklisted, FamilyStatusApproved))
	assert.False(t, FamilyStatusCanTransition(FamilyStatusPending, FamilyStatusBlacklisted))
}

func TestMarkTargetKindValid(t *testing.T) {
	assert.True(t, MarkTargetKindValid(MarkTargetMember))
	assert.True(t, MarkTargetKindValid(MarkTargetLive))
	assert.True(t, MarkTargetKindValid(MarkTargetEvent))
	assert.False(t, MarkTargetKindValid("order"))
	assert.False(t, MarkTargetKindValid(""))
}

func TestParseVoteRule(t *testing.T) {
	activity := &Activity{
		Type: ActivityTypeVote,
		Rule: `{"prize_id":7,"awards":[{"from":1,"to":1,"award":{"type":"coin","value":1000}},{"from":2,"to":10,"award":{"type":"star","value":100}}]}`,
	}

	rule, err := activity.ParseVoteRule()
	assert.NoError(t, err)
	assert.Equal(t, int64(7), rule.PrizeID)
	assert.Len(t, rule.Awards, 2)
	assert.Equal(t, AwardTypeCoin, rule.Awards[0].Award.Type)
	assert.Equal(t, int64(1000), rule.Awards[0].Award.Value)
}

func TestParseRuleTypeMismatch(t *testing.T) {
	activity := &Activity{Type: ActivityTypeWatch, Rule: `{}`}

	_, err := activity.ParseVoteRule()
	assert.ErrorIs(t, err, ErrUnknownActivityType)

	_, err = activity.ParseDrawRule()
	assert.ErrorIs(t, err, ErrUnknownActivityType)
}

func TestParseDrawRule(t *testing.T) {
	activity := &Activity{
		Type: ActivityTypeDraw,
		Rule: `{"condition_code":"000002","condition_value":500,"awards":[{"type":"coin","value":10},{"type":"prize","value":1}]}`,
	}

	rule, err := activity.ParseDrawRule()
	assert.NoError(t, err)
	assert.Equal(t, "000002", rule.ConditionCode)
	assert.Equal(t, int64(500), rule.ConditionValue)
	assert.Len(t, rule.Awards, 2)
}

func TestParseDiamondRule(t *testing.T) {
	activity := &Activity{
		Type: ActivityTypeDiamond,
		Rule: `{"awards":[{"from":0,"to":999,"award":{"type":"star","value":10}},{"from":1000,"to":9999,"award":{"type":"coin","value":100}}]}`,
	}

	rule, err := activity.ParseDiamondRule()
	assert.NoError(t, err)
	assert.Len(t, rule.Awards, 2)
	assert.Equal(t, int64(1000), rule.Awards[1].From)
}

func TestParseRuleBadJSON(t *testing.T) {
	activity := &Activity{Type: ActivityTypeWatch, Rule: `{not json`}
	_, err := activity.ParseWatchRule()
	assert.Error(t, err)
}

func TestParseDrawRuleWeights(t *testing.T) {
	activity := &Activity{
		Type: ActivityTypeDraw,
		Rule: `{"condition_code":"000001","condition_value":100,"awards":[{"type":"coin","value":10,"weight":70},{"type":"prize","value":1,"weight":30}]}`,
	}

	rule, err := activity.ParseDrawRule()
	assert.NoError(t, err)
	assert.Equal(t, int64(70), rule.Awards[0].Weight)
	assert.Equal(t, int64(30), rule.Awards[1].Weight)
}

func TestSourceTagValid(t *testing.T) {
	for _, tag := range []string{SourceTagGeneric, SourceTagActivity, SourceTagStarBox, SourceTagVip} {
		assert.True(t, SourceTagValid(tag))
	}
	assert.False(t, SourceTagValid(""))
	assert.False(t, SourceTagValid("WAREHOUSE_X"))
	assert.False(t, SourceTagValid("generic"))
}
