package service

import (
	"context"
	"testing"
	"time"

	"livesystem/internal/model"
	"livesystem/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// fakeActivityStore 内存活动与参与记录
type fakeActivityStore struct {
	activity       *model.Activity
	participations []*model.ActivityParticipation
}

func (f *fakeActivityStore) GetByID(ctx context.Context, id int64) (*model.Activity, error) {
	if f.activity == nil || f.activity.ID != id {
		return nil, repository.ErrActivityNotFound
	}
	return f.activity, nil
}

func (f *fakeActivityStore) ListRunning(ctx context.Context, now time.Time) ([]*model.Activity, error) {
	return nil, nil
}

func (f *fakeActivityStore) ListUnsettledEnded(ctx context.Context, now time.Time) ([]*model.Activity, error) {
	return nil, nil
}

func (f *fakeActivityStore) CreateParticipation(ctx context.Context, tx *gorm.DB, p *model.ActivityParticipation) error {
	for _, existing := range f.participations {
		if existing.ActivityID == p.ActivityID && existing.UserID == p.UserID {
			return repository.ErrParticipationConflict
		}
	}
	p.ID = int64(len(f.participations) + 1)
	f.participations = append(f.participations, p)
	return nil
}

func (f *fakeActivityStore) MarkSettled(ctx context.Context, tx *gorm.DB, activityID int64) (bool, error) {
	if f.activity.IsSettle {
		return false, nil
	}
	f.activity.IsSettle = true
	return true, nil
}

func (f *fakeActivityStore) ListParticipations(ctx context.Context, activityID int64) ([]*model.ActivityParticipation, error) {
	return f.participations, nil
}

func (f *fakeActivityStore) MarkAwarded(ctx context.Context, tx *gorm.DB, participationID int64) error {
	for _, p := range f.participations {
		if p.ID == participationID {
			p.Awarded = true
		}
	}
	return nil
}

func TestPickAwardWeights(t *testing.T) {
	awards := []model.Award{
		{Type: model.AwardTypeCoin, Value: 1, Weight: 10},
		{Type: model.AwardTypeCoin, Value: 2, Weight: 30},
		{Type: model.AwardTypeCoin, Value: 3, Weight: 60},
	}

	cases := []struct {
		seed int64
		want int64
	}{
		{0, 1}, {9, 1},
		{10, 2}, {39, 2},
		{40, 3}, {99, 3},
		{100, 1}, // seed 对总权重取模
	}
	for _, c := range cases {
		assert.Equal(t, c.want, pickAward(awards, c.seed).Value, "seed=%d", c.seed)
	}
}

func TestPickAwardSkipsZeroWeight(t *testing.T) {
	awards := []model.Award{
		{Type: model.AwardTypeCoin, Value: 1},
		{Type: model.AwardTypeCoin, Value: 2, Weight: 5},
	}
	for seed := int64(0); seed < 5; seed++ {
		assert.Equal(t, int64(2), pickAward(awards, seed).Value)
	}
}

func TestPickAwardNoWeightsFallsBackUniform(t *testing.T) {
	awards := []model.Award{
		{Type: model.AwardTypeCoin, Value: 1},
		{Type: model.AwardTypeCoin, Value: 2},
		{Type: model.AwardTypeCoin, Value: 3},
	}
	assert.Equal(t, int64(2), pickAward(awards, 4).Value)
	assert.Equal(t, int64(1), pickAward(awards, 9).Value)
}

func TestConditionMetUnknownCode(t *testing.T) {
	svc := &ActivityService{}
	_, err := svc.conditionMet(context.Background(), 1, "999999", 10, time.Now(), time.Now())
	assert.ErrorIs(t, err, ErrUnknownCondition)
}

func TestParticipateClaimsDiamondBand(t *testing.T) {
	rule := `{"awards":[{"from":0,"to":99,"award":{"type":"coin","value":10}},{"from":100,"to":999,"award":{"type":"coin","value":50}}]}`
	store := &fakeActivityStore{
		activity: &model.Activity{
			ID:        1,
			Name:      "钻石达人",
			Type:      model.ActivityTypeDiamond,
			Rule:      rule,
			DateBegin: time.Now().Add(-time.Hour),
			DateEnd:   time.Now().Add(time.Hour),
		},
	}
	ledgerStore := newFakeLedgerStore()
	ledgerStore.setBalance(model.CurrencyDiamond, 8, 150)
	svc := &ActivityService{
		ledger:       &LedgerService{ledgerRepo: ledgerStore},
		activityRepo: store,
	}

	p, err := svc.Participate(context.Background(), 1, 8)
	assert.NoError(t, err)
	assert.NotNil(t, p.BandFrom)
	assert.Equal(t, int64(100), *p.BandFrom)
	assert.Equal(t, int64(999), *p.BandTo)

	// 重复报名被唯一键挡住
	_, err = svc.Participate(context.Background(), 1, 8)
	assert.ErrorIs(t, err, repository.ErrParticipationConflict)
}

func TestSettleDiamondAwardsClaimedBand(t *testing.T) {
	rule := `{"awards":[{"from":0,"to":99,"award":{"type":"coin","value":10}},{"from":100,"to":999,"award":{"type":"coin","value":50}}]}`
	from, to := int64(100), int64(999)
	store := &fakeActivityStore{
		activity: &model.Activity{ID: 1, Name: "钻石达人", Type: model.ActivityTypeDiamond, Rule: rule},
		participations: []*model.ActivityParticipation{
			{ID: 1, ActivityID: 1, UserID: 8, BandFrom: &from, BandTo: &to},
			{ID: 2, ActivityID: 1, UserID: 9}, // 报名时没够到任何档位
		},
	}
	ledgerStore := newFakeLedgerStore()
	// 结算时余额已掉出认领的档位，发奖仍按认领的档位走
	ledgerStore.setBalance(model.CurrencyDiamond, 8, 3)
	svc := &ActivityService{
		ledger:       &LedgerService{ledgerRepo: ledgerStore},
		activityRepo: store,
	}

	err := svc.Settle(context.Background(), 1)
	assert.NoError(t, err)
	assert.Len(t, ledgerStore.entries, 1)
	entry := ledgerStore.entries[0]
	assert.Equal(t, int64(8), *entry.DebitUserID)
	assert.True(t, decimal.NewFromInt(50).Equal(entry.Amount))
	assert.True(t, store.participations[0].Awarded)
	assert.False(t, store.participations[1].Awarded)
}

func TestSettleTwiceIsIdempotent(t *testing.T) {
	rule := `{"awards":[{"from":0,"to":999,"award":{"type":"coin","value":10}}]}`
	from, to := int64(0), int64(999)
	store := &fakeActivityStore{
		activity: &model.Activity{ID: 1, Name: "钻石达人", Type: model.ActivityTypeDiamond, Rule: rule},
		participations: []*model.ActivityParticipation{
			{ID: 1, ActivityID: 1, UserID: 8, BandFrom: &from, BandTo: &to},
		},
	}
	ledgerStore := newFakeLedgerStore()
	svc := &ActivityService{
		ledger:       &LedgerService{ledgerRepo: ledgerStore},
		activityRepo: store,
	}

	assert.NoError(t, svc.Settle(context.Background(), 1))
	assert.Len(t, ledgerStore.entries, 1)

	// 第二次结算抢不到 is_settle 翻转，一条流水都不会再追加
	err := svc.Settle(context.Background(), 1)
	assert.ErrorIs(t, err, repository.ErrActivitySettled)
	assert.Len(t, ledgerStore.entries, 1)
}
