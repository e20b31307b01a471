package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"livesystem/internal/model"
	"livesystem/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestWindowStartDaily(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 42, 7, 0, time.Local)
	begin := windowStart(model.RankDurationDaily, now)
	assert.NotNil(t, begin)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local), *begin)
}

func TestWindowStartWeekly(t *testing.T) {
	// 2026-08-31 是周一
	monday := time.Date(2026, 8, 31, 10, 0, 0, 0, time.Local)
	begin := windowStart(model.RankDurationWeekly, monday)
	assert.NotNil(t, begin)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local), *begin)

	// 周日算上一周
	sunday := time.Date(2026, 9, 6, 23, 59, 0, 0, time.Local)
	begin = windowStart(model.RankDurationWeekly, sunday)
	assert.NotNil(t, begin)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local), *begin)

	wednesday := time.Date(2026, 9, 2, 8, 0, 0, 0, time.Local)
	begin = windowStart(model.RankDurationWeekly, wednesday)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local), *begin)
}

func TestWindowStartTotal(t *testing.T) {
	assert.Nil(t, windowStart(model.RankDurationTotal, time.Now()))
}

// fakeRankStore 内存榜单行，键 user|duration
type fakeRankStore struct {
	rows map[string]*model.RankRecord
}

func rankKey(userID int64, duration string) string {
	return fmt.Sprintf("%d|%s", userID, duration)
}

func (f *fakeRankStore) Upsert(ctx context.Context, tx *gorm.DB, record *model.RankRecord) error {
	f.rows[rankKey(record.UserID, record.Duration)] = record
	return nil
}

func (f *fakeRankStore) DeleteByDuration(ctx context.Context, tx *gorm.DB, duration string) error {
	for key, row := range f.rows {
		if row.Duration == duration {
			delete(f.rows, key)
		}
	}
	return nil
}

func (f *fakeRankStore) ListTop(ctx context.Context, duration, metric string, limit int) ([]*model.RankRecord, error) {
	return nil, nil
}

func (f *fakeRankStore) GetByUser(ctx context.Context, userID int64, duration string) (*model.RankRecord, error) {
	return f.rows[rankKey(userID, duration)], nil
}

type fakeRankLedger struct {
	debits  map[model.Currency][]repository.UserAmount
	credits map[model.Currency][]repository.UserAmount
}

func (f *fakeRankLedger) AggregateDebitByUser(ctx context.Context, kind model.Currency, typeTag string, from *time.Time) ([]repository.UserAmount, error) {
	return f.debits[kind], nil
}

func (f *fakeRankLedger) AggregateCreditByUser(ctx context.Context, kind model.Currency, typeTag string, from *time.Time) ([]repository.UserAmount, error) {
	return f.credits[kind], nil
}

func (f *fakeRankLedger) SumDebitByLiveSince(ctx context.Context, kind model.Currency, liveID int64, from time.Time) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func TestRecalcDurationClearsStaleRows(t *testing.T) {
	store := &fakeRankStore{rows: map[string]*model.RankRecord{
		rankKey(1, model.RankDurationDaily): {UserID: 1, Duration: model.RankDurationDaily, ReceivedDiamond: decimal.NewFromInt(999)},
		rankKey(2, model.RankDurationDaily): {UserID: 2, Duration: model.RankDurationDaily, ReceivedDiamond: decimal.NewFromInt(777)},
		rankKey(2, model.RankDurationTotal): {UserID: 2, Duration: model.RankDurationTotal, ReceivedDiamond: decimal.NewFromInt(777)},
	}}
	ledger := &fakeRankLedger{
		debits: map[model.Currency][]repository.UserAmount{
			model.CurrencyDiamond: {{UserID: 1, Amount: decimal.NewFromInt(30)}},
		},
	}
	svc := &RankService{rankRepo: store, ledgerRepo: ledger}

	err := svc.recalcDuration(context.Background(), model.RankDurationDaily, nil)
	assert.NoError(t, err)

	// 新窗口里没流水的用户 2 当日行被清掉，不残留上一窗口的值
	row, _ := store.GetByUser(context.Background(), 2, model.RankDurationDaily)
	assert.Nil(t, row)

	row, _ = store.GetByUser(context.Background(), 1, model.RankDurationDaily)
	assert.NotNil(t, row)
	assert.True(t, decimal.NewFromInt(30).Equal(row.ReceivedDiamond))

	// 别的周期不受影响
	row, _ = store.GetByUser(context.Background(), 2, model.RankDurationTotal)
	assert.NotNil(t, row)
}

func TestHotRating(t *testing.T) {
	assert.Equal(t, int64(177), hotRating(decimal.NewFromInt(120), 5, 7))
	assert.Equal(t, int64(0), hotRating(decimal.Zero, 0, 0))
	// 点赞数直接进热度
	assert.Equal(t, int64(42), hotRating(decimal.Zero, 0, 42))
}
