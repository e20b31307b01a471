package service

import (
	"context"
	"fmt"
	"testing"

	"livesystem/internal/config"
	"livesystem/internal/model"
	"livesystem/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// fakeLedgerStore 内存流水账，余额随 Insert 同步推导
type fakeLedgerStore struct {
	balances map[string]decimal.Decimal
	entries  []*model.LedgerEntry
	locked   []int64
}

func newFakeLedgerStore() *fakeLedgerStore {
	return &fakeLedgerStore{balances: make(map[string]decimal.Decimal)}
}

func balKey(kind model.Currency, userID int64) string {
	return fmt.Sprintf("%s|%d", kind, userID)
}

func (f *fakeLedgerStore) setBalance(kind model.Currency, userID, amount int64) {
	f.balances[balKey(kind, userID)] = decimal.NewFromInt(amount)
}

func (f *fakeLedgerStore) LockMember(ctx context.Context, tx *gorm.DB, userID int64) error {
	f.locked = append(f.locked, userID)
	return nil
}

func (f *fakeLedgerStore) Balance(ctx context.Context, tx *gorm.DB, kind model.Currency, userID int64, sourceTag string) (decimal.Decimal, error) {
	return f.balances[balKey(kind, userID)], nil
}

func (f *fakeLedgerStore) Insert(ctx context.Context, tx *gorm.DB, kind model.Currency, entry *model.LedgerEntry) error {
	entry.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, entry)
	if entry.DebitUserID != nil {
		key := balKey(kind, *entry.DebitUserID)
		f.balances[key] = f.balances[key].Add(entry.Amount)
	}
	if entry.CreditUserID != nil {
		key := balKey(kind, *entry.CreditUserID)
		f.balances[key] = f.balances[key].Sub(entry.Amount)
	}
	return nil
}

func (f *fakeLedgerStore) ListByUser(ctx context.Context, kind model.Currency, userID int64, page, pageSize int) ([]*model.LedgerEntry, int64, error) {
	return nil, 0, nil
}

func TestTransferInsufficientFunds(t *testing.T) {
	store := newFakeLedgerStore()
	store.setBalance(model.CurrencyCoin, 1, 50)
	svc := &LedgerService{ledgerRepo: store}

	userID := int64(1)
	_, err := svc.Transfer(context.Background(), nil, &TransferInput{
		Kind:         model.CurrencyCoin,
		CreditUserID: &userID,
		Amount:       decimal.NewFromInt(100),
		Type:         model.LedgerTypeGiftPurchase,
	})
	assert.ErrorIs(t, err, repository.ErrInsufficientFunds)
	// 拒绝发生在落账之前，余额分文未动
	assert.Empty(t, store.entries)
	assert.True(t, decimal.NewFromInt(50).Equal(store.balances[balKey(model.CurrencyCoin, 1)]))
	// 验余额前先锁了出账方
	assert.Equal(t, []int64{1}, store.locked)
}

func TestTransferPlatformDebitSkipsBalanceCheck(t *testing.T) {
	store := newFakeLedgerStore()
	svc := &LedgerService{ledgerRepo: store}

	userID := int64(7)
	entry, err := svc.Transfer(context.Background(), nil, &TransferInput{
		Kind:        model.CurrencyDiamond,
		DebitUserID: &userID,
		Amount:      decimal.NewFromInt(40),
		Type:        model.LedgerTypeGiftIncome,
	})
	assert.NoError(t, err)
	assert.NotNil(t, entry)
	assert.Empty(t, store.locked)
	assert.True(t, decimal.NewFromInt(40).Equal(store.balances[balKey(model.CurrencyDiamond, 7)]))
}

func TestTransferRejectsBadInput(t *testing.T) {
	store := newFakeLedgerStore()
	svc := &LedgerService{ledgerRepo: store}
	userID := int64(1)

	_, err := svc.Transfer(context.Background(), nil, &TransferInput{
		Kind:        model.Currency("shell"),
		DebitUserID: &userID,
		Amount:      decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, repository.ErrUnknownCurrency)

	_, err = svc.Transfer(context.Background(), nil, &TransferInput{
		Kind:        model.CurrencyCoin,
		DebitUserID: &userID,
		Amount:      decimal.Zero,
	})
	assert.ErrorIs(t, err, repository.ErrInvalidAmount)
	assert.Empty(t, store.entries)
}

func exchangeConfig(coinPerDiamond float64) *config.Config {
	cfg := &config.Config{}
	cfg.Business.CoinPerDiamond = coinPerDiamond
	return cfg
}

func TestExchangeDiamondToCoin(t *testing.T) {
	store := newFakeLedgerStore()
	store.setBalance(model.CurrencyDiamond, 1, 100)
	svc := &LedgerService{cfg: exchangeConfig(2), ledgerRepo: store}

	got, err := svc.Exchange(context.Background(), 1, model.CurrencyDiamond, decimal.NewFromInt(10))
	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(20).Equal(got))
	assert.Len(t, store.entries, 2)
	assert.True(t, decimal.NewFromInt(90).Equal(store.balances[balKey(model.CurrencyDiamond, 1)]))
	assert.True(t, decimal.NewFromInt(20).Equal(store.balances[balKey(model.CurrencyCoin, 1)]))
}

func TestExchangeCoinToDiamond(t *testing.T) {
	store := newFakeLedgerStore()
	store.setBalance(model.CurrencyCoin, 1, 100)
	svc := &LedgerService{cfg: exchangeConfig(2), ledgerRepo: store}

	got, err := svc.Exchange(context.Background(), 1, model.CurrencyCoin, decimal.NewFromInt(10))
	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5).Equal(got))
	assert.True(t, decimal.NewFromInt(90).Equal(store.balances[balKey(model.CurrencyCoin, 1)]))
	assert.True(t, decimal.NewFromInt(5).Equal(store.balances[balKey(model.CurrencyDiamond, 1)]))
}

func TestExchangeUnsupportedPair(t *testing.T) {
	svc := &LedgerService{cfg: exchangeConfig(1), ledgerRepo: newFakeLedgerStore()}

	_, err := svc.Exchange(context.Background(), 1, model.CurrencyStar, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, ErrExchangePair)
}

func TestExchangeInsufficientFunds(t *testing.T) {
	store := newFakeLedgerStore()
	store.setBalance(model.CurrencyDiamond, 1, 5)
	svc := &LedgerService{cfg: exchangeConfig(1), ledgerRepo: store}

	_, err := svc.Exchange(context.Background(), 1, model.CurrencyDiamond, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, repository.ErrInsufficientFunds)
	assert.Empty(t, store.entries)
}
