package service

import (
	"context"
	"crypto/md5"
	"fmt"
	"strings"
	"testing"

	"livesystem/internal/config"
	"livesystem/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func signFor(n *RechargeNotify, secret string) string {
	raw := fmt.Sprintf("%s%s%s%s%d%s", n.Account, n.Platform, n.OrderID, n.IMoney.String(), n.Time, secret)
	return strings.ToUpper(fmt.Sprintf("%x", md5.Sum([]byte(raw))))
}

func TestVerifySign(t *testing.T) {
	notify := &RechargeNotify{
		Account:  "13800138000",
		Platform: "ios",
		OrderID:  "ORD20260831001",
		IMoney:   decimal.NewFromInt(100),
		Time:     1756600000,
	}
	secret := "test-secret"
	notify.Sign = signFor(notify, secret)

	assert.True(t, VerifySign(notify, secret))

	// 小写签名同样接受
	notify.Sign = strings.ToLower(notify.Sign)
	assert.True(t, VerifySign(notify, secret))
}

func TestVerifySignTampered(t *testing.T) {
	notify := &RechargeNotify{
		Account:  "13800138000",
		Platform: "ios",
		OrderID:  "ORD20260831001",
		IMoney:   decimal.NewFromInt(100),
		Time:     1756600000,
	}
	secret := "test-secret"
	notify.Sign = signFor(notify, secret)

	// 改金额后签名失效
	notify.IMoney = decimal.NewFromInt(100000)
	assert.False(t, VerifySign(notify, secret))
}

type fakeRechargeStore struct {
	orders   map[string]bool
	payments []*model.PaymentRecord
}

func (f *fakeRechargeStore) OrderExists(ctx context.Context, orderID string) (bool, error) {
	return f.orders[orderID], nil
}

func (f *fakeRechargeStore) CreatePayment(ctx context.Context, tx *gorm.DB, p *model.PaymentRecord) error {
	f.payments = append(f.payments, p)
	f.orders[p.OrderID] = true
	return nil
}

func (f *fakeRechargeStore) CreateRecharge(ctx context.Context, tx *gorm.DB, r *model.RechargeRecord) error {
	return nil
}

func (f *fakeRechargeStore) ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]*model.RechargeRecord, int64, error) {
	return nil, 0, nil
}

func TestHandleNotifyDuplicateOrder(t *testing.T) {
	secret := "test-secret"
	cfg := &config.Config{}
	cfg.Business.RechargeSecret = secret

	store := &fakeRechargeStore{orders: map[string]bool{"ORD-DUP": true}}
	svc := &RechargeService{cfg: cfg, rechargeRepo: store}

	notify := &RechargeNotify{
		Account:  "13800138000",
		Platform: "ios",
		OrderID:  "ORD-DUP",
		IMoney:   decimal.NewFromInt(100),
		Time:     1756600000,
	}
	notify.Sign = signFor(notify, secret)

	// 同一 orderid 的重复回调不再入账，只报告重复
	duplicate, err := svc.HandleNotify(context.Background(), notify)
	assert.NoError(t, err)
	assert.True(t, duplicate)
	assert.Empty(t, store.payments)
}

func TestHandleNotifyBadSign(t *testing.T) {
	cfg := &config.Config{}
	cfg.Business.RechargeSecret = "test-secret"
	svc := &RechargeService{cfg: cfg, rechargeRepo: &fakeRechargeStore{orders: map[string]bool{}}}

	notify := &RechargeNotify{
		Account: "13800138000",
		OrderID: "ORD1",
		IMoney:  decimal.NewFromInt(100),
		Sign:    "BOGUS",
	}
	_, err := svc.HandleNotify(context.Background(), notify)
	assert.ErrorIs(t, err, ErrRechargeSign)
}

func TestVerifySignWrongSecret(t *testing.T) {
	notify := &RechargeNotify{
		Account:  "13800138000",
		Platform: "android",
		OrderID:  "ORD1",
		IMoney:   decimal.NewFromFloat(9.99),
		Time:     1756600000,
	}
	notify.Sign = signFor(notify, "secret-a")

	assert.False(t, VerifySign(notify, "secret-b"))
}
