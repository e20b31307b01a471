package job

import (
	"testing"
	"time"

	"livesystem/internal/config"
	"livesystem/internal/service"
	"livesystem/internal/ws"

	"github.com/stretchr/testify/assert"
)

func newTestScheduler() *Scheduler {
	cfg := &config.Config{}
	ledgerSvc := service.NewLedgerService(nil, cfg, nil)
	liveSvc := service.NewLiveService(nil, cfg, ws.NewHub(), ledgerSvc)
	rankSvc := service.NewRankService(nil, cfg)
	activitySvc := service.NewActivityService(nil, cfg, ledgerSvc)
	vipSvc := service.NewVipService(nil, cfg)
	return NewScheduler(nil, cfg, nil, liveSvc, rankSvc, activitySvc, vipSvc)
}

func TestRegistryCoversAllMethods(t *testing.T) {
	s := newTestScheduler()

	methods := []string{
		MethodUpdateRankRecord,
		MethodUpdateLiveHotRanking,
		MethodUpdateLiveEnd,
		MethodUpdateLiveLogLeave,
		MethodUpdateMemberCheckHistory,
		MethodSettleActivity,
		MethodChangeVipLevel,
	}
	assert.Len(t, s.registry, len(methods))
	for _, method := range methods {
		spec, ok := s.registry[method]
		assert.True(t, ok, "方法 %s 未注册", method)
		assert.NotNil(t, spec.run)
		assert.NotNil(t, spec.next)
	}
}

func TestRegistryNextAlwaysFuture(t *testing.T) {
	s := newTestScheduler()

	now := time.Date(2026, 8, 31, 12, 30, 0, 0, time.Local)
	for method, spec := range s.registry {
		assert.True(t, spec.next(now).After(now), "方法 %s 下一期不在未来", method)
	}
}

func TestNextMidnightBoundary(t *testing.T) {
	s := newTestScheduler()

	// 23:59 的下一期是次日零点，不是隔天
	now := time.Date(2026, 8, 31, 23, 59, 0, 0, time.Local)
	next := s.registry[MethodSettleActivity].next(now)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local), next)

	// 零点整的下一期是明天零点
	midnight := time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local)
	next = s.registry[MethodSettleActivity].next(midnight)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local), next)
}
