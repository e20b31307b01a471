package job

import (
	"context"
	"fmt"
	"log"
	"time"

	"livesystem/internal/config"
	"livesystem/internal/infrastructure/lock"
	"livesystem/internal/model"
	"livesystem/internal/repository"
	"livesystem/internal/service"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// 延时任务方法名，闭合注册表，库里出现表外方法按失败处理
const (
	MethodUpdateRankRecord         = "update_rank_record"
	MethodUpdateLiveHotRanking     = "update_live_hot_ranking"
	MethodUpdateLiveEnd            = "update_live_end"
	MethodUpdateLiveLogLeave       = "update_live_log_leave"
	MethodUpdateMemberCheckHistory = "update_member_check_history"
	MethodSettleActivity           = "settle_activity"
	MethodChangeVipLevel           = "change_vip_level"
)

// taskSpec 执行器 + 下次入队时刻
type taskSpec struct {
	run  func(ctx context.Context) error
	next func(now time.Time) time.Time
}

// Scheduler 持久化延时任务调度器
// 任务行落库，tick 拉到期行执行；多实例靠 Redis 租约互斥；
// 周期任务执行完自己把下一期入队（同方法已有未来行则跳过）
type Scheduler struct {
	db         *gorm.DB
	cfg        *config.Config
	redis      *redis.Client
	taskRepo   *repository.TaskRepository
	liveRepo   *repository.LiveRepository
	memberRepo *repository.MemberRepository
	liveSvc    *service.LiveService
	rankSvc    *service.RankService
	activity   *service.ActivityService
	vip        *service.VipService
	registry   map[string]taskSpec
	instanceID string
	stopCh     chan struct{}
}

func NewScheduler(
	db *gorm.DB,
	cfg *config.Config,
	rdb *redis.Client,
	liveSvc *service.LiveService,
	rankSvc *service.RankService,
	activity *service.ActivityService,
	vip *service.VipService,
) *Scheduler {
	s := &Scheduler{
		db:         db,
		cfg:        cfg,
		redis:      rdb,
		taskRepo:   repository.NewTaskRepository(db),
		liveRepo:   repository.NewLiveRepository(db),
		memberRepo: repository.NewMemberRepository(db),
		liveSvc:    liveSvc,
		rankSvc:    rankSvc,
		activity:   activity,
		vip:        vip,
		instanceID: fmt.Sprintf("scheduler-%d", time.Now().UnixNano()),
		stopCh:     make(chan struct{}),
	}

	every := func(d time.Duration) func(time.Time) time.Time {
		return func(now time.Time) time.Time { return now.Add(d) }
	}
	nextMidnight := func(now time.Time) time.Time {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	}

	s.registry = map[string]taskSpec{
		MethodUpdateRankRecord:         {run: s.rankSvc.RecalcAll, next: every(15 * time.Minute)},
		MethodUpdateLiveHotRanking:     {run: s.rankSvc.RecalcHotRating, next: every(time.Minute)},
		MethodUpdateLiveEnd:            {run: s.endIdleLives, next: every(time.Minute)},
		MethodUpdateLiveLogLeave:       {run: s.closeStaleWatchLogs, next: every(time.Minute)},
		MethodUpdateMemberCheckHistory: {run: s.rollMemberCheckHistory, next: nextMidnight},
		MethodSettleActivity:           {run: s.activity.SettleAll, next: nextMidnight},
		MethodChangeVipLevel:           {run: s.vip.RecalcAll, next: every(30 * 24 * time.Hour)},
	}
	return s
}

// Bootstrap 启动时保证每个周期方法都有一条未来的 PLANNED 行
func (s *Scheduler) Bootstrap(ctx context.Context) error {
	now := time.Now()
	for method, spec := range s.registry {
		has, err := s.taskRepo.HasFuturePlanned(ctx, method, now)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if err := s.taskRepo.Create(ctx, nil, &model.PlannedTask{
			Method:    method,
			Args:      "[]",
			Kwargs:    "{}",
			PlannedAt: spec.next(now),
			Status:    model.TaskStatusPlanned,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) Start(ctx context.Context) {
	log.Println("[Scheduler] 调度器启动")

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[Scheduler] 收到停止信号，调度器退出")
			return
		case <-s.stopCh:
			log.Println("[Scheduler] 调度器停止")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) Stop() {
	close(s.stopCh)
}

// tick 抢租约的实例执行本轮到期任务，其余实例空转
func (s *Scheduler) tick(ctx context.Context) {
	lease := lock.NewSchedulerLease(s.redis, s.instanceID, 25*time.Second)
	acquired, err := lease.TryLock(ctx)
	if err != nil {
		log.Printf("[Scheduler] 租约获取失败: %v", err)
		return
	}
	if !acquired {
		return
	}
	defer lease.Unlock(ctx)

	tasks, err := s.taskRepo.ListDue(ctx, time.Now(), 50)
	if err != nil {
		log.Printf("[Scheduler] 查询到期任务失败: %v", err)
		return
	}

	for _, task := range tasks {
		s.execute(ctx, task)
	}
}

func (s *Scheduler) execute(ctx context.Context, task *model.PlannedTask) {
	spec, ok := s.registry[task.Method]
	now := time.Now()

	if !ok {
		log.Printf("[Scheduler] 未注册的任务方法: id=%d method=%s", task.ID, task.Method)
		if err := s.taskRepo.MarkFail(ctx, task.ID, now, "未注册的任务方法"); err != nil {
			log.Printf("[Scheduler] 标记失败状态失败: id=%d err=%v", task.ID, err)
		}
		return
	}

	if err := spec.run(ctx); err != nil {
		log.Printf("[Scheduler] 任务执行失败: id=%d method=%s err=%v", task.ID, task.Method, err)
		if markErr := s.taskRepo.MarkFail(ctx, task.ID, time.Now(), err.Error()); markErr != nil {
			log.Printf("[Scheduler] 标记失败状态失败: id=%d err=%v", task.ID, markErr)
		}
	} else {
		if markErr := s.taskRepo.MarkDone(ctx, task.ID, time.Now()); markErr != nil {
			log.Printf("[Scheduler] 标记完成状态失败: id=%d err=%v", task.ID, markErr)
		}
	}

	// 周期任务自续期，无论本次成败
	s.reenqueue(ctx, task.Method, spec)
}

func (s *Scheduler) reenqueue(ctx context.Context, method string, spec taskSpec) {
	now := time.Now()
	has, err := s.taskRepo.HasFuturePlanned(ctx, method, now)
	if err != nil {
		log.Printf("[Scheduler] 自续期查询失败: method=%s err=%v", method, err)
		return
	}
	if has {
		return
	}
	if err := s.taskRepo.Create(ctx, nil, &model.PlannedTask{
		Method:    method,
		Args:      "[]",
		Kwargs:    "{}",
		PlannedAt: spec.next(now),
		Status:    model.TaskStatusPlanned,
	}); err != nil {
		log.Printf("[Scheduler] 自续期入队失败: method=%s err=%v", method, err)
	}
}

// ============================================================
// 扫描型执行器
// ============================================================

// endIdleLives 超过阈值无动静的在播房间逐个收播
func (s *Scheduler) endIdleLives(ctx context.Context) error {
	idleBefore := time.Now().Add(-time.Duration(s.cfg.Business.LiveIdleEndMinutes) * time.Minute)
	lives, err := s.liveRepo.ListIdleActive(ctx, idleBefore, 100)
	if err != nil {
		return err
	}
	for _, live := range lives {
		if err := s.liveSvc.End(ctx, live.ID); err != nil {
			log.Printf("[Scheduler] 超时收播失败: live=%d err=%v", live.ID, err)
		}
	}
	return nil
}

// closeStaleWatchLogs 已收播房间里还挂着的观看记录补离场
func (s *Scheduler) closeStaleWatchLogs(ctx context.Context) error {
	logs, err := s.liveRepo.ListOpenWatchLogs(ctx, 500)
	if err != nil {
		return err
	}
	for _, watchLog := range logs {
		live, err := s.liveRepo.GetByID(ctx, watchLog.LiveID)
		if err != nil {
			log.Printf("[Scheduler] 观看记录补离场查房失败: log=%d err=%v", watchLog.ID, err)
			continue
		}
		if live.EndedAt == nil {
			continue
		}
		if err := s.liveSvc.Leave(ctx, watchLog.UserID, watchLog.LiveID); err != nil {
			log.Printf("[Scheduler] 观看记录补离场失败: log=%d err=%v", watchLog.ID, err)
		}
	}
	return nil
}

// rollMemberCheckHistory 按日滚动生成会员状态快照，已有当日快照的跳过
func (s *Scheduler) rollMemberCheckHistory(ctx context.Context) error {
	now := time.Now()
	dayEnd := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayBegin := dayEnd.AddDate(0, 0, -1)
	date := dayBegin.Format("2006-01-02")

	userIDs, err := s.memberRepo.ListActiveUserIDs(ctx)
	if err != nil {
		return err
	}

	for _, userID := range userIDs {
		exists, err := s.memberRepo.CheckHistoryExists(ctx, userID, date)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		minutes, liveCount, err := s.liveRepo.SumWatchMinutesOn(ctx, userID, dayBegin, dayEnd)
		if err != nil {
			return err
		}
		if err := s.memberRepo.CreateCheckHistory(ctx, &model.MemberCheckHistory{
			UserID:       userID,
			Date:         date,
			WatchMinutes: minutes,
			LiveCount:    int(liveCount),
		}); err != nil {
			log.Printf("[Scheduler] 快照写入失败: user=%d date=%s err=%v", userID, date, err)
		}
	}
	return nil
}
