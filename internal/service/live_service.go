package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"livesystem/internal/config"
	"livesystem/internal/model"
	"livesystem/internal/repository"
	"livesystem/internal/ws"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrLivePassword = errors.New("房间密码错误")
	ErrLiveFull     = errors.New("房间人数已满")
	ErrLiveSilenced = errors.New("您已被禁言")
)

type LiveService struct {
	db         *gorm.DB
	cfg        *config.Config
	hub        *ws.Hub
	liveRepo   *repository.LiveRepository
	memberRepo *repository.MemberRepository
	ledger     *LedgerService
}

func NewLiveService(db *gorm.DB, cfg *config.Config, hub *ws.Hub, ledger *LedgerService) *LiveService {
	return &LiveService{
		db:         db,
		cfg:        cfg,
		hub:        hub,
		liveRepo:   repository.NewLiveRepository(db),
		memberRepo: repository.NewMemberRepository(db),
		ledger:     ledger,
	}
}

// CreateLive 开播
func (s *LiveService) CreateLive(ctx context.Context, live *model.Live) (*model.Live, error) {
	live.LastActiveAt = time.Now()
	if err := s.liveRepo.Create(ctx, live); err != nil {
		return nil, err
	}
	if s.cfg.Stream.PushURLFormat != "" {
		live.PushURL = fmt.Sprintf(s.cfg.Stream.PushURLFormat, live.ID)
	}
	return live, nil
}

// GetLive 查房间详情
func (s *LiveService) GetLive(ctx context.Context, liveID int64) (*model.Live, error) {
	return s.liveRepo.GetByID(ctx, liveID)
}

// PlayURL 观看地址
func (s *LiveService) PlayURL(liveID int64) string {
	if s.cfg.Stream.PlayURLFormat == "" {
		return ""
	}
	return fmt.Sprintf(s.cfg.Stream.PlayURLFormat, liveID)
}

// ListActive 在播列表，热度倒序
func (s *LiveService) ListActive(ctx context.Context) ([]*model.Live, error) {
	return s.liveRepo.ListActive(ctx)
}

// List 分页查询，query 已带过滤条件
func (s *LiveService) List(ctx context.Context, query *gorm.DB, page, pageSize int) ([]*model.Live, int64, error) {
	return s.liveRepo.List(ctx, query, page, pageSize)
}

// Enter 进房
// 密码房验密码，限员房验在房人数；重进房只刷新 entered_at，duration 不动
func (s *LiveService) Enter(ctx context.Context, userID, liveID int64, password string) (*model.LiveWatchLog, error) {
	live, err := s.liveRepo.GetActiveByID(ctx, liveID)
	if err != nil {
		return nil, err
	}

	if live.Password != "" && live.Password != password {
		return nil, ErrLivePassword
	}
	if live.Quota != nil {
		count, err := s.liveRepo.CountActiveViewers(ctx, liveID)
		if err != nil {
			return nil, err
		}
		if count >= int64(*live.Quota) {
			return nil, ErrLiveFull
		}
	}

	watchLog, err := s.liveRepo.UpsertWatchLog(ctx, userID, liveID, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.liveRepo.Touch(ctx, liveID); err != nil {
		return nil, err
	}

	s.hub.Publish(&ws.Event{Type: "enter", LiveID: liveID, UserID: userID})
	return watchLog, nil
}

// Leave 离房：left_at 与累加后的 duration 同事务一次写入
func (s *LiveService) Leave(ctx context.Context, userID, liveID int64) error {
	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		watchLog, err := s.liveRepo.GetWatchLogForUpdate(ctx, tx, userID, liveID)
		if err != nil {
			return err
		}
		if watchLog.LeftAt != nil {
			// 已离场，重复提交当成功
			return nil
		}
		minutes := int(now.Sub(watchLog.EnteredAt).Minutes())
		if minutes < 0 {
			minutes = 0
		}
		return s.liveRepo.UpdateWatchLogLeave(ctx, tx, watchLog.ID, now, watchLog.Duration+minutes)
	})
	if err != nil {
		return err
	}

	s.hub.Publish(&ws.Event{Type: "leave", LiveID: liveID, UserID: userID})
	return nil
}

// End 收播，幂等：第一次调用生效，之后都是空操作
// 生效那次给主播记一笔经验流水并广播 live_end
func (s *LiveService) End(ctx context.Context, liveID int64) error {
	live, err := s.liveRepo.GetByID(ctx, liveID)
	if err != nil {
		return err
	}

	now := time.Now()
	var ended bool
	err = s.db.Transaction(func(tx *gorm.DB) error {
		ended, err = s.liveRepo.End(ctx, tx, liveID, now)
		if err != nil {
			return err
		}
		if !ended {
			return nil
		}

		// 开播时长折算经验星
		minutes := int64(now.Sub(live.CreatedAt).Minutes())
		if minutes <= 0 {
			return nil
		}
		_, err = s.ledger.Transfer(ctx, tx, &TransferInput{
			Kind:        model.CurrencyStar,
			DebitUserID: &live.AuthorID,
			Amount:      decimal.NewFromInt(minutes),
			Type:        model.LedgerTypeExperience,
			Remark:      fmt.Sprintf("直播结算 live=%d", liveID),
			LiveID:      &liveID,
		})
		return err
	})
	if err != nil {
		return err
	}

	if ended {
		s.hub.Publish(&ws.Event{Type: "live_end", LiveID: liveID})
	}
	return nil
}

// Like 点赞，同时刷新活跃时间
func (s *LiveService) Like(ctx context.Context, userID, liveID int64, count int64) error {
	if count <= 0 {
		count = 1
	}
	if _, err := s.liveRepo.GetActiveByID(ctx, liveID); err != nil {
		return err
	}
	if err := s.liveRepo.AddLikes(ctx, liveID, count); err != nil {
		return err
	}
	if err := s.liveRepo.Touch(ctx, liveID); err != nil {
		return err
	}
	s.hub.Publish(&ws.Event{Type: "like", LiveID: liveID, UserID: userID, Payload: count})
	return nil
}

// SendBarrage 发弹幕，禁言观众拒绝
func (s *LiveService) SendBarrage(ctx context.Context, userID, liveID int64, barrageType, content string) (*model.LiveBarrage, error) {
	if _, err := s.liveRepo.GetActiveByID(ctx, liveID); err != nil {
		return nil, err
	}

	watchLog, err := s.liveRepo.GetWatchLog(ctx, userID, liveID)
	if err != nil {
		return nil, err
	}
	if watchLog.SpeakStatus == model.SpeakStatusSilent {
		return nil, ErrLiveSilenced
	}

	barrage := &model.LiveBarrage{
		LiveID:  liveID,
		UserID:  userID,
		Type:    barrageType,
		Content: content,
	}
	if err := s.liveRepo.CreateBarrage(ctx, barrage); err != nil {
		return nil, err
	}
	if err := s.liveRepo.Touch(ctx, liveID); err != nil {
		return nil, err
	}

	s.hub.Publish(&ws.Event{Type: "barrage", LiveID: liveID, UserID: userID, Payload: barrage})
	return barrage, nil
}

// Comment 评论，要求已有观看记录
func (s *LiveService) Comment(ctx context.Context, userID, liveID int64, content string) (*model.LiveComment, error) {
	watchLog, err := s.liveRepo.GetWatchLog(ctx, userID, liveID)
	if err != nil {
		return nil, err
	}

	comment := &model.LiveComment{
		LiveID:     liveID,
		WatchLogID: watchLog.ID,
		UserID:     userID,
		Content:    content,
	}
	if err := s.liveRepo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListBarrages 房间弹幕
func (s *LiveService) ListBarrages(ctx context.Context, liveID int64, limit int) ([]*model.LiveBarrage, error) {
	return s.liveRepo.ListBarrages(ctx, liveID, limit)
}

// ListComments 房间评论
func (s *LiveService) ListComments(ctx context.Context, liveID int64, limit int) ([]*model.LiveComment, error) {
	return s.liveRepo.ListComments(ctx, liveID, false, limit)
}
