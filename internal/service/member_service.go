package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"livesystem/internal/config"
	"livesystem/internal/infrastructure/cache"
	"livesystem/internal/infrastructure/sms"
	"livesystem/internal/model"
	"livesystem/internal/repository"
	"livesystem/pkg/idgen"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

var (
	ErrVcodeCooldown  = errors.New("验证码发送过于频繁，请稍后再试")
	ErrVcodeMismatch  = errors.New("验证码错误或已过期")
	ErrWrongPassword  = errors.New("用户名或密码错误")
	ErrMemberDisabled = errors.New("账号已停用")
)

type MemberService struct {
	db         *gorm.DB
	cfg        *config.Config
	redis      *redis.Client
	smsClient  *sms.Client
	memberRepo *repository.MemberRepository
}

func NewMemberService(db *gorm.DB, cfg *config.Config, rdb *redis.Client, smsClient *sms.Client) *MemberService {
	return &MemberService{
		db:         db,
		cfg:        cfg,
		redis:      rdb,
		smsClient:  smsClient,
		memberRepo: repository.NewMemberRepository(db),
	}
}

func hashPassword(username, password string) string {
	sum := sha256.Sum256([]byte(username + ":" + password))
	return hex.EncodeToString(sum[:])
}

// SendVcode 下发注册/登录验证码，冷却窗口内重复请求拒绝
func (s *MemberService) SendVcode(ctx context.Context, mobile string) error {
	code := fmt.Sprintf("%06d", rand.Intn(1000000))

	ok, err := cache.SetVcode(ctx, s.redis, mobile, code,
		time.Duration(s.cfg.Business.VcodeTTLSecs)*time.Second,
		time.Duration(s.cfg.Business.VcodeCooldownSecs)*time.Second,
	)
	if err != nil {
		return err
	}
	if !ok {
		return ErrVcodeCooldown
	}

	if err := s.smsClient.SendVcode(ctx, mobile, code); err != nil {
		log.Printf("[Member] 短信下发失败: mobile=%s err=%v", mobile, err)
		return err
	}
	return nil
}

// Register 手机号+验证码注册，登录名即手机号
func (s *MemberService) Register(ctx context.Context, mobile, password, vcode, nickname string) (*model.Member, error) {
	stored, err := cache.GetVcode(ctx, s.redis, mobile)
	if err != nil {
		return nil, err
	}
	if stored == "" || stored != vcode {
		return nil, ErrVcodeMismatch
	}

	if _, err := s.memberRepo.GetByMobile(ctx, mobile); err == nil {
		return nil, repository.ErrMobileRegistered
	} else if !errors.Is(err, repository.ErrMemberNotFound) {
		return nil, err
	}
	if _, err := s.memberRepo.GetUserByUsername(ctx, mobile); err == nil {
		return nil, repository.ErrMobileRegistered
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	user := &model.User{
		Username: mobile,
		Password: hashPassword(mobile, password),
		IsActive: true,
	}
	member := &model.Member{
		Nickname: nickname,
		Mobile:   mobile,
	}
	if err := s.memberRepo.CreateWithUser(ctx, user, member); err != nil {
		return nil, err
	}

	// 验证码用过即废，防重放
	if err := cache.DelVcode(ctx, s.redis, mobile); err != nil {
		log.Printf("[Member] 验证码销毁失败: mobile=%s err=%v", mobile, err)
	}
	return member, nil
}

// Login 密码登录，成功后整体覆盖会话指纹，旧会话随之失效
func (s *MemberService) Login(ctx context.Context, username, password string) (*model.Member, string, error) {
	user, err := s.memberRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrWrongPassword
		}
		return nil, "", err
	}
	if !user.IsActive {
		return nil, "", ErrMemberDisabled
	}
	if user.Password != hashPassword(username, password) {
		return nil, "", ErrWrongPassword
	}

	sessionKey := idgen.GenerateSessionKey()
	if err := s.memberRepo.UpdateSessionKey(ctx, user.ID, sessionKey); err != nil {
		return nil, "", err
	}

	member, err := s.memberRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return member, sessionKey, nil
}

// Authenticate 按会话指纹取会员
func (s *MemberService) Authenticate(ctx context.Context, sessionKey string) (*model.Member, error) {
	if sessionKey == "" {
		return nil, repository.ErrMemberNotFound
	}
	return s.memberRepo.GetBySessionKey(ctx, sessionKey)
}

// Logout 清空会话指纹
func (s *MemberService) Logout(ctx context.Context, userID int64) error {
	return s.memberRepo.UpdateSessionKey(ctx, userID, "")
}

// GetProfile 查资料
func (s *MemberService) GetProfile(ctx context.Context, userID int64) (*model.Member, error) {
	return s.memberRepo.GetByUserID(ctx, userID)
}

// UpdateProfile 改资料
func (s *MemberService) UpdateProfile(ctx context.Context, userID int64, updates map[string]interface{}) error {
	return s.memberRepo.UpdateProfile(ctx, userID, updates)
}

// SetReferrer 绑定推荐人，只允许一次
func (s *MemberService) SetReferrer(ctx context.Context, userID, referrerID int64) error {
	if _, err := s.memberRepo.GetByUserID(ctx, referrerID); err != nil {
		return err
	}
	return s.memberRepo.SetReferrer(ctx, userID, referrerID)
}

// Destroy 注销账号
func (s *MemberService) Destroy(ctx context.Context, userID int64) error {
	return s.memberRepo.SoftDestroy(ctx, userID)
}
