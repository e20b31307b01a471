package database

import (
	"fmt"
	"log"
	"time"

	"livesystem/internal/config"
	"livesystem/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitMySQL 初始化 MySQL 连接
func InitMySQL(cfg *config.MySQLConfig) *gorm.DB {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		log.Fatalf("连接 MySQL 失败: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("获取底层 DB 失败: %v", err)
	}

	// 连接池配置
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移表结构
	err = db.AutoMigrate(
		&model.User{},
		&model.Member{},
		&model.MemberCheckHistory{},
		&model.Live{},
		&model.LiveCategory{},
		&model.LiveWatchLog{},
		&model.LiveBarrage{},
		&model.LiveComment{},
		&model.Prize{},
		&model.PrizeCategory{},
		&model.PrizeOrder{},
		&model.StarBoxOutcome{},
		&model.Family{},
		&model.FamilyMember{},
		&model.FamilyMission{},
		&model.FamilyMissionAchievement{},
		&model.FamilyArticle{},
		&model.Activity{},
		&model.ActivityParticipation{},
		&model.Mark{},
		&model.Contact{},
		&model.Badge{},
		&model.BadgeRecord{},
		&model.RankRecord{},
		&model.PlannedTask{},
		&model.PaymentRecord{},
		&model.RechargeRecord{},
		&model.OutboxMessage{},
	)
	if err != nil {
		log.Fatalf("自动迁移表结构失败: %v", err)
	}

	// 每种币一张流水表，结构相同
	for _, kind := range model.AllCurrencies {
		if err := db.Table(kind.TableName()).AutoMigrate(&model.LedgerEntry{}); err != nil {
			log.Fatalf("迁移流水表 %s 失败: %v", kind.TableName(), err)
		}
	}

	DB = db
	log.Println("MySQL 连接成功")
	return db
}
