package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"livesystem/internal/config"
	"livesystem/internal/handler"
	"livesystem/internal/infrastructure/cache"
	"livesystem/internal/infrastructure/database"
	"livesystem/internal/infrastructure/mq"
	"livesystem/internal/infrastructure/sms"
	"livesystem/internal/job"
	"livesystem/internal/service"
	"livesystem/internal/ws"
	"livesystem/pkg/idgen"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	workerID := flag.Int64("worker", 1, "雪花算法机器ID")
	flag.Parse()

	cfg := config.LoadConfig(*configPath)
	idgen.Init(*workerID)

	db := database.InitMySQL(&cfg.MySQL)
	rdb := cache.InitRedis(&cfg.Redis)
	mq.InitKafka(&cfg.Kafka)
	defer mq.CloseKafka()

	hub := ws.NewHub()
	go hub.Run()

	smsClient := sms.NewClient(&cfg.SMS)

	ledgerSvc := service.NewLedgerService(db, cfg, rdb)
	memberSvc := service.NewMemberService(db, cfg, rdb, smsClient)
	liveSvc := service.NewLiveService(db, cfg, hub, ledgerSvc)
	familySvc := service.NewFamilyService(db, cfg)
	giftSvc := service.NewGiftService(db, cfg, rdb, hub, ledgerSvc, familySvc)
	activitySvc := service.NewActivityService(db, cfg, ledgerSvc)
	rankSvc := service.NewRankService(db, cfg)
	socialSvc := service.NewSocialService(db)
	vipSvc := service.NewVipService(db, cfg)
	rechargeSvc := service.NewRechargeService(db, cfg, ledgerSvc, vipSvc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 事务外发消息投递
	outboxSender := job.NewOutboxSender(db, cfg)
	go outboxSender.Start(ctx)

	// 持久化延时任务调度
	scheduler := job.NewScheduler(db, cfg, rdb, liveSvc, rankSvc, activitySvc, vipSvc)
	if err := scheduler.Bootstrap(ctx); err != nil {
		log.Fatalf("调度器初始化失败: %v", err)
	}
	go scheduler.Start(ctx)

	h := handler.NewHandler(db, hub,
		memberSvc, ledgerSvc, liveSvc, giftSvc,
		activitySvc, rankSvc, familySvc, socialSvc, rechargeSvc)
	router := handler.SetupRouter(h, memberSvc)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("服务启动, 监听端口 %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("收到退出信号, 开始优雅关闭")

	cancel()
	outboxSender.Stop()
	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP 服务关闭异常: %v", err)
	}
	log.Println("服务已退出")
}
