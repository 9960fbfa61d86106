package main

import (
	"context"
	"log"
	"os/signal"
	"strings"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/model"
	"storefront/internal/queue"
	"storefront/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	rd "github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	// .env 仅开发环境存在，缺失不致命。
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := gorm.Open(openDialector(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := model.AutoMigrateAll(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	rdb := rd.NewClient(&rd.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})

	producer := queue.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()
	consumer := queue.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, db)
	defer consumer.Close()
	relay := queue.NewRelay(rdb, producer, cfg.PaymentEventStream, cfg.PaymentEventGroup, cfg.PaymentEventConsumer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go relay.Run(ctx)
	go consumer.Run(ctx)

	r := gin.Default()
	router.Setup(r, db, rdb, cfg)

	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("http serve: %v", err)
	}
}

// openDialector 按 DSN 前缀选择驱动：postgres:// 走 Postgres，其余按
// SQLite 文件路径处理。
func openDialector(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return postgres.Open(dsn)
	}
	return sqlite.Open(dsn)
}
