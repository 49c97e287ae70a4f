package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orderbot/internal/bot"
	"orderbot/internal/chat"
	"orderbot/internal/config"
	"orderbot/internal/conversation"
	"orderbot/internal/handler"
	"orderbot/internal/infra/db"
	"orderbot/internal/infra/events"
	"orderbot/internal/infra/messenger"
	infraRepo "orderbot/internal/infra/repository"
	"orderbot/internal/infra/session"
	"orderbot/internal/logging"
	"orderbot/internal/notify"
	"orderbot/internal/server"
	"orderbot/internal/usecase"

	"github.com/redis/go-redis/v9"
)

func main() {
	configPath := flag.String("config", "config.yaml", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Base().Error("config", "err", err)
		os.Exit(1)
	}

	log := logging.Init(cfg.App.Name, cfg.App.LogFile, cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Error("db migrate", "err", err)
		os.Exit(1)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Error("db handle", "err", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	//Repository（GORM実装）生成
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	itemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//送信先（RabbitMQ が無ければログに出すだけ）
	var sender chat.Sender = messenger.NewLogSender(logging.New("outbound"))
	if cfg.Rabbit.URL != "" {
		conn, ch, err := messenger.DialRabbit(cfg.Rabbit.URL, cfg.Rabbit.Exchange)
		if err != nil {
			log.Error("rabbitmq", "err", err)
			os.Exit(1)
		}
		defer conn.Close()
		defer ch.Close()
		sender = messenger.NewRabbitSender(ch, cfg.Rabbit.Exchange, cfg.Rabbit.RoutingKey)
	}

	//注文イベント（Kafka が無ければ何もしない）
	var publisher usecase.OrderEventPublisher = usecase.NoopEventPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := events.NewAsyncProducer(cfg.Kafka.Brokers)
		if err != nil {
			log.Error("kafka", "err", err)
			os.Exit(1)
		}
		kp := events.NewKafkaPublisher(producer, cfg.Kafka.Topic, logging.New("events"))
		defer kp.Close()
		publisher = kp
	}

	//下書きの置き場所
	var store conversation.DraftStore
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Error("redis", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		store = session.NewRedisStore(rdb, cfg.Draft.TTL)
	} else {
		mem := session.NewMemoryStore(cfg.Draft.TTL)
		go mem.RunSweeper(ctx, time.Minute)
		store = mem
	}

	//Usecase生成
	clock := usecase.SystemClock{}
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo, itemRepo)
	orderUC := usecase.NewOrderUsecase(txm, orderRepo, itemRepo, publisher, clock)
	adminUC := usecase.NewAdminOrderUsecase(txm, orderRepo, itemRepo, auditRepo, publisher, clock)
	productUC := usecase.NewProductUsecase(productRepo)

	admins := bot.NewAdmins(cfg.AdminIDs)
	if len(cfg.AdminIDs) == 0 {
		log.Warn("no admin ids configured; new orders will not be forwarded")
	}

	notifier := notify.NewNotifier(sender, cfg.AdminIDs, logging.New("notify"))
	engine := conversation.NewEngine(store, conversation.DefaultCatalog(), orderUC, cartUC, notifier, sender, clock)
	router := bot.NewRouter(engine, cartUC, orderUC, adminUC, productUC, notifier, sender, admins)

	//Handler生成
	e := server.New(server.Deps{
		JWTSecret:    cfg.Gateway.JWTSecret,
		IsAdmin:      admins.IsAdmin,
		Webhook:      handler.NewWebhookHandler(router),
		Health:       handler.NewHealthHandler(sqlDB),
		AdminOrders:  handler.NewAdminOrderHandler(adminUC, notifier),
		AdminProduct: handler.NewAdminProductHandler(productUC),
	})

	//Server起動
	if err := server.Start(ctx, e, cfg.App.HTTPAddr); err != nil {
		log.Error("server", "err", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
