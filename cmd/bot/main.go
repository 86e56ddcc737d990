package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"classbot/internal/app"
	"classbot/internal/blob"
	"classbot/internal/bot/handlers"
	"classbot/internal/bot/session"
	"classbot/internal/config"
	"classbot/internal/db"
	"classbot/internal/jobs"
	"classbot/internal/logging"
	"classbot/internal/metrics"
	"classbot/internal/notify"
	"classbot/internal/observability"
	"classbot/internal/queue"
	"classbot/internal/tg"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Не удалось загрузить .env файл, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("конфигурация: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("логгер: %v", err)
	}
	defer lg.Closer()
	sugar := lg.Sugar

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, "classbot")
	if err != nil {
		sugar.Warnw("sentry не инициализирован", "err", err)
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		sugar.Fatalw("подключение к БД", "err", err)
	}
	defer func() { _ = database.Close() }()

	if err := db.Migrate(database); err != nil {
		sugar.Fatalw("миграции", "err", err)
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		sugar.Fatalw("запуск бота", "err", err)
	}
	sugar.Infow("бот запущен", "username", bot.Self.UserName)

	var blobs blob.Store
	if cfg.MinioEndpoint != "" {
		m, err := blob.NewMinio(ctx, blob.MinioConfig{
			Endpoint:       cfg.MinioEndpoint,
			AccessKey:      cfg.MinioAccessKey,
			SecretKey:      cfg.MinioSecretKey,
			Bucket:         cfg.MinioBucket,
			UseSSL:         cfg.MinioUseSSL,
			PublicEndpoint: cfg.MinioPublicEndpoint,
		})
		if err != nil {
			sugar.Fatalw("объектное хранилище", "err", err)
		}
		blobs = m
	} else {
		sugar.Warn("MINIO_ENDPOINT не задан, файлы отчётов недоступны")
	}

	dispatcher := &notify.Dispatcher{
		Gateway:    tg.Sender{Bot: bot},
		Recipients: db.Recipients{DB: database},
		Log:        sugar,
	}
	if len(cfg.KafkaBrokers) > 0 {
		producer := queue.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() { _ = producer.Close() }()
		dispatcher.Queue = producer
		sugar.Infow("рассылка через очередь", "topic", cfg.KafkaTopic)
	}

	sessions := session.NewMemory()
	h := &handlers.Handler{
		Bot:      bot,
		DB:       database,
		Sessions: sessions,
		News:     dispatcher,
		Blobs:    blobs,
		Log:      sugar,
		PanelURL: cfg.AdminPanelURL,
		Loc:      cfg.Location,
	}
	a := app.New(bot, database, h, sugar, cfg.AdminIDs)

	app.StartHTTP(ctx, cfg.HTTPAddr, database)

	runner := jobs.New(ctx)
	runner.Every(30*time.Minute, "session_sweep", func(context.Context) error {
		if n := sessions.SweepOlderThan(time.Hour); n > 0 {
			sugar.Infow("брошенные диалоги удалены", "count", n)
		}
		return nil
	})
	runner.Every(time.Minute, "pending_verifications", func(jctx context.Context) error {
		n, err := db.CountPendingVerifications(jctx, database)
		if err != nil {
			return err
		}
		metrics.PendingVerifications.Set(float64(n))
		return nil
	})

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			sugar.Info("остановка бота")
			bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go a.HandleUpdate(ctx, update)
		}
	}
}
