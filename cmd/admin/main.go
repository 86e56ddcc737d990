package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"classbot/internal/admin"
	"classbot/internal/blob"
	"classbot/internal/config"
	"classbot/internal/db"
	"classbot/internal/logging"
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

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, "classbot-admin")
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

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		sugar.Fatalw("запуск бота", "err", err)
	}

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
	}

	srv := &admin.Server{DB: database, Blobs: blobs, News: dispatcher, Log: sugar}
	srv.Start(ctx, cfg.AdminAddr)
	sugar.Infow("веб-панель запущена", "addr", cfg.AdminAddr)

	<-ctx.Done()
	sugar.Info("остановка веб-панели")
}
