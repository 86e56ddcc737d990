package main

import (
	"context"
	"encoding/json"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"classbot/internal/config"
	"classbot/internal/db"
	"classbot/internal/logging"
	"classbot/internal/notify"
	"classbot/internal/observability"
	"classbot/internal/queue"
	"classbot/internal/tg"
)

// Консьюмер очереди рассылки: читает публикации и доставляет их получателям.
// Состав получателей пересчитывается на момент доставки.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Не удалось загрузить .env файл, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("конфигурация: %v", err)
	}
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS не задан")
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("логгер: %v", err)
	}
	defer lg.Closer()
	sugar := lg.Sugar

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, "classbot-consumer")
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

	dispatcher := &notify.Dispatcher{
		Gateway:    tg.Sender{Bot: bot},
		Recipients: db.Recipients{DB: database},
		Log:        sugar,
	}

	consumer := queue.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, sugar)
	defer func() { _ = consumer.Close() }()

	sugar.Infow("консьюмер запущен", "topic", cfg.KafkaTopic, "group", cfg.KafkaGroupID)

	err = consumer.Run(ctx, func(hctx context.Context, value []byte) error {
		var msg notify.BroadcastMessage
		if err := json.Unmarshal(value, &msg); err != nil {
			return err
		}
		return dispatcher.Deliver(hctx, msg)
	})
	if err != nil {
		sugar.Fatalw("консьюмер остановлен с ошибкой", "err", err)
	}
	sugar.Info("консьюмер остановлен")
}
