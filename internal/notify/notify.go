// Package notify — рассылка публикаций получателям класса,
// напрямую или через очередь.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"classbot/internal/models"
)

// BroadcastMessage — полезная нагрузка очереди. Формат стабилен:
// его читает консьюмер, возможно другой версии.
type BroadcastMessage struct {
	ClassID      int64     `json:"classId"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	CreatedAtUTC time.Time `json:"createdAtUtc"`
	Type         string    `json:"type"`
}

// Gateway шлёт HTML-сообщение в чат.
type Gateway interface {
	SendHTML(chatID int64, text string) error
}

// Queue публикует сообщение рассылки; nil означает прямую доставку.
type Queue interface {
	Publish(ctx context.Context, key, value []byte) error
}

// RecipientSource отдаёт получателей публикаций класса.
type RecipientSource interface {
	Recipients(ctx context.Context, classID int64) ([]int64, error)
}

type Dispatcher struct {
	Gateway    Gateway
	Queue      Queue
	Recipients RecipientSource
	Log        *zap.SugaredLogger
}

// Dispatch отправляет публикацию в очередь, а при её отсутствии доставляет сразу.
// Отчёты не рассылаются: их забирают по запросу через /viewreports.
func (d *Dispatcher) Dispatch(ctx context.Context, msg BroadcastMessage) error {
	if msg.Type == string(models.NewsTypeReport) {
		return nil
	}
	if d.Queue == nil {
		return d.Deliver(ctx, msg)
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("notify: marshal: %w", err)
	}
	key := []byte(fmt.Sprintf("%d", msg.ClassID))
	if err := d.Queue.Publish(ctx, key, payload); err != nil {
		return fmt.Errorf("notify: publish: %w", err)
	}
	return nil
}

// Deliver рассылает текст публикации получателям класса. Состав получателей
// берётся на момент доставки, не на момент публикации. Ошибки отдельных чатов
// не прерывают рассылку.
func (d *Dispatcher) Deliver(ctx context.Context, msg BroadcastMessage) error {
	// страховка от старых сообщений в очереди: отчёты не доставляются
	if msg.Type == string(models.NewsTypeReport) {
		return nil
	}
	ids, err := d.Recipients.Recipients(ctx, msg.ClassID)
	if err != nil {
		return fmt.Errorf("notify: recipients: %w", err)
	}

	text := BroadcastText(msg)
	seen := make(map[int64]struct{}, len(ids))
	for _, chatID := range ids {
		if _, dup := seen[chatID]; dup {
			continue
		}
		seen[chatID] = struct{}{}
		if err := d.Gateway.SendHTML(chatID, text); err != nil && d.Log != nil {
			d.Log.Warnw("не удалось доставить публикацию", "chat_id", chatID, "class_id", msg.ClassID, "err", err)
		}
	}
	return nil
}

// mskOffset — даты в сообщениях показываем по Москве.
var mskOffset = time.FixedZone("MSK", 3*60*60)

// BroadcastText — текст рассылки новости.
func BroadcastText(msg BroadcastMessage) string {
	when := msg.CreatedAtUTC.In(mskOffset).Format("02.01.2006 15:04")
	if msg.Content == "" {
		return fmt.Sprintf("<b>%s</b>\n\nДата: %s", msg.Title, when)
	}
	return fmt.Sprintf("<b>%s</b>\n\n%s\n\nДата: %s", msg.Title, msg.Content, when)
}
