package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

type stubGateway struct {
	sent   []int64
	texts  []string
	failAt int64
}

func (g *stubGateway) SendHTML(chatID int64, text string) error {
	if chatID == g.failAt {
		return errors.New("blocked")
	}
	g.sent = append(g.sent, chatID)
	g.texts = append(g.texts, text)
	return nil
}

type stubRecipients struct{ ids []int64 }

func (r stubRecipients) Recipients(_ context.Context, _ int64) ([]int64, error) {
	return r.ids, nil
}

type stubQueue struct {
	key, value []byte
}

func (q *stubQueue) Publish(_ context.Context, key, value []byte) error {
	q.key, q.value = key, value
	return nil
}

func TestDeliverDeduplicatesRecipients(t *testing.T) {
	gw := &stubGateway{}
	d := &Dispatcher{Gateway: gw, Recipients: stubRecipients{ids: []int64{10, 20, 10, 30, 20}}}

	err := d.Deliver(context.Background(), BroadcastMessage{ClassID: 1, Title: "Собрание", Type: "news"})
	if err != nil {
		t.Fatal(err)
	}
	if len(gw.sent) != 3 {
		t.Fatalf("отправлено %d сообщений, ожидали 3: %v", len(gw.sent), gw.sent)
	}
}

func TestDeliverToleratesSendErrors(t *testing.T) {
	gw := &stubGateway{failAt: 20}
	d := &Dispatcher{Gateway: gw, Recipients: stubRecipients{ids: []int64{10, 20, 30}}}

	if err := d.Deliver(context.Background(), BroadcastMessage{ClassID: 1, Title: "x", Type: "news"}); err != nil {
		t.Fatal(err)
	}
	if len(gw.sent) != 2 {
		t.Fatalf("рассылка должна продолжаться после ошибки, отправлено %d", len(gw.sent))
	}
}

func TestDispatchPublishesToQueue(t *testing.T) {
	q := &stubQueue{}
	d := &Dispatcher{Queue: q, Recipients: stubRecipients{}}

	created := time.Date(2026, 5, 12, 9, 30, 0, 0, time.UTC)
	msg := BroadcastMessage{ClassID: 7, Title: "Поход", Content: "Сбор в 9:00", CreatedAtUTC: created, Type: "news"}
	if err := d.Dispatch(context.Background(), msg); err != nil {
		t.Fatal(err)
	}
	if string(q.key) != "7" {
		t.Errorf("ключ очереди = %q, ожидали %q", q.key, "7")
	}

	var got BroadcastMessage
	if err := json.Unmarshal(q.value, &got); err != nil {
		t.Fatal(err)
	}
	if got != msg {
		t.Errorf("из очереди прочитали %+v, ожидали %+v", got, msg)
	}
	for _, field := range []string{`"classId"`, `"title"`, `"content"`, `"createdAtUtc"`, `"type"`} {
		if !strings.Contains(string(q.value), field) {
			t.Errorf("в payload нет поля %s: %s", field, q.value)
		}
	}
}

func TestBroadcastText(t *testing.T) {
	created := time.Date(2026, 5, 12, 9, 30, 0, 0, time.UTC)

	news := BroadcastText(BroadcastMessage{Title: "Поход", Content: "Сбор в 9:00", CreatedAtUTC: created, Type: "news"})
	if !strings.Contains(news, "<b>Поход</b>") || !strings.Contains(news, "Сбор в 9:00") {
		t.Errorf("текст новости: %q", news)
	}
	if !strings.Contains(news, "12.05.2026 12:30") {
		t.Errorf("дата должна показываться по Москве: %q", news)
	}
}

// Отчёты доставляются только по запросу через /viewreports: ни Dispatch,
// ни Deliver не должны ничего слать и класть в очередь.
func TestReportsAreNeverPushed(t *testing.T) {
	gw := &stubGateway{}
	q := &stubQueue{}
	d := &Dispatcher{Gateway: gw, Queue: q, Recipients: stubRecipients{ids: []int64{10, 20}}}

	msg := BroadcastMessage{ClassID: 1, Title: "Отчёт за май", Type: "report"}
	if err := d.Dispatch(context.Background(), msg); err != nil {
		t.Fatal(err)
	}
	if q.value != nil {
		t.Fatalf("отчёт попал в очередь: %s", q.value)
	}
	if len(gw.sent) != 0 {
		t.Fatalf("отчёт разослан %d получателям, автодоставки быть не должно", len(gw.sent))
	}

	// и напрямую, без очереди
	d.Queue = nil
	if err := d.Deliver(context.Background(), msg); err != nil {
		t.Fatal(err)
	}
	if len(gw.sent) != 0 {
		t.Fatalf("отчёт разослан %d получателям при прямой доставке", len(gw.sent))
	}
}
