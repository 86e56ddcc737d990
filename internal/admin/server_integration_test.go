//go:build testutil
// +build testutil

package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/zap"

	"classbot/internal/db"
	"classbot/internal/models"
	"classbot/internal/notify"
	"classbot/internal/testutil/testdb"
)

type recordingGateway struct {
	sent  []int64
	texts []string
}

func (g *recordingGateway) SendHTML(chatID int64, text string) error {
	g.sent = append(g.sent, chatID)
	g.texts = append(g.texts, text)
	return nil
}

func TestAdminPanel_ClassManagement(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	const adminTg, parentTg = int64(100), int64(200)

	if _, err := db.GetOrCreateUser(ctx, h.DB, adminTg, "admin", "Анна", ""); err != nil {
		t.Fatal(err)
	}
	class, err := db.CreateClass(ctx, h.DB, "5А", adminTg)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.PromoteToAdmin(ctx, h.DB, adminTg, class.ID); err != nil {
		t.Fatal(err)
	}

	parent, err := db.GetOrCreateUser(ctx, h.DB, parentTg, "parent", "Мария", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := db.CompleteRegistration(ctx, h.DB, parentTg, "Иванова Мария", "+79990001122"); err != nil {
		t.Fatal(err)
	}

	gw := &recordingGateway{}
	srv := &Server{
		DB:   h.DB,
		News: &notify.Dispatcher{Gateway: gw, Recipients: db.Recipients{DB: h.DB}},
		Log:  zap.NewNop().Sugar(),
	}
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}

	get := func(t *testing.T, path string, asTg int64) *http.Response {
		t.Helper()
		req, _ := http.NewRequest(http.MethodGet, ts.URL+path, nil)
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: strconv.FormatInt(asTg, 10)})
		resp, err := client.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		_ = resp.Body.Close()
		return resp
	}
	post := func(t *testing.T, path string, form url.Values) *http.Response {
		t.Helper()
		req, _ := http.NewRequest(http.MethodPost, ts.URL+path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: strconv.FormatInt(adminTg, 10)})
		resp, err := client.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		_ = resp.Body.Close()
		return resp
	}
	classPath := "/classes/" + strconv.FormatInt(class.ID, 10)

	t.Run("родитель в панель не допускается", func(t *testing.T) {
		resp := get(t, classPath, parentTg)
		if resp.StatusCode != http.StatusSeeOther {
			t.Fatalf("ожидали редирект на /login, получили %d", resp.StatusCode)
		}
		if loc := resp.Header.Get("Location"); !strings.Contains(loc, "/login") {
			t.Fatalf("ожидали редирект на /login, получили %s", loc)
		}
	})

	t.Run("новость создаётся и рассылается", func(t *testing.T) {
		resp := post(t, classPath+"/news", url.Values{
			"title":   {"Собрание"},
			"content": {"В пятницу в 18:00."},
		})
		if resp.StatusCode != http.StatusSeeOther {
			t.Fatalf("ожидали 303, получили %d", resp.StatusCode)
		}
		news, err := db.ListNewsPage(ctx, h.DB, class.ID, models.NewsTypeNews, 10, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(news) != 1 || news[0].Title != "Собрание" {
			t.Fatalf("ожидали одну новость, получили %+v", news)
		}
		if len(gw.sent) == 0 {
			t.Fatal("новость должна уйти получателям класса")
		}
	})

	t.Run("новость правится и удаляется", func(t *testing.T) {
		news, err := db.ListNewsPage(ctx, h.DB, class.ID, models.NewsTypeNews, 10, 0)
		if err != nil || len(news) != 1 {
			t.Fatalf("новость не найдена: %v", err)
		}
		id := strconv.FormatInt(news[0].ID, 10)

		post(t, classPath+"/news/"+id+"/update", url.Values{
			"title":   {"Собрание переносится"},
			"content": {"Теперь в субботу."},
		})
		got, err := db.GetNews(ctx, h.DB, news[0].ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Title != "Собрание переносится" || got.Content.String != "Теперь в субботу." {
			t.Fatalf("правка не применилась: %+v", got)
		}

		post(t, classPath+"/news/"+id+"/delete", nil)
		got, err = db.GetNews(ctx, h.DB, news[0].ID)
		if err != nil {
			t.Fatal(err)
		}
		if got != nil {
			t.Fatal("новость должна удалиться")
		}
	})

	t.Run("родитель привязывается и отвязывается", func(t *testing.T) {
		tgVal := url.Values{"telegram_id": {strconv.FormatInt(parentTg, 10)}}

		post(t, classPath+"/parents/add", tgVal)
		linked, err := db.HasLink(ctx, h.DB, parent.ID, class.ID)
		if err != nil {
			t.Fatal(err)
		}
		if !linked {
			t.Fatal("привязка должна появиться")
		}

		post(t, classPath+"/parents/remove", tgVal)
		linked, err = db.HasLink(ctx, h.DB, parent.ID, class.ID)
		if err != nil {
			t.Fatal(err)
		}
		if linked {
			t.Fatal("привязка должна удалиться")
		}
	})

	t.Run("заявка одобряется с уведомлением родителя", func(t *testing.T) {
		v, err := db.CreatePendingVerification(ctx, h.DB, parentTg, "Иванова Мария", "+79990001122", class.ID)
		if err != nil || v == nil {
			t.Fatalf("заявка не создалась: %v", err)
		}

		gw.sent = nil
		post(t, classPath+"/verifications/"+strconv.FormatInt(v.ID, 10)+"/approve", nil)

		u, err := db.GetUserByTelegramID(ctx, h.DB, parentTg)
		if err != nil {
			t.Fatal(err)
		}
		if !u.IsVerified {
			t.Fatal("после одобрения родитель должен быть верифицирован")
		}
		found := false
		for _, id := range gw.sent {
			if id == parentTg {
				found = true
			}
		}
		if !found {
			t.Fatal("родитель должен получить уведомление о решении")
		}
	})
}
