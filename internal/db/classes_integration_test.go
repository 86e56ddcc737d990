//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"errors"
	"testing"

	"classbot/internal/db"
	"classbot/internal/models"
	"classbot/internal/testutil/testdb"
)

func TestClasses_UniqueNameAndDelete(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	const adminTg, parentTg = int64(100), int64(200)

	admin, err := db.GetOrCreateUser(ctx, h.DB, adminTg, "admin", "Анна", "")
	if err != nil {
		t.Fatal(err)
	}
	_ = admin

	class, err := db.CreateClass(ctx, h.DB, "5А", adminTg)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.PromoteToAdmin(ctx, h.DB, adminTg, class.ID); err != nil {
		t.Fatal(err)
	}

	// имена классов глобально уникальны
	if _, err := db.CreateClass(ctx, h.DB, "5А", 300); !errors.Is(err, db.ErrClassNameTaken) {
		t.Fatalf("ожидали ErrClassNameTaken, получили %v", err)
	}

	byName, err := db.GetClassByName(ctx, h.DB, "5А")
	if err != nil || byName == nil || byName.ID != class.ID {
		t.Fatalf("поиск по имени: %#v, %v", byName, err)
	}

	parent, err := db.GetOrCreateUser(ctx, h.DB, parentTg, "parent", "Мария", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := db.EnsureLink(ctx, h.DB, parent.ID, class.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := db.CreatePendingVerification(ctx, h.DB, parentTg, "Иванова", "+79990001122", class.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := db.CreateNews(ctx, h.DB, &models.News{ClassID: class.ID, AuthorTelegramID: adminTg, Title: "Тест", Type: models.NewsTypeNews}); err != nil {
		t.Fatal(err)
	}

	// чужой админ удалить не может
	ok, err := db.DeleteClass(ctx, h.DB, class.ID, 999)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("чужой админ не должен удалять класс")
	}

	ok, err = db.DeleteClass(ctx, h.DB, class.ID, adminTg)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("владелец должен удалить класс")
	}

	// каскад: новости, заявки и привязки ушли, class_id пользователей обнулился
	for _, q := range []string{
		"SELECT COUNT(*) FROM news",
		"SELECT COUNT(*) FROM parent_verifications",
		"SELECT COUNT(*) FROM parent_class_links",
	} {
		var n int
		if err := h.DB.QueryRowContext(ctx, q).Scan(&n); err != nil {
			t.Fatal(err)
		}
		if n != 0 {
			t.Fatalf("%s = %d, ожидали 0", q, n)
		}
	}
	u, err := db.GetUserByTelegramID(ctx, h.DB, adminTg)
	if err != nil {
		t.Fatal(err)
	}
	if u.ClassID.Valid {
		t.Fatal("после удаления класса основная привязка должна обнулиться")
	}
}

func TestNewsRecipients_UnionAndDedup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	const adminTg, modTg, homeTg, linkTg, strangerTg, unverifiedTg = int64(100), int64(200), int64(300), int64(400), int64(500), int64(600)

	class, err := db.CreateClass(ctx, h.DB, "5А", adminTg)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := db.GetOrCreateUser(ctx, h.DB, adminTg, "", "", ""); err != nil {
		t.Fatal(err)
	}
	if err := db.PromoteToAdmin(ctx, h.DB, adminTg, class.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := db.GetOrCreateUser(ctx, h.DB, modTg, "", "", ""); err != nil {
		t.Fatal(err)
	}
	if err := db.SetModerator(ctx, h.DB, modTg, class.ID); err != nil {
		t.Fatal(err)
	}

	// верифицированный родитель с основной привязкой И ссылкой: должен войти один раз
	home, err := db.GetOrCreateUser(ctx, h.DB, homeTg, "", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.DB.ExecContext(ctx,
		`UPDATE users SET role='parent', is_verified=TRUE, class_id=$2 WHERE telegram_id=$1`, homeTg, class.ID); err != nil {
		t.Fatal(err)
	}
	if err := db.EnsureLink(ctx, h.DB, home.ID, class.ID); err != nil {
		t.Fatal(err)
	}

	link, err := db.GetOrCreateUser(ctx, h.DB, linkTg, "", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.DB.ExecContext(ctx,
		`UPDATE users SET role='parent', is_verified=TRUE WHERE telegram_id=$1`, linkTg); err != nil {
		t.Fatal(err)
	}
	if err := db.EnsureLink(ctx, h.DB, link.ID, class.ID); err != nil {
		t.Fatal(err)
	}

	// посторонний не должен попасть в рассылку
	if _, err := db.GetOrCreateUser(ctx, h.DB, strangerTg, "", "", ""); err != nil {
		t.Fatal(err)
	}

	// неверифицированный родитель с привязкой — тоже: рассылка только верифицированным
	unverified, err := db.GetOrCreateUser(ctx, h.DB, unverifiedTg, "", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.DB.ExecContext(ctx,
		`UPDATE users SET role='parent' WHERE telegram_id=$1`, unverifiedTg); err != nil {
		t.Fatal(err)
	}
	if err := db.EnsureLink(ctx, h.DB, unverified.ID, class.ID); err != nil {
		t.Fatal(err)
	}

	got, err := db.NewsRecipients(ctx, h.DB, class.ID)
	if err != nil {
		t.Fatal(err)
	}

	want := map[int64]bool{adminTg: true, modTg: true, homeTg: true, linkTg: true}
	if len(got) != len(want) {
		t.Fatalf("получатели %v, ожидали %v", got, want)
	}
	for _, id := range got {
		if !want[id] {
			t.Fatalf("лишний получатель %d в %v", id, got)
		}
	}
}
