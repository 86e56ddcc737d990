//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"testing"

	"classbot/internal/db"
	"classbot/internal/models"
	"classbot/internal/testutil/testdb"
)

func TestVerifications_Lifecycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	const adminTg, parentTg = int64(100), int64(200)

	parent, err := db.GetOrCreateUser(ctx, h.DB, parentTg, "parent", "Мария", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := db.CompleteRegistration(ctx, h.DB, parentTg, "Иванова Мария", "+79990001122"); err != nil {
		t.Fatal(err)
	}

	class, err := db.CreateClass(ctx, h.DB, "5А", adminTg)
	if err != nil {
		t.Fatal(err)
	}

	v, err := db.CreatePendingVerification(ctx, h.DB, parentTg, "Иванова Мария", "+79990001122", class.ID)
	if err != nil {
		t.Fatal(err)
	}
	if v == nil {
		t.Fatal("первая заявка должна создаться")
	}
	if v.TelegramID != parentTg || v.FullName != "Иванова Мария" {
		t.Fatalf("заявка вернулась с чужими данными: %+v", v)
	}

	// не больше одной ожидающей заявки на пару (пользователь, класс)
	dup, err := db.CreatePendingVerification(ctx, h.DB, parentTg, "Иванова Мария", "+79990001122", class.ID)
	if err != nil {
		t.Fatal(err)
	}
	if dup != nil {
		t.Fatal("повторная заявка не должна создаться")
	}

	pending, err := db.ListPendingForClass(ctx, h.DB, class.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Fatalf("ожидали одну заявку, получили %d", len(pending))
	}

	ok, err := db.ApproveVerification(ctx, h.DB, pending[0].ID, adminTg)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("одобрение должно пройти")
	}

	// повторное одобрение безвредно
	ok, err = db.ApproveVerification(ctx, h.DB, pending[0].ID, adminTg)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("повторное одобрение должно вернуть false")
	}

	u, err := db.GetUserByTelegramID(ctx, h.DB, parentTg)
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != models.Parent || !u.IsVerified {
		t.Fatalf("после одобрения ожидали верифицированного родителя, получили %s verified=%v", u.Role, u.IsVerified)
	}
	linked, err := db.HasLink(ctx, h.DB, parent.ID, class.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !linked {
		t.Fatal("после одобрения должна появиться привязка к классу")
	}

	// после одобрения можно подать новую заявку в другой класс
	other, err := db.CreateClass(ctx, h.DB, "7Б", adminTg)
	if err != nil {
		t.Fatal(err)
	}
	v, err = db.CreatePendingVerification(ctx, h.DB, parentTg, "Иванова Мария", "+79990001122", other.ID)
	if err != nil {
		t.Fatal(err)
	}
	if v == nil {
		t.Fatal("заявка в другой класс должна создаться")
	}

	// заявки видят все управляющие: список получателей уведомлений
	managers, err := db.ListManagerIDs(ctx, h.DB)
	if err != nil {
		t.Fatal(err)
	}
	if len(managers) != 1 || managers[0] != adminTg {
		t.Fatalf("ожидали список управляющих [%d], получили %v", adminTg, managers)
	}

	ok, err = db.RejectVerification(ctx, h.DB, pendingID(t, ctx, h, other.ID), adminTg)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("отклонение должно пройти")
	}
}

func pendingID(t *testing.T, ctx context.Context, h *testdb.DBHandle, classID int64) int64 {
	t.Helper()
	pending, err := db.ListPendingForClass(ctx, h.DB, classID)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) == 0 {
		t.Fatal("ожидали ожидающую заявку")
	}
	return pending[0].ID
}
