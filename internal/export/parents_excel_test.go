package export

import (
	"database/sql"
	"strings"
	"testing"

	"classbot/internal/models"
)

func TestParentsSheet(t *testing.T) {
	parents := []models.User{
		{
			FullName:   sql.NullString{String: "Иванова Мария", Valid: true},
			Phone:      sql.NullString{String: "+79990001122", Valid: true},
			Role:       models.Parent,
			IsVerified: true,
		},
		{
			FirstName: sql.NullString{String: "Пётр", Valid: true},
			Role:      models.Moderator,
		},
	}

	s := ParentsSheet("5А", parents)
	if s.Title != "5А" {
		t.Errorf("имя листа = %q", s.Title)
	}
	if len(s.Rows) != 2 {
		t.Fatalf("строк %d, ожидали 2", len(s.Rows))
	}
	if s.Rows[0][0] != "Иванова Мария" || s.Rows[0][4] != "да" {
		t.Errorf("первая строка: %v", s.Rows[0])
	}
	if s.Rows[1][0] != "Пётр" || s.Rows[1][4] != "нет" {
		t.Errorf("вторая строка: %v", s.Rows[1])
	}
}

func TestBuildParentsFilename(t *testing.T) {
	got := BuildParentsFilename(" 5А ")
	if got != "Родители — 5А.xlsx" {
		t.Errorf("имя файла = %q", got)
	}
	if strings.ContainsAny(BuildParentsFilename(`5/А:*`), `/\:*?"<>|`) {
		t.Error("имя файла должно быть очищено от спецсимволов")
	}
}

func TestNewWorkbook(t *testing.T) {
	wb, err := NewWorkbook([]SheetSpec{
		ParentsSheet("5А", nil),
		ParentsSheet("7Б", nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := wb.File.SheetCount; got != 2 {
		t.Errorf("листов %d, ожидали 2", got)
	}
}
