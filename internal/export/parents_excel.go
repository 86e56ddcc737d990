// Package export собирает xlsx-выгрузки для веб-панели.
package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"classbot/internal/models"
)

type SheetSpec struct {
	Title  string
	Header []string
	Rows   [][]string
}

type Workbook struct {
	File *excelize.File
}

// ParentsSheet — лист с родителями одного класса.
func ParentsSheet(className string, parents []models.User) SheetSpec {
	rows := make([][]string, 0, len(parents))
	for _, p := range parents {
		verified := "нет"
		if p.IsVerified {
			verified = "да"
		}
		rows = append(rows, []string{
			p.DisplayName(),
			p.Phone.String,
			p.Username.String,
			string(p.Role),
			verified,
		})
	}
	return SheetSpec{
		Title:  sanitizeSheetName(className),
		Header: []string{"ФИО", "Телефон", "Username", "Роль", "Верифицирован"},
		Rows:   rows,
	}
}

func NewWorkbook(sheets []SheetSpec) (*Workbook, error) {
	f := excelize.NewFile()

	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	// автофильтр только в первой строке
	for i, s := range sheets {
		name := s.Title
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return nil, fmt.Errorf("new sheet: %w", err)
			}
		}
		// заголовки
		for col, h := range s.Header {
			cell := fmt.Sprintf("%s1", colName(col+1))
			if err := f.SetCellStr(name, cell, h); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
		// стиль заголовков + автофильтр
		end := colName(len(s.Header)) + "1"
		_ = f.SetCellStyle(name, "A1", end, bold)
		_ = f.AutoFilter(name, "A1:"+end, nil)

		// строки
		for r, row := range s.Rows {
			for c, val := range row {
				cell := fmt.Sprintf("%s%d", colName(c+1), r+2)
				if err := f.SetCellStr(name, cell, val); err != nil {
					return nil, fmt.Errorf("set cell %s: %w", cell, err)
				}
			}
		}
		// эвристическая ширина: по длине заголовка и первых строк
		for c := 1; c <= len(s.Header); c++ {
			maxim := len(s.Header[c-1])
			for r := 0; r < minim(50, len(s.Rows)); r++ {
				if l := len(s.Rows[r][c-1]); l > maxim {
					maxim = l
				}
			}
			w := float64(maxim) * 0.9
			if w < 12 {
				w = 12
			}
			if w > 40 {
				w = 40
			}
			_ = f.SetColWidth(name, colName(c), colName(c), w)
		}
	}
	return &Workbook{File: f}, nil
}

func (w *Workbook) WriteTo(dst io.Writer) (int64, error) {
	return w.File.WriteTo(dst)
}

// BuildParentsFilename — человекочитаемое имя выгрузки.
func BuildParentsFilename(className string) string {
	return sanitizeFileName(fmt.Sprintf("Родители — %s.xlsx", strings.TrimSpace(className)))
}

// helpers

func colName(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}

func minim(a, b int) int {
	if a < b {
		return a
	}
	return b
}

var invalidFileRe = regexp.MustCompile(`[\\/:*?"<>|]+`)

func sanitizeFileName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Join(strings.Fields(s), " ")
	return invalidFileRe.ReplaceAllString(s, "_")
}

// sanitizeSheetName — Excel не любит спецсимволы и имена длиннее 31 знака.
func sanitizeSheetName(s string) string {
	s = invalidFileRe.ReplaceAllString(strings.TrimSpace(s), "_")
	if s == "" {
		s = "Класс"
	}
	if r := []rune(s); len(r) > 31 {
		s = string(r[:31])
	}
	return s
}
