package blob

import (
	"strings"
	"testing"
)

func TestObjectKey(t *testing.T) {
	key := ObjectKey(7, "отчёт мая.pdf")
	if !strings.HasPrefix(key, "7/") {
		t.Errorf("ключ должен начинаться с ID класса: %q", key)
	}
	if !strings.HasSuffix(key, "_отчёт мая.pdf") {
		t.Errorf("ключ должен кончаться исходным именем: %q", key)
	}

	if ObjectKey(7, "a.pdf") == ObjectKey(7, "a.pdf") {
		t.Error("ключи одинаковых имён должны различаться")
	}

	// путь в имени файла не должен уводить объект из каталога класса
	key = ObjectKey(7, "../../etc/passwd")
	if strings.Contains(key, "..") {
		t.Errorf("ключ содержит относительный путь: %q", key)
	}
}
