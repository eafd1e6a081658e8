package logger

import "testing"

func TestNew(t *testing.T) {
	if _, err := New("debug", "console"); err != nil {
		t.Fatalf("expected console logger, got %v", err)
	}
	if _, err := New("INFO", "json"); err != nil {
		t.Fatalf("expected json logger, got %v", err)
	}
	if _, err := New("loud", "json"); err == nil {
		t.Fatal("expected invalid level to fail")
	}
	if _, err := New("info", "xml"); err == nil {
		t.Fatal("expected invalid format to fail")
	}
}
