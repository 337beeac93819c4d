package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want LogLevel
	}{
		{"ERROR", LevelError},
		{"warn", LevelWarn},
		{"Warning", LevelWarn},
		{"DEBUG", LevelDebug},
		{"INFO", LevelInfo},
		{"", LevelInfo},
		{"garbage", LevelInfo},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestSetLevelTakesEffect(t *testing.T) {
	dir := t.TempDir()
	if err := Init(dir, "INFO", false); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer CloseLogger()

	Debug("suppressed at info level")
	SetLevel(LevelDebug)
	Debug("visible at debug level")
	CloseLogger()

	data, err := os.ReadFile(filepath.Join(dir, "modman.log"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "suppressed at info level") {
		t.Fatal("debug message logged below the configured level")
	}
	if !strings.Contains(string(data), "visible at debug level") {
		t.Fatal("debug message missing after SetLevel")
	}
}

func TestKeyValuePairsAppended(t *testing.T) {
	dir := t.TempDir()
	if err := Init(dir, "INFO", false); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer CloseLogger()

	Info("module installed", "module", "Pester", "version", "5.7.1")
	CloseLogger()

	data, err := os.ReadFile(filepath.Join(dir, "modman.log"))
	if err != nil {
		t.Fatal(err)
	}
	line := string(data)
	if !strings.Contains(line, "module=Pester") || !strings.Contains(line, "version=5.7.1") {
		t.Fatalf("key/value pairs missing: %q", line)
	}
}
