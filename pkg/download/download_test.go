package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileDownloads(t *testing.T) {
	payload := []byte("module payload")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	t.Cleanup(server.Close)

	// The destination directory does not exist yet.
	dest := filepath.Join(t.TempDir(), "cache", "pkg.nupkg")
	if err := File(context.Background(), server.Client(), server.URL, dest); err != nil {
		t.Fatalf("File: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(payload) {
		t.Fatalf("downloaded content mismatch: %q", data)
	}
}

func TestFileRetriesTransientFailures(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	t.Cleanup(server.Close)

	dest := filepath.Join(t.TempDir(), "pkg.nupkg")
	if err := File(context.Background(), server.Client(), server.URL, dest); err != nil {
		t.Fatalf("File: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected a retry after the 500, got %d attempts", attempts)
	}
}

func TestFileNotFoundIsNotRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)

	dest := filepath.Join(t.TempDir(), "pkg.nupkg")
	if err := File(context.Background(), server.Client(), server.URL, dest); err == nil {
		t.Fatal("expected 404 failure")
	}
	if attempts != 1 {
		t.Fatalf("404 should give up immediately, got %d attempts", attempts)
	}
}

func TestFileRejectsEmptyURL(t *testing.T) {
	if err := File(context.Background(), nil, "", filepath.Join(t.TempDir(), "x")); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestVerify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	const want = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if !Verify(path, want) {
		t.Fatal("matching hash rejected")
	}
	if !Verify(path, strings.ToUpper(want)) {
		t.Fatal("hash comparison should be case-insensitive")
	}
	if Verify(path, "deadbeef") {
		t.Fatal("mismatched hash accepted")
	}
	if Verify(filepath.Join(t.TempDir(), "absent"), want) {
		t.Fatal("missing file verified")
	}
}
