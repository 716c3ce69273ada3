package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestClient_SendsUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient("modtool-test/1.0 (test@example.com)", time.Second)
	if _, err := c.Get(context.Background(), srv.URL); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "modtool-test/1.0 (test@example.com)" {
		t.Errorf("User-Agent = %q", got)
	}
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := NewClient("ua", time.Second)
	_, err := c.Get(context.Background(), srv.URL)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Get() error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", statusErr.StatusCode)
	}
}

func TestClient_GetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"minecraft":"1.19.2","forge":"43.2.0"}]`)
	}))
	defer srv.Close()

	var out []struct {
		Minecraft string `json:"minecraft"`
		Forge     string `json:"forge"`
	}
	c := NewClient("ua", time.Second)
	if err := c.GetJSON(context.Background(), srv.URL, &out); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if len(out) != 1 || out[0].Forge != "43.2.0" {
		t.Errorf("decoded = %+v", out)
	}
}

func TestClient_DownloadFile(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 64*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprint(len(payload)))
		w.Write(payload)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "mod.jar")
	var last, total int64 = -2, -2
	var calls int
	c := NewClient("ua", time.Second)

	n, err := c.DownloadFile(context.Background(), srv.URL, dest, func(written, tot int64) {
		if written < last {
			t.Errorf("progress went backwards: %d after %d", written, last)
		}
		last, total = written, tot
		calls++
	})
	if err != nil {
		t.Fatalf("DownloadFile failed: %v", err)
	}
	if n != int64(len(payload)) {
		t.Errorf("written = %d, want %d", n, len(payload))
	}
	if total != int64(len(payload)) || last != total {
		t.Errorf("final progress = %d/%d, want %d/%d", last, total, len(payload), len(payload))
	}
	if calls < 2 {
		t.Errorf("expected an initial and at least one chunk callback, got %d", calls)
	}

	info, err := os.Stat(dest)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != int64(len(payload)) {
		t.Errorf("file size = %d, want %d", info.Size(), len(payload))
	}
}

func TestClient_DownloadFileErrorCreatesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "mod.jar")
	c := NewClient("ua", time.Second)
	if _, err := c.DownloadFile(context.Background(), srv.URL, dest, nil); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Errorf("destination should not exist after a failed request, stat err = %v", err)
	}
}

func TestProgressWriter(t *testing.T) {
	var buf bytes.Buffer
	var updates []int64
	pw := &ProgressWriter{
		Writer:   &buf,
		Total:    10,
		OnUpdate: func(written, total int64) { updates = append(updates, written) },
	}

	pw.Write([]byte("hello"))
	pw.Write([]byte("world"))

	if pw.Written != 10 {
		t.Errorf("Written = %d, want 10", pw.Written)
	}
	if len(updates) != 2 || updates[0] != 5 || updates[1] != 10 {
		t.Errorf("updates = %v, want [5 10]", updates)
	}
}
