package serve

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestGenerateInstanceID(t *testing.T) {
	id, err := GenerateInstanceID()
	if err != nil {
		t.Fatalf("GenerateInstanceID() error: %v", err)
	}
	if !strings.HasPrefix(id, "srv_") || len(id) != 10 {
		t.Errorf("unexpected id %q", id)
	}

	id2, err := GenerateInstanceID()
	if err != nil {
		t.Fatalf("GenerateInstanceID() second call error: %v", err)
	}
	if id == id2 {
		t.Errorf("expected unique IDs, got %q twice", id)
	}
}

func TestWritePortFileCreatesStateDir(t *testing.T) {
	baseDir := t.TempDir()

	info := &PortInfo{
		Port:       54321,
		PID:        91234,
		StartedAt:  time.Date(2026, 2, 27, 5, 10, 11, 0, time.UTC),
		InstanceID: "srv_8f3b2c",
	}
	if err := WritePortFile(baseDir, info); err != nil {
		t.Fatalf("WritePortFile() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(baseDir, ".helpctl", portFileName))
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if raw["port"].(float64) != 54321 || raw["instance_id"].(string) != "srv_8f3b2c" {
		t.Errorf("unexpected port file contents: %s", data)
	}

	if _, err := os.Stat(filepath.Join(baseDir, ".helpctl", portLockFileName)); err != nil {
		t.Errorf("lock file not created: %v", err)
	}
}

func TestPortFileLifecycle(t *testing.T) {
	baseDir := t.TempDir()
	info := &PortInfo{
		Port:       44444,
		PID:        os.Getpid(),
		StartedAt:  time.Now().Truncate(time.Second).UTC(),
		InstanceID: "srv_round1",
	}

	if err := WritePortFile(baseDir, info); err != nil {
		t.Fatal(err)
	}

	got, err := ReadPortFile(baseDir)
	if err != nil {
		t.Fatal(err)
	}
	if got.Port != info.Port || got.PID != info.PID || got.InstanceID != info.InstanceID {
		t.Errorf("read back %+v, want %+v", got, info)
	}
	if !got.StartedAt.Equal(info.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, info.StartedAt)
	}

	if err := DeletePortFile(baseDir); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadPortFile(baseDir); err == nil {
		t.Error("expected error after delete")
	}
	if err := DeletePortFile(baseDir); err != nil {
		t.Errorf("DeletePortFile() on missing file: %v", err)
	}
}

func TestReadPortFileErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"invalid json", "not json", "parse port file"},
		{"missing port", `{"pid": 123, "instance_id": "srv_abc123"}`, "port"},
		{"missing pid", `{"port": 8080, "instance_id": "srv_abc123"}`, "pid"},
		{"missing instance_id", `{"port": 8080, "pid": 123}`, "instance_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			baseDir := t.TempDir()
			dir := filepath.Join(baseDir, ".helpctl")
			if err := os.MkdirAll(dir, 0755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(dir, portFileName), []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}

			_, err := ReadPortFile(baseDir)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err.Error(), tt.want)
			}
		})
	}

	if _, err := ReadPortFile(t.TempDir()); err == nil {
		t.Error("expected error for missing port file")
	}
}

func TestIsPortFileStaleDeadPID(t *testing.T) {
	// PID 2^30 is outside typical PID ranges on most systems.
	info := &PortInfo{
		Port:       19999,
		PID:        1<<30 + 7,
		StartedAt:  time.Now().UTC(),
		InstanceID: "srv_dead01",
	}
	if !IsPortFileStale(info) {
		t.Error("expected stale for dead PID")
	}
}

func TestDiscoverURL(t *testing.T) {
	srv := NewServer(StaticSource{}, ServeConfig{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	u, err := url.Parse(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatal(err)
	}

	baseDir := t.TempDir()
	if _, ok := DiscoverURL(baseDir); ok {
		t.Fatal("DiscoverURL should fail without a port file")
	}

	info := &PortInfo{Port: port, PID: os.Getpid(), StartedAt: time.Now().UTC(), InstanceID: "srv_live01"}
	if err := WritePortFile(baseDir, info); err != nil {
		t.Fatal(err)
	}

	got, ok := DiscoverURL(baseDir)
	if !ok {
		t.Fatal("DiscoverURL should find the live server")
	}
	if got != "http://localhost:"+u.Port() {
		t.Errorf("DiscoverURL = %q", got)
	}

	resp, err := http.Get(got + "/health")
	if err != nil {
		t.Fatalf("GET discovered /health: %v", err)
	}
	resp.Body.Close()

	// A second server in the same directory is refused while the first is live.
	dup := &PortInfo{Port: port + 1, PID: os.Getpid(), StartedAt: time.Now().UTC(), InstanceID: "srv_live02"}
	if err := WritePortFile(baseDir, dup); err == nil || !strings.Contains(err.Error(), "already running") {
		t.Errorf("expected already running error, got %v", err)
	}
}

func TestIsServerHealthyNoServer(t *testing.T) {
	// Port 1 is privileged and almost certainly not running a health server
	if IsServerHealthy(1) {
		t.Error("expected IsServerHealthy(1) = false")
	}
}

func TestKeepPortFileRestores(t *testing.T) {
	srv := NewServer(StaticSource{}, ServeConfig{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	u, _ := url.Parse(ts.URL)
	port, _ := strconv.Atoi(u.Port())

	baseDir := t.TempDir()
	info := &PortInfo{Port: port, PID: os.Getpid(), StartedAt: time.Now().UTC(), InstanceID: "srv_keep01"}
	if err := WritePortFile(baseDir, info); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- KeepPortFile(ctx, baseDir, info, 10*time.Millisecond) }()

	if err := DeletePortFile(baseDir); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		if got, err := ReadPortFile(baseDir); err == nil && got.InstanceID == "srv_keep01" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("port file was not restored")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("KeepPortFile returned %v", err)
	}
}
