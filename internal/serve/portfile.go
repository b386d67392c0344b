package serve

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	stateDir         = ".helpctl"
	portFileName     = "serve-port"
	portLockFileName = "serve-port.lock"
	instancePrefix   = "srv_"
	healthTimeout    = 2 * time.Second
)

// PortInfo contains the metadata written to the port file when the server starts.
type PortInfo struct {
	Port       int       `json:"port"`
	PID        int       `json:"pid"`
	StartedAt  time.Time `json:"started_at"`
	InstanceID string    `json:"instance_id"`
}

// BaseURL is the URL a local client uses to reach the server.
func (p *PortInfo) BaseURL() string {
	return fmt.Sprintf("http://localhost:%d", p.Port)
}

// GenerateInstanceID creates a new random instance ID with the srv_ prefix
// and 6 random hex characters (e.g. "srv_8f3b2c").
func GenerateInstanceID() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate instance id: %w", err)
	}
	return instancePrefix + hex.EncodeToString(b), nil
}

func portFilePath(baseDir string) string {
	return filepath.Join(baseDir, stateDir, portFileName)
}

func portLockFilePath(baseDir string) string {
	return filepath.Join(baseDir, stateDir, portLockFileName)
}

// WritePortFile writes baseDir/.helpctl/serve-port while holding an
// exclusive lock, so only one server per directory can register itself.
func WritePortFile(baseDir string, info *PortInfo) error {
	if err := os.MkdirAll(filepath.Join(baseDir, stateDir), 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	lockPath := portLockFilePath(baseDir)
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("open port lock file: %w", err)
	}
	defer lockFile.Close()

	if err := acquireFileLockTimeout(lockFile, 5*time.Second); err != nil {
		return fmt.Errorf("acquire port lock: %w", err)
	}
	defer releaseFileLock(lockFile)

	// Re-check under lock to avoid a startup race between parallel processes.
	if existing, err := ReadPortFile(baseDir); err == nil {
		if !IsPortFileStale(existing) {
			return fmt.Errorf("helpctl serve already running on port %d (pid %d)", existing.Port, existing.PID)
		}
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal port info: %w", err)
	}

	if err := os.WriteFile(portFilePath(baseDir), data, 0644); err != nil {
		return fmt.Errorf("write port file: %w", err)
	}

	return nil
}

// ReadPortFile reads and parses baseDir/.helpctl/serve-port.
// Returns an error if the file doesn't exist or is missing required fields.
func ReadPortFile(baseDir string) (*PortInfo, error) {
	data, err := os.ReadFile(portFilePath(baseDir))
	if err != nil {
		return nil, fmt.Errorf("read port file: %w", err)
	}

	var info PortInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse port file: %w", err)
	}

	if info.Port == 0 {
		return nil, fmt.Errorf("port file missing required field: port")
	}
	if info.PID == 0 {
		return nil, fmt.Errorf("port file missing required field: pid")
	}
	if info.InstanceID == "" {
		return nil, fmt.Errorf("port file missing required field: instance_id")
	}

	return &info, nil
}

// DeletePortFile removes the port file. Called on server shutdown.
func DeletePortFile(baseDir string) error {
	if err := os.Remove(portFilePath(baseDir)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove port file: %w", err)
	}
	return nil
}

// KeepPortFile rewrites the port file every interval if it has been removed
// or taken over, until ctx is cancelled. Write failures are logged and
// retried on the next tick.
func KeepPortFile(ctx context.Context, baseDir string, info *PortInfo, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			current, err := ReadPortFile(baseDir)
			if err == nil && current.InstanceID == info.InstanceID {
				continue
			}
			if err := WritePortFile(baseDir, info); err != nil {
				slog.Warn("restore port file", "err", err)
				continue
			}
			slog.Info("port file restored", "port", info.Port)
		}
	}
}

// DiscoverURL returns the base URL of a live server registered in baseDir.
// ok is false when there is no port file or it is stale.
func DiscoverURL(baseDir string) (url string, ok bool) {
	info, err := ReadPortFile(baseDir)
	if err != nil || IsPortFileStale(info) {
		return "", false
	}
	return info.BaseURL(), true
}

// IsServerHealthy checks if a server at the given port is alive by sending
// an HTTP GET to localhost:{port}/health. Returns true only if a 200 response
// is received within the health timeout.
func IsServerHealthy(port int) bool {
	client := &http.Client{Timeout: healthTimeout}
	resp, err := client.Get(fmt.Sprintf("http://localhost:%d/health", port))
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// IsPortFileStale reports whether the port file describes a server that is
// no longer running: its PID is gone or its health endpoint is silent.
func IsPortFileStale(info *PortInfo) bool {
	if !isProcessAlive(info.PID) {
		return true
	}
	return !IsServerHealthy(info.Port)
}

// acquireFileLockTimeout retries tryLock with exponential backoff until the
// lock is held or timeout elapses.
func acquireFileLockTimeout(f *os.File, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	backoff := 5 * time.Millisecond
	const maxBackoff = 50 * time.Millisecond

	for {
		if err := tryLock(f); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout after %v waiting for port file lock", timeout)
		}
		time.Sleep(backoff)
		backoff = min(backoff*2, maxBackoff)
	}
}
