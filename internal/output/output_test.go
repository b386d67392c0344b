package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func capture(t *testing.T) (stdout, stderr *bytes.Buffer) {
	t.Helper()
	stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
	oldOut, oldErr := Stdout, Stderr
	Stdout, Stderr = stdout, stderr
	t.Cleanup(func() { Stdout, Stderr = oldOut, oldErr })
	return stdout, stderr
}

func TestMessages(t *testing.T) {
	stdout, stderr := capture(t)

	Success("Imported %d sections", 6)
	Warning("stale port file")
	Error("fetch failed: %s", "boom")

	if !strings.Contains(stdout.String(), "Imported 6 sections") {
		t.Errorf("stdout = %q", stdout.String())
	}
	errOut := stderr.String()
	if !strings.Contains(errOut, "Warning: stale port file") {
		t.Errorf("stderr missing warning: %q", errOut)
	}
	if !strings.Contains(errOut, "Error: fetch failed: boom") {
		t.Errorf("stderr missing error: %q", errOut)
	}
}

func TestJSONError(t *testing.T) {
	stdout, _ := capture(t)

	JSONError("fetch_failed", "Failed to fetch help content")

	var got struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, stdout.String())
	}
	if got.Error.Code != "fetch_failed" || got.Error.Message != "Failed to fetch help content" {
		t.Errorf("unexpected error object %+v", got.Error)
	}
}
