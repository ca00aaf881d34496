package lock

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/openfare/openfare-rs/pkg/errors"
)

func writeLock(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Absent(t *testing.T) {
	lock, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("absence must not be an error, got %v", err)
	}
	if lock != nil {
		t.Errorf("expected nil lock, got %v", lock)
	}
}

func TestLoad_Valid(t *testing.T) {
	dir := t.TempDir()
	writeLock(t, dir, `{"plans": {"0": {"type": "voluntary"}}, "payees": {"alice": {"url": "https://example.com"}}}`)

	lock, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if lock == nil {
		t.Fatal("expected lock, got nil")
	}
	if _, ok := lock["plans"]; !ok {
		t.Error("expected plans field to be preserved")
	}
	if _, ok := lock["payees"]; !ok {
		t.Error("expected payees field to be preserved")
	}
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated", `{"plans": `},
		{"array", `[1, 2, 3]`},
		{"scalar", `42`},
		{"null", `null`},
		{"trailing garbage", `{} {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeLock(t, dir, tt.content)

			_, err := Load(dir)
			if err == nil {
				t.Fatal("expected parse error")
			}
			if !errors.Is(err, errors.ErrCodeLockParse) {
				t.Errorf("expected LOCK_PARSE_ERROR, got %q", errors.GetCode(err))
			}
			if got := err.Error(); !strings.Contains(got, path) {
				t.Errorf("error %q should name the file path %q", got, path)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	original := Lock{
		"plans":  json.RawMessage(`{"0":{"type":"compulsory","total":"50.00"}}`),
		"payees": json.RawMessage(`{"bob":{"payment-methods":["paypal"]}}`),
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	writeLock(t, dir, string(data))

	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(got, original) {
		t.Errorf("round trip mismatch:\n got %v\nwant %v", got, original)
	}
}
