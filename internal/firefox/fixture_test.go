package firefox

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/pierrec/lz4/v4"
)

// encodeMozLz4 wraps data the way Firefox writes session files.
func encodeMozLz4(t *testing.T, data []byte) []byte {
	t.Helper()
	block := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, block, nil)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	out := append([]byte(nil), mozLz4Magic...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(data)))
	return append(out, block[:n]...)
}

// writeSession stores sessionJSON as sessionstore-backups/<name> inside
// profileDir.
func writeSession(t *testing.T, profileDir, name, sessionJSON string) {
	t.Helper()
	dir := filepath.Join(profileDir, "sessionstore-backups")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), encodeMozLz4(t, []byte(sessionJSON)), 0o644); err != nil {
		t.Fatal(err)
	}
}

// oneTab is a session with a single tab showing url.
func oneTab(url, title string) string {
	return `{"windows":[{"tabs":[{"entries":[{"url":"` + url + `","title":"` + title + `"}],"index":1}]}]}`
}
