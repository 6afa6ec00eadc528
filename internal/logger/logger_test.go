package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// blockingWriter simulates a stalled console.
// Write blocks until Unblock() is called.
type blockingWriter struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	blockCh chan struct{}
}

func newBlockingWriter() *blockingWriter {
	return &blockingWriter{blockCh: make(chan struct{})}
}

func (w *blockingWriter) Write(p []byte) (int, error) {
	<-w.blockCh
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func (w *blockingWriter) Unblock() { close(w.blockCh) }

func (w *blockingWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

func TestAsyncWriter_DoesNotBlockCaller(t *testing.T) {
	bw := newBlockingWriter()
	aw := newAsyncWriter(bw, 100)
	defer aw.Close()

	done := make(chan struct{})
	go func() {
		if _, err := aw.Write([]byte("hello")); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Write blocked - asyncWriter should return immediately")
	}

	bw.Unblock()
	time.Sleep(50 * time.Millisecond)
	if bw.String() != "hello" {
		t.Errorf("expected %q, got %q", "hello", bw.String())
	}
}

func TestAsyncWriter_CloseDrains(t *testing.T) {
	var buf bytes.Buffer
	aw := newAsyncWriter(&buf, 100)

	aw.Write([]byte("a"))
	aw.Write([]byte("b"))
	aw.Close()

	if buf.String() != "ab" {
		t.Errorf("expected %q, got %q", "ab", buf.String())
	}
}

func TestAsyncWriter_WriteAfterClose(t *testing.T) {
	var buf bytes.Buffer
	aw := newAsyncWriter(&buf, 100)
	aw.Close()

	n, err := aw.Write([]byte("after-close"))
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if n != len("after-close") {
		t.Errorf("expected n=%d, got %d", len("after-close"), n)
	}
}

func TestInit_WritesToRotatedFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "nested", "turnoff.log")

	if err := Init(Config{Level: "info", FilePath: logFile}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	log := WithComponent("test")
	log.Info().Msg("display off")

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), `"component":"test"`) {
		t.Errorf("expected component field in %s", data)
	}
}

func TestInit_FixedFormat(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "turnoff.log")

	if err := Init(Config{Level: "debug", FilePath: logFile, Format: "fixed"}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	log := WithComponent("session")
	log.Info().Str("method", "dpms-xset").Msg("Turn display off")

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, "[INF] [session        ] Turn display off method=dpms-xset") {
		t.Errorf("unexpected fixed-format line: %q", line)
	}
}

func TestInit_ReInitKeepsWriting(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "turnoff.log")
	cfg := Config{Level: "info", FilePath: logFile}

	if err := Init(cfg); err != nil {
		t.Fatalf("first Init failed: %v", err)
	}
	Info().Msg("first message")

	if err := Init(cfg); err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	Info().Msg("second message")

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !bytes.Contains(data, []byte("first message")) {
		t.Error("log file missing 'first message'")
	}
	if !bytes.Contains(data, []byte("second message")) {
		t.Error("log file missing 'second message'")
	}
}
