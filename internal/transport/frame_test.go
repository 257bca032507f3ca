package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"golang.org/x/exp/jsonrpc2"
)

func TestNewLineRawFramerRoundTrip(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	framer := NewLineRawFramer()

	call, err := jsonrpc2.NewCall(jsonrpc2.Int64ID(7), "tools/list", map[string]any{"cursor": nil})
	if err != nil {
		t.Fatalf("NewCall failed: %v", err)
	}
	if _, err := framer.Writer(&buf).Write(ctx, call); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !strings.HasSuffix(buf.String(), "\n") || strings.Count(buf.String(), "\n") != 1 {
		t.Fatalf("expected exactly one newline-terminated frame, got %q", buf.String())
	}

	msg, n, err := framer.Reader(&buf).Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n == 0 {
		t.Error("expected a non-zero frame size")
	}
	req, ok := msg.(*jsonrpc2.Request)
	if !ok {
		t.Fatalf("expected *jsonrpc2.Request, got %T", msg)
	}
	if req.Method != "tools/list" || !req.IsCall() {
		t.Errorf("unexpected request: %+v", req)
	}
}

func TestNewLineRawReaderSkipsBlankLines(t *testing.T) {
	in := strings.NewReader("\n  \n{\"jsonrpc\":\"2.0\",\"method\":\"ping\",\"id\":1}\n\n")
	reader := NewLineRawFramer().Reader(in)

	msg, _, err := reader.Read(context.Background())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if req, ok := msg.(*jsonrpc2.Request); !ok || req.Method != "ping" {
		t.Fatalf("unexpected message: %#v", msg)
	}

	if _, _, err := reader.Read(context.Background()); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF after the last frame, got %v", err)
	}
}

func TestNewLineRawReaderLastLineWithoutNewline(t *testing.T) {
	in := strings.NewReader(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	msg, _, err := NewLineRawFramer().Reader(in).Read(context.Background())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if req, ok := msg.(*jsonrpc2.Request); !ok || req.IsCall() {
		t.Fatalf("expected a notification, got %#v", msg)
	}
}

func TestNewLineRawReaderInvalidJSON(t *testing.T) {
	in := strings.NewReader("{not json}\n")
	if _, _, err := NewLineRawFramer().Reader(in).Read(context.Background()); err == nil {
		t.Fatal("expected an error for invalid JSON")
	}
}

func TestServerFramerAnswersMalformedLines(t *testing.T) {
	var out bytes.Buffer
	framer := NewServerFramer(slog.New(slog.NewTextHandler(io.Discard, nil)))
	_ = framer.Writer(&out)

	in := strings.NewReader("{not json\n[1,2]\n{\"jsonrpc\":\"2.0\",\"method\":\"ping\",\"id\":1}\n")
	msg, _, err := framer.Reader(in).Read(context.Background())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if req, ok := msg.(*jsonrpc2.Request); !ok || req.Method != "ping" {
		t.Fatalf("expected the ping after the bad lines, got %#v", msg)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two error responses, got %q", out.String())
	}
	for i, code := range []int64{-32700, -32600} {
		var resp struct {
			JSONRPC string          `json:"jsonrpc"`
			ID      json.RawMessage `json:"id"`
			Error   struct {
				Code int64 `json:"code"`
			} `json:"error"`
		}
		if err := json.Unmarshal([]byte(lines[i]), &resp); err != nil {
			t.Fatalf("response %d is not JSON: %v", i, err)
		}
		if resp.JSONRPC != "2.0" || string(resp.ID) != "null" || resp.Error.Code != code {
			t.Errorf("response %d = %s, want code %d with a null id", i, lines[i], code)
		}
	}
}

func TestNewLineRawReaderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in := strings.NewReader("{}\n")
	if _, _, err := NewLineRawFramer().Reader(in).Read(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestLoggingFramer(t *testing.T) {
	var logs, wire bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	framer := &LoggingFramer{Base: NewLineRawFramer(), Logger: logger}

	note, err := jsonrpc2.NewNotification("notifications/initialized", nil)
	if err != nil {
		t.Fatalf("NewNotification failed: %v", err)
	}
	if _, err := framer.Writer(&wire).Write(context.Background(), note); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, _, err := framer.Reader(&wire).Read(context.Background()); err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	out := logs.String()
	for _, want := range []string{"frame written", "frame read", "notification notifications/initialized"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

type closeRecorder struct {
	io.Reader
	io.Writer
	closed int
}

func (c *closeRecorder) Close() error {
	c.closed++
	return nil
}

func TestStreamCloseOnce(t *testing.T) {
	rw := &closeRecorder{Reader: strings.NewReader(""), Writer: io.Discard}
	s := NewStream(rw, rw)

	conn, err := s.Dial(context.Background())
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	_ = conn.Close()
	_ = s.Close()

	if rw.closed != 2 {
		t.Errorf("expected reader and writer closed once each, got %d closes", rw.closed)
	}
}
