// Package transport frames JSON-RPC messages over a byte stream, one
// message per line as MCP stdio expects.
package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/exp/jsonrpc2"
)

// LoggingFramer is a Framer decorator that logs frames on read/write.
type LoggingFramer struct {
	Base   jsonrpc2.Framer // the underlying framer (e.g., NewLineRawFramer)
	Logger *slog.Logger
}

func (f *LoggingFramer) Reader(r io.Reader) jsonrpc2.Reader {
	return &loggingReader{base: f.Base.Reader(r), logger: f.logger()}
}

func (f *LoggingFramer) Writer(w io.Writer) jsonrpc2.Writer {
	return &loggingWriter{base: f.Base.Writer(w), logger: f.logger()}
}

func (f *LoggingFramer) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.Default()
	}
	return f.Logger
}

type loggingReader struct {
	base   jsonrpc2.Reader
	logger *slog.Logger
}

func (r *loggingReader) Read(ctx context.Context) (jsonrpc2.Message, int64, error) {
	msg, n, err := r.base.Read(ctx)
	if err != nil {
		r.logger.Debug("frame read failed", "error", err)
		return msg, n, err
	}
	r.logger.Debug("frame read", "bytes", n, "message", describe(msg))
	return msg, n, err
}

type loggingWriter struct {
	base   jsonrpc2.Writer
	logger *slog.Logger
}

func (w *loggingWriter) Write(ctx context.Context, msg jsonrpc2.Message) (int64, error) {
	n, err := w.base.Write(ctx, msg)
	if err != nil {
		w.logger.Debug("frame write failed", "error", err)
		return n, err
	}
	w.logger.Debug("frame written", "bytes", n, "message", describe(msg))
	return n, err
}

func describe(msg jsonrpc2.Message) string {
	switch m := msg.(type) {
	case *jsonrpc2.Request:
		if m.IsCall() {
			return fmt.Sprintf("call %s id=%v", m.Method, m.ID.Raw())
		}
		return "notification " + m.Method
	case *jsonrpc2.Response:
		if m.Error != nil {
			return fmt.Sprintf("error response id=%v: %v", m.ID.Raw(), m.Error)
		}
		return fmt.Sprintf("response id=%v", m.ID.Raw())
	default:
		return fmt.Sprintf("%T", msg)
	}
}

// NewLineRawFramer returns a Framer that encodes/decodes raw JSON messages
// exactly like RawFramer, but appends a newline at the end of each message
// on the wire.
func NewLineRawFramer() jsonrpc2.Framer {
	return newLineRawFramer{}
}

type newLineRawFramer struct{}

type newLineRawReader struct {
	in *bufio.Reader
	// reject, when set, handles a line that is not a JSON-RPC message and
	// reading goes on with the next line.
	reject func(code int64, message string)
}

type newLineRawWriter struct {
	out io.Writer
	mu  *sync.Mutex
}

func (newLineRawFramer) Reader(r io.Reader) jsonrpc2.Reader {
	return &newLineRawReader{in: bufio.NewReader(r)}
}

func (newLineRawFramer) Writer(w io.Writer) jsonrpc2.Writer {
	return &newLineRawWriter{out: w}
}

func (r *newLineRawReader) Read(ctx context.Context) (jsonrpc2.Message, int64, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		default:
		}

		line, err := r.in.ReadString('\n')
		if err != nil && (err != io.EOF || strings.TrimSpace(line) == "") {
			return nil, 0, err
		}

		// Blank lines between messages are skipped.
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		var raw json.RawMessage
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			if r.reject != nil {
				r.reject(codeParseError, fmt.Sprintf("%v: %v", jsonrpc2.ErrParse, err))
				continue
			}
			return nil, 0, fmt.Errorf("failed to unmarshal JSON: %w", err)
		}

		msg, err := jsonrpc2.DecodeMessage(raw)
		if err != nil && r.reject != nil {
			r.reject(codeInvalidRequest, fmt.Sprintf("%v: %v", jsonrpc2.ErrInvalidRequest, err))
			continue
		}
		return msg, int64(len(line)), err
	}
}

func (w *newLineRawWriter) Write(ctx context.Context, msg jsonrpc2.Message) (int64, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	data, err := jsonrpc2.EncodeMessage(msg)
	if err != nil {
		return 0, fmt.Errorf("marshaling message: %w", err)
	}

	data = append(data, '\n')

	if w.mu != nil {
		w.mu.Lock()
		defer w.mu.Unlock()
	}
	n, err := w.out.Write(data)
	return int64(n), err
}

// Wire codes for requests that never reach a handler.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
)

// NewServerFramer returns a newline framer for the serving side. A line that
// is not valid JSON is answered with a parse error, and a JSON value that is
// not a JSON-RPC message with an invalid request error, both with a null id.
// The connection keeps reading after either.
func NewServerFramer(logger *slog.Logger) jsonrpc2.Framer {
	if logger == nil {
		logger = slog.Default()
	}
	return &serverFramer{logger: logger}
}

type serverFramer struct {
	logger *slog.Logger

	mu  sync.Mutex
	out io.Writer
}

type errorResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Error   struct {
		Code    int64  `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (f *serverFramer) Reader(r io.Reader) jsonrpc2.Reader {
	return &newLineRawReader{in: bufio.NewReader(r), reject: f.reject}
}

func (f *serverFramer) Writer(w io.Writer) jsonrpc2.Writer {
	f.mu.Lock()
	f.out = w
	f.mu.Unlock()
	return &newLineRawWriter{out: w, mu: &f.mu}
}

func (f *serverFramer) reject(code int64, message string) {
	f.logger.Warn("rejected malformed message", "code", code, "error", message)

	resp := errorResponse{JSONRPC: "2.0", ID: json.RawMessage("null")}
	resp.Error.Code = code
	resp.Error.Message = message
	data, err := json.Marshal(resp)
	if err != nil {
		f.logger.Error("encoding error response", "error", err)
		return
	}
	data = append(data, '\n')

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.out == nil {
		return
	}
	if _, err := f.out.Write(data); err != nil {
		f.logger.Debug("writing error response failed", "error", err)
	}
}
