package transport

import (
	"context"
	"io"
	"sync"
)

// Stream joins a reader and a writer into the io.ReadWriteCloser that
// jsonrpc2.Dial expects, and acts as its own Dialer.
type Stream struct {
	reader io.Reader
	writer io.Writer

	closeOnce sync.Once
	closeErr  error
}

func NewStream(r io.Reader, w io.Writer) *Stream {
	return &Stream{reader: r, writer: w}
}

func (s *Stream) Read(p []byte) (int, error) {
	return s.reader.Read(p)
}

func (s *Stream) Write(p []byte) (int, error) {
	return s.writer.Write(p)
}

// Close closes whichever side implements io.Closer. It is safe to call more
// than once.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		if closer, ok := s.writer.(io.Closer); ok {
			s.closeErr = closer.Close()
		}
		if closer, ok := s.reader.(io.Closer); ok {
			if err := closer.Close(); err != nil && s.closeErr == nil {
				s.closeErr = err
			}
		}
	})
	return s.closeErr
}

func (s *Stream) Dial(ctx context.Context) (io.ReadWriteCloser, error) {
	return s, nil
}
