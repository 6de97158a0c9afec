package observer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptrace"
	"sync"
)

// Trace attaches connection and header-write hooks to ctx.
func (r *Recorder) Trace(ctx context.Context) context.Context {
	if r == nil {
		return ctx
	}
	var (
		mu          sync.Mutex
		headerCount int
		headerBytes int
	)
	return httptrace.WithClientTrace(ctx, &httptrace.ClientTrace{
		ConnectDone: func(network, addr string, err error) {
			if err != nil {
				return
			}
			r.Notify(Connect, "network", network, "address", addr)
		},
		WroteHeaderField: func(key string, value []string) {
			mu.Lock()
			headerCount++
			headerBytes += len(key) + 2
			for _, v := range value {
				headerBytes += len(v) + 2
			}
			mu.Unlock()
		},
		WroteHeaders: func() {
			// redirects and the digest retry reuse this trace
			mu.Lock()
			n, size := headerCount, headerBytes
			headerCount, headerBytes = 0, 0
			mu.Unlock()
			r.Notify(SentHeaders, "headers", n, "bytes", size)
		},
	})
}

// WrapTransport decorates next so request and response bodies report their
// progress and the response close reports the disconnect.
func (r *Recorder) WrapTransport(next http.RoundTripper) http.RoundTripper {
	if r == nil {
		return next
	}
	return &transport{next: next, rec: r}
}

type transport struct {
	next http.RoundTripper
	rec  *Recorder
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil && req.Body != http.NoBody {
		clone := req.Clone(req.Context())
		clone.Body = &body{rc: req.Body, rec: t.rec, part: SentBodyPart, done: SentBody}
		req = clone
	}
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	t.rec.Notify(ReceivedHeaders,
		"status", resp.StatusCode,
		"proto", resp.Proto,
		"headers", len(resp.Header),
		"content_length", resp.ContentLength,
	)
	if resp.Body != nil {
		resp.Body = &body{rc: resp.Body, rec: t.rec, part: ReceivedBodyPart, done: ReceivedBody, closeKind: Disconnect}
	}
	return resp, nil
}

// body reports each chunk read, the total once at EOF (or at Close when EOF
// was never observed) and optionally a final event on Close.
type body struct {
	rc        io.ReadCloser
	rec       *Recorder
	part      EventKind
	done      EventKind
	closeKind EventKind

	mu       sync.Mutex
	total    int64
	finished bool
	closed   bool
}

func (b *body) Read(p []byte) (int, error) {
	n, err := b.rc.Read(p)
	if n > 0 {
		b.mu.Lock()
		b.total += int64(n)
		b.mu.Unlock()
		b.rec.Notify(b.part, "bytes", n)
	}
	if errors.Is(err, io.EOF) {
		b.finish()
	}
	return n, err
}

func (b *body) finish() {
	b.mu.Lock()
	if b.finished {
		b.mu.Unlock()
		return
	}
	b.finished = true
	total := b.total
	b.mu.Unlock()
	b.rec.Notify(b.done, "bytes", total)
}

func (b *body) Close() error {
	b.finish()
	err := b.rc.Close()
	b.mu.Lock()
	first := !b.closed
	b.closed = true
	b.mu.Unlock()
	if first && b.closeKind != "" {
		b.rec.Notify(b.closeKind)
	}
	return err
}
