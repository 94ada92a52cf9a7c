package transport

import (
	"context"
	"net"
	"sync"
)

// MemListener is an in-process listener. Dial hands one end of a net.Pipe
// to Accept and returns the other.
type MemListener struct {
	conns     chan net.Conn
	done      chan struct{}
	closeOnce sync.Once
}

// NewMemListener returns an open MemListener.
func NewMemListener() *MemListener {
	return &MemListener{
		conns: make(chan net.Conn),
		done:  make(chan struct{}),
	}
}

// Accept waits for the next Dial.
func (l *MemListener) Accept() (net.Conn, error) {
	select {
	case c := <-l.conns:
		return c, nil
	case <-l.done:
		return nil, net.ErrClosed
	}
}

// Dial connects to the listener.
func (l *MemListener) Dial() (net.Conn, error) {
	return l.DialContext(context.Background())
}

// DialContext connects to the listener or gives up when ctx is done.
func (l *MemListener) DialContext(ctx context.Context) (net.Conn, error) {
	server, client := net.Pipe()
	select {
	case l.conns <- server:
		return client, nil
	case <-l.done:
		server.Close()
		client.Close()
		return nil, net.ErrClosed
	case <-ctx.Done():
		server.Close()
		client.Close()
		return nil, ctx.Err()
	}
}

func (l *MemListener) Close() error {
	l.closeOnce.Do(func() { close(l.done) })
	return nil
}

func (l *MemListener) Addr() net.Addr {
	return uriAddr{network: "mem", uri: "mem://"}
}

// uriAddr reports a listener address as its URI.
type uriAddr struct {
	network string
	uri     string
}

func (a uriAddr) Network() string { return a.network }
func (a uriAddr) String() string  { return a.uri }
