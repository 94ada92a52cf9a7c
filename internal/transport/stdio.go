package transport

import (
	"io"
	"net"
	"sync"
	"time"
)

// stdioListener yields exactly one connection built from a reader and a
// writer, then blocks until closed.
type stdioListener struct {
	handed    chan net.Conn
	done      chan struct{}
	closeOnce sync.Once
}

func newStdioListener(r io.ReadCloser, w io.WriteCloser) *stdioListener {
	l := &stdioListener{
		handed: make(chan net.Conn, 1),
		done:   make(chan struct{}),
	}
	l.handed <- &pipeConn{r: r, w: w}
	return l
}

func (l *stdioListener) Accept() (net.Conn, error) {
	select {
	case c := <-l.handed:
		return c, nil
	case <-l.done:
		return nil, net.ErrClosed
	}
}

func (l *stdioListener) Close() error {
	l.closeOnce.Do(func() { close(l.done) })
	return nil
}

func (l *stdioListener) Addr() net.Addr {
	return uriAddr{network: "stdio", uri: "stdio://"}
}

// pipeConn adapts a reader/writer pair to net.Conn. Deadlines are not
// supported.
type pipeConn struct {
	r io.ReadCloser
	w io.WriteCloser
}

func (c *pipeConn) Read(b []byte) (int, error)  { return c.r.Read(b) }
func (c *pipeConn) Write(b []byte) (int, error) { return c.w.Write(b) }

func (c *pipeConn) Close() error {
	rerr := c.r.Close()
	if werr := c.w.Close(); werr != nil {
		return werr
	}
	return rerr
}

func (c *pipeConn) LocalAddr() net.Addr               { return uriAddr{network: "stdio", uri: "stdio://"} }
func (c *pipeConn) RemoteAddr() net.Addr              { return uriAddr{network: "stdio", uri: "stdio://"} }
func (c *pipeConn) SetDeadline(time.Time) error      { return nil }
func (c *pipeConn) SetReadDeadline(time.Time) error  { return nil }
func (c *pipeConn) SetWriteDeadline(time.Time) error { return nil }
