package transport

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"nhooyr.io/websocket"

	"github.com/organic-programming/sophia-kin/internal/logging"
)

// WebSocketSubprotocol is the subprotocol clients must offer.
const WebSocketSubprotocol = "grpc"

// wsListener accepts WebSocket upgrades over HTTP and yields each one as a
// net.Conn carrying binary messages.
type wsListener struct {
	tcp       net.Listener
	srv       *http.Server
	path      string
	conns     chan net.Conn
	done      chan struct{}
	closeOnce sync.Once
}

func listenWebSocket(hostPath string) (net.Listener, error) {
	host, path := hostPath, "/grpc"
	if i := strings.IndexByte(hostPath, '/'); i >= 0 {
		host, path = hostPath[:i], hostPath[i:]
	}

	tcp, err := net.Listen("tcp", host)
	if err != nil {
		return nil, errors.Wrapf(err, "listen ws %s", host)
	}

	l := &wsListener{
		tcp:   tcp,
		path:  path,
		conns: make(chan net.Conn),
		done:  make(chan struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc(path, l.handle)
	l.srv = &http.Server{Handler: mux}

	go func() {
		if err := l.srv.Serve(tcp); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.Warnw("websocket listener stopped", "addr", tcp.Addr().String(), "error", err)
		}
	}()
	return l, nil
}

func (l *wsListener) handle(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols: []string{WebSocketSubprotocol},
	})
	if err != nil {
		logging.Logger.Debugw("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	// The request context ends when this handler returns, so the handler
	// stays until the connection is closed.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	conn := &closeNotifyConn{Conn: websocket.NetConn(ctx, c, websocket.MessageBinary), closed: make(chan struct{})}

	select {
	case l.conns <- conn:
	case <-l.done:
		c.Close(websocket.StatusGoingAway, "listener closed")
		return
	}

	select {
	case <-conn.closed:
	case <-l.done:
		conn.Close()
	}
}

func (l *wsListener) Accept() (net.Conn, error) {
	select {
	case c := <-l.conns:
		return c, nil
	case <-l.done:
		return nil, net.ErrClosed
	}
}

func (l *wsListener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.done)
		err = l.srv.Close()
	})
	return err
}

// Addr returns the URL clients dial, e.g. ws://127.0.0.1:43121/grpc.
func (l *wsListener) Addr() net.Addr {
	return uriAddr{network: "ws", uri: "ws://" + l.tcp.Addr().String() + l.path}
}

type closeNotifyConn struct {
	net.Conn
	once   sync.Once
	closed chan struct{}
}

func (c *closeNotifyConn) Close() error {
	err := c.Conn.Close()
	c.once.Do(func() { close(c.closed) })
	return err
}
