// Package transport turns listen URIs into net.Listeners for the gRPC server.
//
// Supported URIs:
//
//	tcp://<host>:<port>
//	unix://<path>
//	ws://<host>:<port>[/path]   gRPC over a binary WebSocket
//	mem://                      in-process, see NewMemListener
//	stdio://                    a single connection over stdin/stdout
package transport

import (
	"net"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

// Listen opens a listener for uri.
func Listen(uri string) (net.Listener, error) {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return nil, errors.Newf("invalid listen URI %q: missing scheme", uri)
	}

	switch scheme {
	case "tcp":
		return net.Listen("tcp", rest)
	case "unix":
		if rest == "" {
			return nil, errors.Newf("invalid listen URI %q: missing socket path", uri)
		}
		if err := os.Remove(rest); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "remove stale socket %s", rest)
		}
		return net.Listen("unix", rest)
	case "ws":
		return listenWebSocket(rest)
	case "mem":
		return NewMemListener(), nil
	case "stdio":
		return newStdioListener(os.Stdin, os.Stdout), nil
	default:
		return nil, errors.Newf("unsupported transport scheme %q", scheme)
	}
}
