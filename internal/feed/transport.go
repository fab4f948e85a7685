package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rileyhilliard/nevconsole/internal/errors"
)

// MaxFrameBytes bounds a single state frame.
const MaxFrameBytes = 1 << 20

// Conn is an open state feed transport.
type Conn interface {
	ReadMessage() (messageType int, data []byte, err error)
	Close() error
}

// Dialer opens state feed transports.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// WebsocketDialer dials the feed over gorilla/websocket.
type WebsocketDialer struct {
	HandshakeTimeout time.Duration
	Header           http.Header
}

// Dial opens a websocket to url.
func (d WebsocketDialer) Dial(ctx context.Context, url string) (Conn, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: d.HandshakeTimeout,
	}
	if dialer.HandshakeTimeout == 0 {
		dialer.HandshakeTimeout = 5 * time.Second
	}

	conn, resp, err := dialer.DialContext(ctx, url, d.Header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		status := ""
		if resp != nil {
			status = fmt.Sprintf(" (HTTP %d)", resp.StatusCode)
		}
		return nil, errors.WrapWithCode(err, errors.ErrTransport,
			fmt.Sprintf("Couldn't open state feed at %s%s", url, status),
			"Check that the console backend is running and reachable")
	}
	conn.SetReadLimit(MaxFrameBytes)
	return conn, nil
}

// URL derives the websocket endpoint from the backend base URL. http and
// https map to ws and wss; ws and wss are kept as given.
func URL(server, path string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(server))
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Invalid server URL %q", server),
			"Use a full URL like http://vehicle-console:8080")
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", errors.New(errors.ErrConfig,
			fmt.Sprintf("Server URL %q has unsupported scheme %q", server, u.Scheme),
			"Use http://, https://, ws:// or wss://")
	}
	if u.Host == "" {
		return "", errors.New(errors.ErrConfig,
			fmt.Sprintf("Server URL %q has no host", server),
			"Use a full URL like http://vehicle-console:8080")
	}

	if path == "" {
		path = "/ws"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
