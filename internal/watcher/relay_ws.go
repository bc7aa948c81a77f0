package watcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"FaceRec/internal/entity"
	"github.com/gorilla/websocket"
)

// WebsocketRelayClient streams raw snapshots over one websocket connection.
// Each frame gets exactly one envelope back, so calls are serialized.
type WebsocketRelayClient struct {
	url     string
	timeout time.Duration
	dialer  *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
}

func NewWebsocketRelayClient(baseURL string, timeout time.Duration) (*WebsocketRelayClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + analysisPath + "/ws")
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("unsupported relay scheme %q", u.Scheme)
	}

	return &WebsocketRelayClient{
		url:     u.String(),
		timeout: timeout,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
	}, nil
}

func (c *WebsocketRelayClient) Analyze(ctx context.Context, snapshot []byte) (*entity.AnalysisResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(requestTimeout(ctx, c.timeout))
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return nil, c.drop(err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, snapshot); err != nil {
		return nil, c.drop(err)
	}

	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, c.drop(err)
	}
	_, message, err := conn.ReadMessage()
	if err != nil {
		return nil, c.drop(err)
	}

	return decodeEnvelope(http.StatusOK, message)
}

func (c *WebsocketRelayClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *WebsocketRelayClient) connect(ctx context.Context) (*websocket.Conn, error) {
	if c.conn != nil {
		return c.conn, nil
	}

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRelayUnreachable, err)
	}
	c.conn = conn
	return conn, nil
}

// drop discards a broken connection; the next call dials again.
func (c *WebsocketRelayClient) drop(err error) error {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	return fmt.Errorf("%w: %v", ErrRelayUnreachable, err)
}
