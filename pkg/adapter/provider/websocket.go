// Package provider carries a bound session to the external notification
// service.
package provider

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bellkey/pkg/domain/interfaces"
	"github.com/secmon-lab/bellkey/pkg/domain/model/errs"
	"github.com/secmon-lab/bellkey/pkg/domain/model/notice"
	"github.com/secmon-lab/bellkey/pkg/domain/model/session"
	"github.com/secmon-lab/bellkey/pkg/domain/types"
	"github.com/secmon-lab/bellkey/pkg/utils/errutil"
	"github.com/secmon-lab/bellkey/pkg/utils/logging"
)

const (
	HeaderAPIKey         = "X-Bellkey-Api-Key"
	HeaderUserExternalID = "X-Bellkey-User-External-Id"
	HeaderUserHMAC       = "X-Bellkey-User-Hmac"

	// Time allowed to write the close message to the peer
	writeWait = 5 * time.Second

	maxMessageSize = 64 * 1024
)

// WebSocket opens provider sessions over a WebSocket connection. The bound
// pair and the client-visible API key are sent as handshake headers.
type WebSocket struct {
	endpoint string
	apiKey   types.APIKey
	dialer   *websocket.Dialer
}

var _ interfaces.NotificationProvider = &WebSocket{}

type WebSocketOption func(*WebSocket)

func WithDialer(dialer *websocket.Dialer) WebSocketOption {
	return func(x *WebSocket) {
		x.dialer = dialer
	}
}

func NewWebSocket(endpoint string, apiKey types.APIKey, opts ...WebSocketOption) (*WebSocket, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid provider URL", goerr.V("url", endpoint))
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, goerr.New("provider URL must be ws or wss", goerr.V("url", endpoint))
	}

	x := &WebSocket{
		endpoint: u.String(),
		apiKey:   apiKey,
		dialer:   websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x, nil
}

func (x *WebSocket) Open(ctx context.Context, sess *session.Context) (interfaces.NotificationSession, error) {
	if sess == nil {
		return nil, goerr.New("provider requires a bound session", goerr.Tag(errs.TagInvalidState))
	}
	userID, credential := sess.Pair()

	header := http.Header{}
	header.Set(HeaderAPIKey, x.apiKey.String())
	header.Set(HeaderUserExternalID, userID.String())
	header.Set(HeaderUserHMAC, credential.String())

	conn, resp, err := x.dialer.DialContext(ctx, x.endpoint, header)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return nil, goerr.Wrap(err, "failed to open provider session",
			goerr.Tag(errs.TagTransport),
			goerr.TV(errutil.EndpointKey, x.endpoint),
			goerr.TV(errutil.HTTPStatusKey, status))
	}
	conn.SetReadLimit(maxMessageSize)

	logging.From(ctx).Info("provider session opened", "endpoint", x.endpoint)
	return &wsSession{conn: conn, endpoint: x.endpoint}, nil
}

type wsSession struct {
	conn     *websocket.Conn
	endpoint string

	closeOnce sync.Once
	closeErr  error
}

func (x *wsSession) Receive(ctx context.Context) (*notice.Notification, error) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			// Unblocks ReadJSON below
			_ = x.conn.SetReadDeadline(time.Now())
		case <-done:
		}
	}()

	var msg notice.Notification
	if err := x.conn.ReadJSON(&msg); err != nil {
		if ctx.Err() != nil {
			return nil, goerr.Wrap(ctx.Err(), "receive canceled", goerr.TV(errutil.EndpointKey, x.endpoint))
		}
		return nil, goerr.Wrap(err, "failed to receive notification",
			goerr.Tag(errs.TagTransport),
			goerr.TV(errutil.EndpointKey, x.endpoint))
	}

	if err := msg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid notification",
			goerr.Tag(errs.TagTransport),
			goerr.TV(errutil.EndpointKey, x.endpoint))
	}
	return &msg, nil
}

func (x *wsSession) Close() error {
	x.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = x.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		if err := x.conn.Close(); err != nil {
			x.closeErr = goerr.Wrap(err, "failed to close provider session")
		}
	})
	return x.closeErr
}
