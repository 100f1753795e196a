package provider

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bellkey/pkg/domain/interfaces"
	"github.com/secmon-lab/bellkey/pkg/domain/model/errs"
	"github.com/secmon-lab/bellkey/pkg/domain/model/notice"
	"github.com/secmon-lab/bellkey/pkg/domain/model/session"
	"github.com/secmon-lab/bellkey/pkg/utils/logging"
)

// Discard accepts any bound session and never delivers a notification. It is
// used when no provider URL is configured.
type Discard struct{}

var _ interfaces.NotificationProvider = Discard{}

func (Discard) Open(ctx context.Context, sess *session.Context) (interfaces.NotificationSession, error) {
	if sess == nil {
		return nil, goerr.New("provider requires a bound session", goerr.Tag(errs.TagInvalidState))
	}
	logging.From(ctx).Debug("provider is not configured, discarding notifications")
	return &discardSession{closed: make(chan struct{})}, nil
}

type discardSession struct {
	once   sync.Once
	closed chan struct{}
}

func (x *discardSession) Receive(ctx context.Context) (*notice.Notification, error) {
	select {
	case <-ctx.Done():
		return nil, goerr.Wrap(ctx.Err(), "receive canceled")
	case <-x.closed:
		return nil, goerr.New("session closed", goerr.Tag(errs.TagInvalidState))
	}
}

func (x *discardSession) Close() error {
	x.once.Do(func() { close(x.closed) })
	return nil
}
