package usecase

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bellkey/pkg/domain/interfaces"
	"github.com/secmon-lab/bellkey/pkg/domain/model/errs"
	"github.com/secmon-lab/bellkey/pkg/domain/model/session"
	"github.com/secmon-lab/bellkey/pkg/domain/types"
	"github.com/secmon-lab/bellkey/pkg/utils/clock"
	"github.com/secmon-lab/bellkey/pkg/utils/errutil"
	"github.com/secmon-lab/bellkey/pkg/utils/logging"
)

type State int

const (
	StateIdle State = iota
	StatePending
	StateReady
	StateFailed
)

func (x State) String() string {
	switch x {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Observer is called after every state transition, outside of any lock.
type Observer func(ctx context.Context, state State)

// Bootstrap runs the identity handshake: it obtains the user ID, asks the
// signer for its credential once, and binds the pair into a session.Context.
// A failed handshake is not retried; a new Bootstrap is needed for that.
type Bootstrap struct {
	identities IdentitySource
	client     interfaces.CredentialClient
	observers  []Observer
	report     func(ctx context.Context, err error)

	mu         sync.Mutex
	state      State
	userID     string
	sess       *session.Context
	err        error
	generation uint64
	closed     bool
}

type BootstrapOption func(*Bootstrap)

func WithObserver(observer Observer) BootstrapOption {
	return func(b *Bootstrap) {
		b.observers = append(b.observers, observer)
	}
}

// WithReporter replaces the observability sink for handshake failures.
// errs.Handle is used by default.
func WithReporter(report func(ctx context.Context, err error)) BootstrapOption {
	return func(b *Bootstrap) {
		b.report = report
	}
}

func NewBootstrap(identities IdentitySource, client interfaces.CredentialClient, opts ...BootstrapOption) *Bootstrap {
	b := &Bootstrap{
		identities: identities,
		client:     client,
		report:     errs.Handle,
		state:      StateIdle,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bootstrap) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Err returns the failure of the last handshake, if any.
func (b *Bootstrap) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Session returns the bound pair. It fails unless the handshake is Ready, so
// dependent behaviour cannot start while pending or after a failure.
func (b *Bootstrap) Session() (*session.Context, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateReady {
		return nil, goerr.New("session is not ready",
			goerr.Tag(errs.TagInvalidState),
			goerr.TV(errutil.StateKey, b.state.String()))
	}
	return b.sess, nil
}

// Close discards the outcome of any in-flight handshake and refuses new
// ones.
func (b *Bootstrap) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

// Run performs the handshake for the current user ID. It issues at most one
// request per user ID: later calls return the recorded outcome. If the user
// ID changed since the last run, the handshake restarts from Pending.
func (b *Bootstrap) Run(ctx context.Context) (*session.Context, error) {
	userID := b.identities.GetOrCreate(ctx)
	ctx = logging.WithAttrs(ctx, "user_id", userID)
	logger := logging.From(ctx)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, goerr.Wrap(errs.ErrHandshakeDiscarded, "bootstrap is closed", goerr.Tag(errs.TagInvalidState))
	}

	if b.state != StateIdle && b.userID == userID.String() {
		state, sess, err := b.state, b.sess, b.err
		b.mu.Unlock()

		if state == StatePending {
			return nil, goerr.New("handshake already in progress",
				goerr.Tag(errs.TagInvalidState),
				goerr.TV(errutil.StateKey, state.String()))
		}
		return sess, err
	}

	if b.state != StateIdle {
		logger.Info("user ID changed, restarting handshake")
	}

	b.generation++
	generation := b.generation
	b.userID = userID.String()
	b.sess = nil
	b.err = nil
	b.state = StatePending
	b.mu.Unlock()
	b.notify(ctx, StatePending)

	startedAt := clock.Now(ctx)
	sess, err := b.handshake(ctx, userID)

	b.mu.Lock()
	if b.closed || generation != b.generation {
		b.mu.Unlock()
		logger.Debug("discarding stale handshake result")
		return nil, goerr.Wrap(errs.ErrHandshakeDiscarded, "handshake superseded", goerr.Tag(errs.TagInvalidState))
	}

	if err != nil {
		b.state = StateFailed
		b.err = err
		b.mu.Unlock()

		b.notify(ctx, StateFailed)
		b.report(ctx, err)
		return nil, err
	}

	b.state = StateReady
	b.sess = sess
	b.mu.Unlock()

	logger.Info("handshake completed", "duration", clock.Since(ctx, startedAt))
	b.notify(ctx, StateReady)
	return sess, nil
}

func (b *Bootstrap) handshake(ctx context.Context, userID types.UserID) (*session.Context, error) {
	credential, err := b.client.FetchCredential(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "handshake failed", goerr.Tag(errs.TagTransport))
	}

	sess, err := session.Bind(userID, credential)
	if err != nil {
		return nil, goerr.Wrap(err, "handshake returned an unusable credential", goerr.Tag(errs.TagTransport))
	}
	return sess, nil
}

func (b *Bootstrap) notify(ctx context.Context, state State) {
	for _, observer := range b.observers {
		observer(ctx, state)
	}
}
