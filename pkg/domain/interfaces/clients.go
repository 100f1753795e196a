package interfaces

import (
	"context"

	"github.com/m-mizutani/opaq"
	"github.com/secmon-lab/bellkey/pkg/domain/model/notice"
	"github.com/secmon-lab/bellkey/pkg/domain/model/session"
	"github.com/secmon-lab/bellkey/pkg/domain/types"
)

// CredentialClient asks the signer for the credential of a user ID. Any
// failure to obtain a non-empty credential is returned as an error.
type CredentialClient interface {
	FetchCredential(ctx context.Context, userID types.UserID) (types.Credential, error)
}

// NotificationProvider opens an authenticated session with the external
// notification service using the bound pair as its only input.
type NotificationProvider interface {
	Open(ctx context.Context, sess *session.Context) (NotificationSession, error)
}

type NotificationSession interface {
	// Receive blocks until the next notification arrives, ctx is done or the
	// session is closed.
	Receive(ctx context.Context) (*notice.Notification, error)
	Close() error
}

type PolicyClient interface {
	Query(context.Context, string, any, any, ...opaq.QueryOption) error
}
