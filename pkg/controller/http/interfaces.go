package http

import (
	"context"

	"github.com/secmon-lab/bellkey/pkg/domain/types"
)

// Signer is implemented by signer.Signer.
type Signer interface {
	Sign(id types.UserID) (types.Credential, error)
	IssueUserToken(ctx context.Context, id types.UserID, apiKey types.APIKey) (string, error)
}
