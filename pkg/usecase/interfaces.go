package usecase

import (
	"context"

	"github.com/secmon-lab/bellkey/pkg/domain/types"
)

// IdentitySource yields the user ID of this client. identity.Store
// implements it.
type IdentitySource interface {
	GetOrCreate(ctx context.Context) types.UserID
}
