package session

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bellkey/pkg/domain/model/errs"
	"github.com/secmon-lab/bellkey/pkg/domain/types"
)

// Context is the verified (user ID, credential) pair handed to the
// notification provider. The fields are unexported so the pair can only be
// built through Bind and only read together.
type Context struct {
	userID     types.UserID
	credential types.Credential
}

// Bind refuses to build a Context without both halves of the pair.
func Bind(userID types.UserID, credential types.Credential) (*Context, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "cannot bind session", goerr.Tag(errs.TagInvalidState))
	}
	if credential.IsEmpty() {
		return nil, goerr.New("cannot bind session without credential", goerr.Tag(errs.TagInvalidState))
	}

	return &Context{
		userID:     userID,
		credential: credential,
	}, nil
}

// Pair returns the bound user ID and credential.
func (x *Context) Pair() (types.UserID, types.Credential) {
	return x.userID, x.credential
}

func (x *Context) UserID() types.UserID {
	return x.userID
}

func (x *Context) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("user_id", x.userID.String()),
		slog.Any("credential", x.credential),
	)
}
