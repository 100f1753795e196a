package types

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// UserID is the anonymous identifier of one client installation. It is
// opaque to the server; only its presence is checked.
type UserID string

func (x UserID) String() string {
	return string(x)
}

// NewUserID returns a random (v4) identifier. Sequential or time-ordered
// identifiers are not used because the value must not be guessable.
func NewUserID() UserID {
	return UserID(uuid.NewString())
}

func (x UserID) Validate() error {
	if x == EmptyUserID {
		return goerr.New("empty user ID")
	}
	return nil
}

const (
	EmptyUserID UserID = ""
)

// Credential is the base64 encoded HMAC-SHA256 of a UserID. It is only
// meaningful together with the UserID it was computed over.
type Credential string

func (x Credential) String() string {
	return string(x)
}

func (x Credential) IsEmpty() bool {
	return x == ""
}

func (x Credential) LogValue() slog.Value {
	if x == "" {
		return slog.StringValue("")
	}
	return slog.StringValue("[REDACTED]")
}

// SigningSecret is the server-only HMAC key. String and LogValue never expose
// the raw value; use Bytes to feed the MAC.
type SigningSecret string

func (x SigningSecret) Bytes() []byte {
	return []byte(x)
}

func (x SigningSecret) IsEmpty() bool {
	return x == ""
}

func (x SigningSecret) String() string {
	if x == "" {
		return ""
	}
	return "[REDACTED]"
}

func (x SigningSecret) LogValue() slog.Value {
	return slog.StringValue(x.String())
}

// APIKey authorizes the provider connection. It is client-visible and is not
// part of the MAC computation.
type APIKey string

func (x APIKey) String() string {
	return string(x)
}
