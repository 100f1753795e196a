package errs

import (
	"errors"
)

var ErrSigningSecretNotConfigured = errors.New("signing secret is not configured")
var ErrEmptyUserID = errors.New("user ID is empty")
var ErrHandshakeDiscarded = errors.New("handshake result discarded")
