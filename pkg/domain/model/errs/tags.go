package errs

import "github.com/m-mizutani/goerr/v2"

var (
	// Client errors (4xx)
	TagInvalidRequest = goerr.NewTag("invalid_request") // 400
	TagForbidden      = goerr.NewTag("forbidden")       // 403

	// Server errors (5xx)
	TagMisconfigured = goerr.NewTag("misconfigured") // 500, operator fault
	TagInternal      = goerr.NewTag("internal")      // 500

	// Client side failures
	TagTransport    = goerr.NewTag("transport")     // handshake request did not yield a credential
	TagInvalidState = goerr.NewTag("invalid_state") // operation not allowed in the current state
)
