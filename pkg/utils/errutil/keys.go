package errutil

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

var (
	// Client side handshake
	EndpointKey   = goerr.NewTypedKey[string]("endpoint")
	HTTPStatusKey = goerr.NewTypedKey[int]("http_status")
	StateKey      = goerr.NewTypedKey[string]("state")
	TimeoutKey    = goerr.NewTypedKey[time.Duration]("timeout")

	// Storage
	StoreKey    = goerr.NewTypedKey[string]("store")
	BucketKey   = goerr.NewTypedKey[string]("bucket")
	FilePathKey = goerr.NewTypedKey[string]("file_path")

	// Server side request
	RequestIDKey = goerr.NewTypedKey[string]("request_id")
)
