// Package signer computes the credential that binds an anonymous user ID to
// the notification provider. It is the only holder of the signing secret.
package signer

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bellkey/pkg/domain/model/errs"
	"github.com/secmon-lab/bellkey/pkg/domain/types"
	"github.com/secmon-lab/bellkey/pkg/utils/clock"
)

// Signer is immutable after New and safe for concurrent use.
type Signer struct {
	secret types.SigningSecret
}

func New(secret types.SigningSecret) *Signer {
	return &Signer{secret: secret}
}

// Configured reports whether a signing secret was provided.
func (x *Signer) Configured() bool {
	return !x.secret.IsEmpty()
}

func (x *Signer) check(id types.UserID) error {
	if err := id.Validate(); err != nil {
		return goerr.Wrap(errs.ErrEmptyUserID, "invalid request", goerr.Tag(errs.TagInvalidRequest))
	}
	if x.secret.IsEmpty() {
		return goerr.Wrap(errs.ErrSigningSecretNotConfigured, "server misconfigured", goerr.Tag(errs.TagMisconfigured))
	}
	return nil
}

func (x *Signer) mac(id types.UserID) []byte {
	h := hmac.New(sha256.New, x.secret.Bytes())
	h.Write([]byte(id))
	return h.Sum(nil)
}

// Sign returns base64(HMAC-SHA256(secret, id)). The ID is checked before the
// secret, so an empty ID is always reported as an invalid request.
func (x *Signer) Sign(id types.UserID) (types.Credential, error) {
	if err := x.check(id); err != nil {
		return "", err
	}
	return types.Credential(base64.StdEncoding.EncodeToString(x.mac(id))), nil
}

// Verify reports whether credential was produced by Sign for id.
func (x *Signer) Verify(id types.UserID, credential types.Credential) bool {
	if x.check(id) != nil || credential.IsEmpty() {
		return false
	}
	raw, err := base64.StdEncoding.DecodeString(credential.String())
	if err != nil {
		return false
	}
	return hmac.Equal(raw, x.mac(id))
}

const (
	ClaimAPIKey         = "api_key"
	ClaimUserExternalID = "user_external_id"
)

// IssueUserToken returns an HS256 JWT asserting id for the provider, keyed by
// the same secret as Sign.
func (x *Signer) IssueUserToken(ctx context.Context, id types.UserID, apiKey types.APIKey) (string, error) {
	if err := x.check(id); err != nil {
		return "", err
	}

	token, err := jwt.NewBuilder().
		IssuedAt(clock.Now(ctx)).
		Claim(ClaimAPIKey, apiKey.String()).
		Claim(ClaimUserExternalID, id.String()).
		Build()
	if err != nil {
		return "", goerr.Wrap(err, "failed to build user token", goerr.Tag(errs.TagInternal))
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, x.secret.Bytes()))
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign user token", goerr.Tag(errs.TagInternal))
	}

	return string(signed), nil
}

// ParseUserToken validates a token issued by IssueUserToken and returns the
// user ID it asserts.
func (x *Signer) ParseUserToken(ctx context.Context, token string) (types.UserID, error) {
	if x.secret.IsEmpty() {
		return "", goerr.Wrap(errs.ErrSigningSecretNotConfigured, "server misconfigured", goerr.Tag(errs.TagMisconfigured))
	}

	parsed, err := jwt.Parse([]byte(token),
		jwt.WithKey(jwa.HS256, x.secret.Bytes()),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(func() time.Time { return clock.Now(ctx) })),
	)
	if err != nil {
		return "", goerr.Wrap(err, "invalid user token", goerr.Tag(errs.TagInvalidRequest))
	}

	v, ok := parsed.Get(ClaimUserExternalID)
	if !ok {
		return "", goerr.New("user token has no user ID", goerr.Tag(errs.TagInvalidRequest))
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", goerr.New("user token has no user ID", goerr.Tag(errs.TagInvalidRequest))
	}
	return types.UserID(s), nil
}
