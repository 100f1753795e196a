// Package credential fetches signed credentials from the bellkey server.
package credential

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bellkey/pkg/domain/interfaces"
	"github.com/secmon-lab/bellkey/pkg/domain/model/errs"
	"github.com/secmon-lab/bellkey/pkg/domain/types"
	"github.com/secmon-lab/bellkey/pkg/utils/errutil"
	"github.com/secmon-lab/bellkey/pkg/utils/safe"
)

const (
	// Path of the signer endpoint, relative to the server base URL.
	Path = "/api/hmac"

	maxResponseSize = 64 * 1024
)

// Response is the JSON body of the signer endpoint.
type Response struct {
	HMAC string `json:"hmac"`
}

type Client struct {
	endpoint   string
	httpClient *http.Client
}

var _ interfaces.CredentialClient = &Client{}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(x *Client) {
		x.httpClient = c
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid server URL", goerr.V("url", baseURL))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, goerr.New("server URL must be http or https", goerr.V("url", baseURL))
	}

	c := &Client{
		endpoint:   strings.TrimSuffix(u.String(), "/") + Path,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchCredential performs exactly one GET request. Every outcome other than
// 200 with a non-empty hmac is a transport failure.
func (x *Client) FetchCredential(ctx context.Context, userID types.UserID) (types.Credential, error) {
	eb := goerr.NewBuilder(goerr.Tag(errs.TagTransport), goerr.TV(errutil.EndpointKey, x.endpoint))

	q := url.Values{}
	q.Set("userId", userID.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, x.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", eb.Wrap(err, "failed to build credential request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return "", eb.Wrap(err, "credential request failed", goerr.TV(errutil.TimeoutKey, x.httpClient.Timeout))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", eb.New("credential request rejected", goerr.TV(errutil.HTTPStatusKey, resp.StatusCode))
	}

	var body Response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&body); err != nil {
		return "", eb.Wrap(err, "malformed credential response")
	}
	if body.HMAC == "" {
		return "", eb.New("empty credential in response")
	}

	return types.Credential(body.HMAC), nil
}
