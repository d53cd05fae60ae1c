// Package rpc dispatches every call to the remote PureCerts service.
//
// A call is a Connect-protocol unary request with the JSON codec:
// POST {baseURL}/{service}/{method}, bearer token read from storage on each call,
// bare JSON result on success, {"message": ...} on failure.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"purecerts-console/internal/obs"
	"purecerts-console/internal/storage"
)

const (
	protocolVersionHeader = "Connect-Protocol-Version"
	protocolVersion       = "1"

	// maxErrorBody bounds how much of a failed response is read looking for a message.
	maxErrorBody = 64 << 10
)

// Dispatcher is the single call path the service wrappers depend on.
type Dispatcher interface {
	Do(ctx context.Context, service, method string, payload, out any) error
}

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	// Storage is read for the access token on every call.
	Storage storage.Storage
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	storage    storage.Storage
}

func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: hc,
		storage:    opts.Storage,
	}
}

// Call is Do with the result type as a type parameter.
func Call[T any](ctx context.Context, d Dispatcher, service, method string, payload any) (T, error) {
	var out T
	if err := d.Do(ctx, service, method, payload, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (c *Client) Do(ctx context.Context, service, method string, payload, out any) (err error) {
	start := time.Now()
	defer func() {
		obs.ObserveRPC(service, method, outcome(err), time.Since(start))
	}()

	if payload == nil {
		payload = struct{}{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return &Error{Service: service, Method: method, Message: defaultMessage, Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+service+"/"+method, bytes.NewReader(body))
	if err != nil {
		return &Error{Service: service, Method: method, Message: defaultMessage, Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(protocolVersionHeader, protocolVersion)
	c.bearer(ctx).SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Service: service, Method: method, Message: defaultMessage, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Service: service,
			Method:  method,
			Status:  resp.StatusCode,
			Message: failureMessage(resp),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Service: service, Method: method, Status: resp.StatusCode, Message: defaultMessage, Cause: err}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Service: service, Method: method, Status: resp.StatusCode, Message: defaultMessage, Cause: err}
	}
	return nil
}

type bearerKey struct{}

// WithBearer makes calls issued with the returned context send token instead of
// the stored one. Sign-out uses it to revoke a token it has already purged.
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey{}, token)
}

// bearer reads the access token fresh from storage. A missing token or a
// storage failure yields an empty bearer, which the service rejects.
func (c *Client) bearer(ctx context.Context) *oauth2.Token {
	tok := &oauth2.Token{TokenType: "Bearer"}
	if v, ok := ctx.Value(bearerKey{}).(string); ok {
		tok.AccessToken = v
		return tok
	}
	if c.storage == nil {
		return tok
	}
	v, ok, err := c.storage.Get(ctx, storage.KeyAccessToken)
	if err != nil {
		log.Printf("rpc: read access token: %v", err)
		return tok
	}
	if ok {
		tok.AccessToken = v
	}
	return tok
}

type errorBody struct {
	Message string `json:"message"`
}

func failureMessage(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return defaultMessage
	}
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return defaultMessage
	}
	if body.Message == "" {
		return "HTTP " + strconv.Itoa(resp.StatusCode)
	}
	return body.Message
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
