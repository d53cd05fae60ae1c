package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"purecerts-console/internal/storage"
)

type echoResult struct {
	Path string         `json:"path"`
	Body map[string]any `json:"body"`
}

func TestClient_Do_RequestShape(t *testing.T) {
	ctx := context.Background()
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(echoResult{Path: r.URL.Path, Body: body})
	}))
	defer srv.Close()

	st := storage.NewMemory()
	_ = st.Set(ctx, storage.KeyAccessToken, "tok-1")
	c := New(Options{BaseURL: srv.URL + "/", Storage: st})

	res, err := Call[echoResult](ctx, c, "purecerts.v1.CertificateService", "GetCertificate", map[string]string{"cert_id": "c1"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got.Method != http.MethodPost {
		t.Fatalf("expected POST, got %s", got.Method)
	}
	if res.Path != "/purecerts.v1.CertificateService/GetCertificate" {
		t.Fatalf("unexpected path %q", res.Path)
	}
	if res.Body["cert_id"] != "c1" {
		t.Fatalf("unexpected body %v", res.Body)
	}
	if ct := got.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if v := got.Header.Get("Connect-Protocol-Version"); v != "1" {
		t.Fatalf("unexpected protocol version %q", v)
	}
	if a := got.Header.Get("Authorization"); a != "Bearer tok-1" {
		t.Fatalf("unexpected authorization %q", a)
	}
}

func TestClient_Do_ReadsTokenOnEveryCall(t *testing.T) {
	ctx := context.Background()
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, strings.TrimSpace(r.Header.Get("Authorization")))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	st := storage.NewMemory()
	c := New(Options{BaseURL: srv.URL, Storage: st})

	if err := c.Do(ctx, "s", "M", nil, nil); err != nil {
		t.Fatalf("Do: %v", err)
	}
	_ = st.Set(ctx, storage.KeyAccessToken, "tok-2")
	if err := c.Do(ctx, "s", "M", nil, nil); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if len(seen) != 2 || seen[0] != "Bearer" || seen[1] != "Bearer tok-2" {
		t.Fatalf("unexpected authorization headers %q", seen)
	}
}

func TestClient_Do_WithBearerOverridesStorage(t *testing.T) {
	ctx := context.Background()
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	st := storage.NewMemory()
	_ = st.Set(ctx, storage.KeyAccessToken, "stored")
	c := New(Options{BaseURL: srv.URL, Storage: st})

	if err := c.Do(WithBearer(ctx, "explicit"), "s", "M", nil, nil); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if auth != "Bearer explicit" {
		t.Fatalf("unexpected authorization %q", auth)
	}
}

func TestClient_Do_NilPayloadSendsEmptyObject(t *testing.T) {
	var raw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(strings.Builder)
		_, _ = io.Copy(buf, r.Body)
		raw = buf.String()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	if err := c.Do(context.Background(), "s", "M", nil, nil); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if raw != "{}" {
		t.Fatalf("expected {}, got %q", raw)
	}
}

func TestClient_Do_Failures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "message", status: http.StatusUnauthorized, body: `{"code":"unauthenticated","message":"invalid credentials"}`, want: "invalid credentials"},
		{name: "not json", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, want: "Request failed"},
		{name: "empty body", status: http.StatusInternalServerError, body: ``, want: "Request failed"},
		{name: "no message", status: http.StatusNotFound, body: `{"code":"not_found"}`, want: "HTTP 404"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := New(Options{BaseURL: srv.URL})
			err := c.Do(context.Background(), "s", "M", nil, nil)
			if !errors.Is(err, ErrRequestFailed) {
				t.Fatalf("expected ErrRequestFailed, got %v", err)
			}
			if err.Error() != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, err.Error())
			}
			var rpcErr *Error
			if !errors.As(err, &rpcErr) || rpcErr.Status != tc.status {
				t.Fatalf("expected *Error with status %d, got %#v", tc.status, err)
			}
		})
	}
}

func TestClient_Do_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(Options{BaseURL: url})
	err := c.Do(context.Background(), "s", "M", nil, nil)
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
	if Message(err) != "Request failed" {
		t.Fatalf("unexpected message %q", Message(err))
	}
}

func TestClient_Do_Canceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := New(Options{BaseURL: srv.URL})
	err := c.Do(ctx, "s", "M", nil, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
}

func TestClient_Do_BadSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	_, err := Call[echoResult](context.Background(), c, "s", "M", nil)
	if !errors.Is(err, ErrRequestFailed) || err.Error() != "Request failed" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestMessage(t *testing.T) {
	if Message(nil) != "" {
		t.Fatalf("expected empty message")
	}
	if Message(errors.New("plain")) != "plain" {
		t.Fatalf("expected plain message")
	}
	if Message(&Error{Message: "boom"}) != "boom" {
		t.Fatalf("expected rpc message")
	}
}
