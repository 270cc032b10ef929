// Package handler provides the HTTP surface for verifying publish
// requests authenticated with OIDC identity tokens.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/trustpub/trustpub/metrics"
	"github.com/trustpub/trustpub/oidc"
)

// TokenService defines the verification capability consumed by the
// handler. The production implementation is *oidc.Service.
type TokenService interface {
	VerifyTokenSignature(ctx context.Context, rawToken string) (oidc.SignedClaims, error)
	FindProvider(claims oidc.SignedClaims) (oidc.Provider, error)
}

// Client contains state needed to serve verification requests.
type Client struct {
	service TokenService
}

// NewClient returns a handler client backed by the given token
// service.
func NewClient(service TokenService) *Client {
	return &Client{service: service}
}

// VerifyResponse is the body returned for an accepted token.
type VerifyResponse struct {
	Provider string `json:"provider"`
	Issuer   string `json:"issuer"`
	Subject  string `json:"subject"`
}

// VerifyPublish implements POST /v1/publish/verify. It runs the full
// verification pipeline on the Bearer token and reports only
// accept/reject; rejection bodies carry no detail about the cause.
func (c *Client) VerifyPublish(rw http.ResponseWriter, req *http.Request) {
	t := time.Now()
	code := http.StatusOK
	defer func() {
		metrics.RequestHandlerDuration.WithLabelValues(
			req.URL.Path, strconv.Itoa(code)).Observe(time.Since(t).Seconds())
	}()

	if req.Method != http.MethodPost {
		code = http.StatusMethodNotAllowed
		rw.WriteHeader(code)
		return
	}

	raw, err := bearerToken(req)
	if err != nil {
		code = http.StatusForbidden
		writeReject(rw)
		return
	}

	claims, err := c.service.VerifyTokenSignature(req.Context(), raw)
	if err != nil {
		code = http.StatusForbidden
		writeReject(rw)
		return
	}

	provider, err := c.service.FindProvider(claims)
	if err != nil {
		code = http.StatusForbidden
		writeReject(rw)
		return
	}

	log.WithFields(log.Fields{
		"provider": provider.Name(),
		"subject":  claims.Subject(),
	}).Info("publish token accepted")

	rw.Header().Set("Content-Type", "application/json")
	json.NewEncoder(rw).Encode(VerifyResponse{
		Provider: provider.Name(),
		Issuer:   claims.Issuer(),
		Subject:  claims.Subject(),
	})
}

// bearerToken extracts the compact token from the Authorization
// header.
func bearerToken(req *http.Request) (string, error) {
	authHeader := req.Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("authorization header not found")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", fmt.Errorf("authorization header must be in format: Bearer <token>")
	}
	return strings.TrimPrefix(authHeader, "Bearer "), nil
}

// writeReject answers with the uniform opaque rejection body.
func writeReject(rw http.ResponseWriter) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(http.StatusForbidden)
	rw.Write([]byte(`{"error":"unauthorized"}`))
}
