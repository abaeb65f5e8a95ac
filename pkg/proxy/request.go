package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"bastion-hq/gateway/pkg/pipeline"
)

const (
	// DefaultMaxBodyBytes caps a request body when the caller passes zero.
	DefaultMaxBodyBytes = 1 << 20

	// ForwardedForHeader carries the proxy chain; its first hop is the client.
	ForwardedForHeader = "X-Forwarded-For"

	// RealIPHeader carries the client address set by a single reverse proxy.
	RealIPHeader = "X-Real-IP"
)

// ReadBody reads at most maxBytes of the request body. A larger body is
// reported as a *pipeline.ValidationError.
func ReadBody(r *http.Request, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, bodyTooLarge(tooLarge.Limit)
		}
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if int64(len(body)) > maxBytes {
		return nil, bodyTooLarge(maxBytes)
	}
	return body, nil
}

func bodyTooLarge(limit int64) error {
	return &pipeline.ValidationError{
		Details: []string{fmt.Sprintf("body: exceeds maximum size of %d bytes", limit)},
	}
}

// DecodeJSON reads the body of r into v. An empty or unparsable body is
// reported as a *pipeline.ValidationError.
func DecodeJSON(r *http.Request, maxBytes int64, v any) error {
	body, err := ReadBody(r, maxBytes)
	if err != nil {
		return err
	}
	return unmarshalBody(body, v)
}

func unmarshalBody(body []byte, v any) error {
	if len(strings.TrimSpace(string(body))) == 0 {
		return &pipeline.ValidationError{Details: []string{"body: must be a JSON object"}}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &pipeline.ValidationError{Details: []string{fmt.Sprintf("body: invalid JSON: %v", err)}}
	}
	return nil
}

// ParseGatewayRequest reads and shape-checks a gateway request body. Type
// errors are caught by the request schema; field rules such as required
// values and ranges are left to pipeline.Validate.
func ParseGatewayRequest(r *http.Request, maxBytes int64) (pipeline.Request, error) {
	body, err := ReadBody(r, maxBytes)
	if err != nil {
		return pipeline.Request{}, err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return pipeline.Request{}, &pipeline.ValidationError{Details: []string{"body: must be a JSON object"}}
	}
	if !json.Valid(body) {
		return pipeline.Request{}, &pipeline.ValidationError{Details: []string{"body: invalid JSON"}}
	}

	if details := ValidateGatewaySchema(body); len(details) > 0 {
		return pipeline.Request{}, &pipeline.ValidationError{Details: details}
	}

	var req pipeline.Request
	if err := unmarshalBody(body, &req); err != nil {
		return pipeline.Request{}, err
	}
	return req, nil
}

// ClientInfo describes the caller of r for audit entries.
func ClientInfo(r *http.Request, requestID string) pipeline.ClientInfo {
	return pipeline.ClientInfo{
		RequestID: requestID,
		IPAddress: ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

// ClientIP returns the first X-Forwarded-For hop, then X-Real-IP, then the
// host part of the connection's remote address.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get(ForwardedForHeader); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get(RealIPHeader)); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
