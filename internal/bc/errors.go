package bc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrAuthConfig means the tenant has no usable client credentials. This is an
// operator problem, not a retryable one.
var ErrAuthConfig = errors.New("bc credentials not configured for tenant")

// AuthExchangeError means the identity provider rejected the
// client-credentials exchange.
type AuthExchangeError struct {
	Status int
	Body   string
}

func (e *AuthExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed with status %d: %s", e.Status, e.Body)
}

// RemoteCallError is any non-2xx response from the BC API. Code/Message are
// filled from the OData error envelope when the body carries one.
type RemoteCallError struct {
	Status  int
	Body    string
	Code    string
	Message string
}

func (e *RemoteCallError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("bc api error %d [%s]: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("bc api error %d: %s", e.Status, e.Body)
}

// newRemoteCallError builds a RemoteCallError, extracting the OData
// {"error":{"code","message"}} envelope if present.
func newRemoteCallError(status int, body []byte) *RemoteCallError {
	e := &RemoteCallError{Status: status, Body: string(body)}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		e.Code = envelope.Error.Code
		e.Message = envelope.Error.Message
	}
	return e
}
