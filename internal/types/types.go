package types

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Envelope is the standard response wrapper returned by the backend
type Envelope struct {
	Status    int             `json:"status"`
	Message   string          `json:"message,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	ErrorType string          `json:"errorType,omitempty"`
}

// Decode unmarshals the envelope data into v
func (e *Envelope) Decode(v interface{}) error {
	if e == nil || len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	return json.Unmarshal(e.Data, v)
}

// UserData is the signed-in user's profile. It is kept as a loose map so
// partial updates can be merged field by field.
type UserData map[string]interface{}

// Clone returns a deep copy. Nested JSON objects and arrays are copied so
// callers never share them with the store.
func (u UserData) Clone() UserData {
	if u == nil {
		return nil
	}
	dup := make(UserData, len(u))
	for k, v := range u {
		dup[k] = cloneValue(v)
	}
	return dup
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		dup := make(map[string]interface{}, len(val))
		for k, inner := range val {
			dup[k] = cloneValue(inner)
		}
		return dup
	case UserData:
		return val.Clone()
	case []interface{}:
		dup := make([]interface{}, len(val))
		for i, inner := range val {
			dup[i] = cloneValue(inner)
		}
		return dup
	default:
		return v
	}
}

// Session represents the persisted authentication state
type Session struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	UserData     UserData `json:"userData"`
	IsLoggedIn   bool     `json:"isLoggedIn"`
}

// Logger interface for logging
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// RetryConfig configures transport-level retry behavior
type RetryConfig struct {
	MaxRetries int           `json:"maxRetries"`
	RetryWait  time.Duration `json:"retryWait"`
	MaxWait    time.Duration `json:"maxWait"`
}

// Hooks provides lifecycle hooks for requests
type Hooks struct {
	OnRequest  func(ctx context.Context, req *http.Request)
	OnResponse func(ctx context.Context, resp *http.Response, duration time.Duration)
	OnError    func(ctx context.Context, err error)
}
