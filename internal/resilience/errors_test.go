package resilience

import (
	"errors"
	"net"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransientError_CarriesStatus(t *testing.T) {
	cause := eris.New("fetch: server returned 429")
	err := NewTransientError(cause, 429)

	var te *TransientError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 429, te.StatusCode)
	assert.True(t, eris.Is(err, cause))
	assert.Equal(t, cause.Error(), err.Error())
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "dial tcp: deadline exceeded" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"tagged transient", NewTransientError(eris.New("fetch: server returned 503"), 503), true},
		{"wrapped tagged", eris.Wrap(NewTransientError(errors.New("throttled"), 429), "fetch"), true},
		{"net timeout", &net.OpError{Op: "dial", Err: timeoutErr{}}, true},
		{"connection reset", syscall.ECONNRESET, true},
		{"client message", errors.New("Get \"https://tabelog.com\": tls handshake timeout"), true},
		{"not found", errors.New("fetch: server returned 404"), false},
		{"blocked", eris.New("fetch: blocked by target site"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "status %d", code)
	}
	// 403 in particular is a block, handled separately from retries.
	for _, code := range []int{200, 301, 403, 404, 410} {
		assert.False(t, IsTransientHTTPStatus(code), "status %d", code)
	}
}
