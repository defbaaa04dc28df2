package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_AllowsUpToLimitThenBlocks(t *testing.T) {
	l := New(2, time.Minute)
	t.Cleanup(l.Stop)

	assert.True(t, l.Allow("k"))
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))
	assert.Equal(t, 0, l.Remaining("k"))
	assert.True(t, l.Allow("other"))
}

func TestLimiter_WindowExpires(t *testing.T) {
	l := New(1, time.Minute)
	t.Cleanup(l.Stop)

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))

	now = now.Add(61 * time.Second)
	assert.Equal(t, 1, l.Remaining("k"))
	assert.True(t, l.Allow("k"))
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Minute)
	t.Cleanup(l.Stop)

	l.Allow("k")
	l.Reset("k")
	assert.True(t, l.Allow("k"))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		xff     string
		realIP  string
		remote  string
		want    string
	}{
		{"forwarded first hop", "203.0.113.7, 10.0.0.1", "", "10.0.0.2:5555", "203.0.113.7"},
		{"real ip", "", "198.51.100.4", "10.0.0.2:5555", "198.51.100.4"},
		{"remote with port", "", "", "192.0.2.1:4321", "192.0.2.1"},
		{"remote without port", "", "", "192.0.2.1", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/auth/login", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.want, ClientIP(r))
		})
	}
}

func TestLoginLimiter_PerEmail(t *testing.T) {
	ll := NewLoginLimiter(2, time.Minute)
	t.Cleanup(ll.Stop)
	r := httptest.NewRequest("POST", "/api/auth/login", nil)

	assert.True(t, ll.Check(r, "Ada@Example.com"))
	assert.True(t, ll.Check(r, "ada@example.com "))
	assert.False(t, ll.Check(r, "ADA@example.com"), "same account after normalization")

	ll.Succeeded("ada@example.com")
	assert.True(t, ll.Check(r, "ada@example.com"))
}

func TestLoginLimiter_PerIP(t *testing.T) {
	ll := NewLoginLimiter(1, time.Minute)
	t.Cleanup(ll.Stop)
	r := httptest.NewRequest("POST", "/api/auth/login", nil)

	assert.True(t, ll.Check(r, "a@example.com"))
	assert.True(t, ll.Check(r, "b@example.com"))
	assert.False(t, ll.Check(r, "c@example.com"))
}
