package main

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientIdentity(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/schools", nil)
	r.RemoteAddr = "10.0.0.9:51234"
	require.Equal(t, "10.0.0.9:51234", clientIdentity(r))

	r.Header.Set("X-Real-IP", "203.0.113.7")
	require.Equal(t, "203.0.113.7", clientIdentity(r))

	r.Header.Set("X-Forwarded-For", "198.51.100.4")
	require.Equal(t, "198.51.100.4", clientIdentity(r))

	r.Header.Set("X-Forwarded-For", " 198.51.100.4 , 203.0.113.7")
	require.Equal(t, "198.51.100.4", clientIdentity(r), "first forwarded hop wins")
}
