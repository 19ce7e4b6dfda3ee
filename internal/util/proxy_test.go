package util

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProxyFunc_Explicit(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.local:3128", "", "internal.example")

	req, err := http.NewRequest(http.MethodPost, "https://hs.example.com/classify", nil)
	require.NoError(t, err)
	u, err := proxy(req)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "proxy.local:3128", u.Host)

	req, err = http.NewRequest(http.MethodPost, "http://internal.example/classify", nil)
	require.NoError(t, err)
	u, err = proxy(req)
	require.NoError(t, err)
	assert.Nil(t, u, "NO_PROXY hosts bypass the proxy")
}

func TestNewProxyFunc_HTTPSOverride(t *testing.T) {
	proxy := NewProxyFunc("http://plain:8080", "http://secure:8443", "")

	req, err := http.NewRequest(http.MethodGet, "https://hs.example.com", nil)
	require.NoError(t, err)
	u, err := proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "secure:8443", u.Host)
}
