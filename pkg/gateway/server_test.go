package gateway

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcsuka/xml-xsd-json/pkg/config"
)

func TestServer_Serve(t *testing.T) {
	cfg := config.Default().Server
	cfg.ShutdownTimeout = time.Second

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})
	srv := NewServer(cfg, handler, nil)
	assert.Equal(t, "0.0.0.0:8080", srv.Addr())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServer_RunListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	addr := ln.Addr().(*net.TCPAddr)
	cfg := config.Default().Server
	cfg.Host = "127.0.0.1"
	cfg.Port = addr.Port

	err = NewServer(cfg, http.NotFoundHandler(), nil).Run(context.Background())
	assert.Error(t, err)
}

func TestNewHTTPClient(t *testing.T) {
	cfg := config.Default().Client
	c := NewHTTPClient(cfg)

	assert.Equal(t, cfg.RequestTimeout, c.Timeout)
	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, cfg.MaxPoolSize, tr.MaxConnsPerHost)
	assert.Equal(t, cfg.KeepAlive, tr.IdleConnTimeout)
}
