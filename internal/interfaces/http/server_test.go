package http

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molsearch/internal/config"
)

func TestNewServer_Defaults(t *testing.T) {
	s := NewServer(config.ServerConfig{Port: 8080}, http.NewServeMux(), nil)

	assert.Equal(t, ":8080", s.srv.Addr)
	assert.Equal(t, 15*time.Second, s.srv.ReadTimeout)
	assert.Equal(t, 30*time.Second, s.srv.WriteTimeout)
	assert.Equal(t, 30*time.Second, s.shutdownTimeout)
	assert.NotNil(t, s.Handler())
}

func TestNewServer_ConfigOverrides(t *testing.T) {
	s := NewServer(config.ServerConfig{
		Port:            9999,
		ReadTimeout:     time.Second,
		WriteTimeout:    2 * time.Second,
		ShutdownTimeout: 3 * time.Second,
	}, http.NewServeMux(), nil)

	assert.Equal(t, ":9999", s.srv.Addr)
	assert.Equal(t, time.Second, s.srv.ReadTimeout)
	assert.Equal(t, 2*time.Second, s.srv.WriteTimeout)
	assert.Equal(t, 3*time.Second, s.shutdownTimeout)
}

func TestServer_StartAndShutdown(t *testing.T) {
	// Reserve a free port, release it, and start the server there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "pong")
	})

	s := NewServer(config.ServerConfig{Port: port}, mux, nil)

	done := make(chan error, 1)
	go func() { done <- s.Start() }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		var dialErr error
		resp, dialErr = http.Get(fmt.Sprintf("http://127.0.0.1:%d/ping", port))
		return dialErr == nil
	}, 2*time.Second, 20*time.Millisecond)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "pong", string(body))

	require.NoError(t, s.Shutdown(context.Background()))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after shutdown")
	}
}
