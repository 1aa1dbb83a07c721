package server

import (
	"testing"

	"vendas-platform/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestListenAddr(t *testing.T) {
	require.Equal(t, ":8080", listenAddr("8080"))
	require.Equal(t, "127.0.0.1:9000", listenAddr("127.0.0.1:9000"))
	require.Equal(t, ":9000", listenAddr(":9000"))
}

func TestNewHttpServerMissingCertificate(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.Addr = "8080"
	cfg.TLS.Enable = true
	cfg.TLS.CertPath = "/nonexistent/tls.crt"
	cfg.TLS.KeyPath = "/nonexistent/tls.key"

	_, err := NewHttpServer(Params{Config: cfg, Handler: gin.New()})
	require.Error(t, err)
}

func TestNewHttpServerPlain(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.Addr = "8080"

	srv, err := NewHttpServer(Params{Config: cfg, Handler: gin.New()})
	require.NoError(t, err)
	require.Nil(t, srv.server.TLSConfig)
	require.Equal(t, ":8080", srv.server.Addr)
}
