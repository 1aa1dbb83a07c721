package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"vendas-platform/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ProvideHTTPServer = fx.Module("http.server",
	fx.Provide(NewRouter, NewHttpServer),
	fx.Invoke(Run),
)

type Server struct {
	server *http.Server
	certs  *certReloader
}

type Params struct {
	fx.In
	Config  *config.Config
	Handler *gin.Engine
}

func NewHttpServer(p Params) (*Server, error) {
	cfg := p.Config
	srv := &Server{
		server: &http.Server{
			Addr:         listenAddr(cfg.Server.Addr),
			Handler:      p.Handler,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}

	if cfg.TLS.Enable {
		certs, err := newCertReloader(cfg.TLS.CertPath, cfg.TLS.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("load TLS certificate: %w", err)
		}
		srv.certs = certs
		srv.server.TLSConfig = certs.tlsConfig()
	}

	return srv, nil
}

// listenAddr accepts a bare port ("8080") or a host:port.
func listenAddr(addr string) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return ":" + addr
}

func Run(lc fx.Lifecycle, shutdowner fx.Shutdowner, srv *Server) {
	watchCtx, stopWatch := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.server.Addr)
			if err != nil {
				stopWatch()
				return fmt.Errorf("listen %s: %w", srv.server.Addr, err)
			}

			serve := func() error { return srv.server.Serve(ln) }
			if srv.certs != nil {
				go srv.certs.watch(watchCtx)
				serve = func() error { return srv.server.ServeTLS(ln, "", "") }
			}

			zap.L().Info("[HTTP] server listening",
				zap.String("addr", ln.Addr().String()),
				zap.Bool("tls", srv.certs != nil))

			go func() {
				if err := serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					zap.L().Error("[HTTP] server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			stopWatch()
			zap.L().Info("[HTTP] shutting down")
			return srv.server.Shutdown(ctx)
		},
	})
}
