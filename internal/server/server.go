package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dmorgan81/txt2img/internal/config"
	"github.com/dmorgan81/txt2img/internal/handler"
	"github.com/dmorgan81/txt2img/internal/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type Registrar interface {
	Register(*echo.Echo)
}

type Server struct {
	Echo     *echo.Echo
	addr     string
	shareURL string
}

func NewServer(i *do.Injector) (*Server, error) {
	cfg := do.MustInvoke[*config.Config](i)
	h := do.MustInvoke[*handler.Handler](i)
	addr, err := Addr(cfg.Listen, cfg.Share)
	if err != nil {
		return nil, err
	}
	return New(h, addr, do.MustInvokeNamed[string](i, "share_url")), nil
}

func New(r Registrar, addr, shareURL string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	r.Register(e)
	return &Server{Echo: e, addr: addr, shareURL: shareURL}
}

// Run serves until ctx is done or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	log := log.FromContextOrDiscard(ctx).WithGroup("server")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("serving form", "addr", s.addr, "public_url", s.shareURL)
		if err := s.Echo.Start(s.addr); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving on %s: %w", s.addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Echo.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) Shutdown() error {
	return s.Echo.Close()
}

// Addr returns the listen address, widened to all interfaces when sharing.
func Addr(listen string, share bool) (string, error) {
	_, port, err := net.SplitHostPort(listen)
	if err != nil {
		return "", fmt.Errorf("invalid listen address %q: %w", listen, err)
	}
	return lo.Ternary(share, net.JoinHostPort("", port), listen), nil
}

// ShareURL is the public link advertised when sharing: publicURL if given,
// otherwise the first non-loopback IPv4 address of the host.
func ShareURL(listen, publicURL string, share bool, addrs func() ([]net.Addr, error)) string {
	if !share {
		return ""
	}
	if publicURL != "" {
		return publicURL
	}
	_, port, err := net.SplitHostPort(listen)
	if err != nil {
		return ""
	}
	list, err := addrs()
	if err != nil {
		return ""
	}
	ip, ok := lo.Find(lo.FilterMap(list, func(a net.Addr, _ int) (net.IP, bool) {
		n, ok := a.(*net.IPNet)
		if !ok {
			return nil, false
		}
		return n.IP, true
	}), func(ip net.IP) bool {
		return ip.To4() != nil && !ip.IsLoopback() && !ip.IsLinkLocalUnicast()
	})
	if !ok {
		return ""
	}
	return "http://" + net.JoinHostPort(ip.String(), port)
}
