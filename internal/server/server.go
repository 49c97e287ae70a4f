package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"orderbot/internal/handler"
	"orderbot/internal/logging"
	"orderbot/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Deps はルーティングに必要な部品
type Deps struct {
	JWTSecret    string
	IsAdmin      func(int64) bool
	Webhook      *handler.WebhookHandler
	Health       *handler.HealthHandler
	AdminOrders  *handler.AdminOrderHandler
	AdminProduct *handler.AdminProductHandler
}

// New は echo を組み立てる。
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger())

	d.Health.RegisterRoutes(e)

	//ゲートウェイからの受信
	d.Webhook.RegisterRoutes(e,
		middleware.AuthJWT(d.JWTSecret),
		middleware.RoleGuard(middleware.RoleGateway),
	)

	//管理API
	admin := e.Group("/admin")
	admin.Use(middleware.AuthJWT(d.JWTSecret))
	admin.Use(middleware.AdminRoleGuard(d.IsAdmin))
	d.AdminOrders.RegisterRoutes(admin)
	d.AdminProduct.RegisterRoutes(admin)

	return e
}

// Start は ctx が終わるまで待ち受け、終わったら graceful shutdown する。
func Start(ctx context.Context, e *echo.Echo, addr string) error {
	log := logging.New("http")
	errCh := make(chan error, 1)

	go func() {
		log.Info("listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
