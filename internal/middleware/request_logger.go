package middleware

import (
	"strconv"
	"time"

	"orderbot/internal/logging"
	"orderbot/internal/metrics"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const HeaderRequestID = "X-Request-ID"

// RequestLogger は request_id 付きのロガーを context に入れ、処理時間を記録します。
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			rid := req.Header.Get(HeaderRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Response().Header().Set(HeaderRequestID, rid)

			l := logging.Base().With("request_id", rid, "method", req.Method, "path", c.Path())
			c.SetRequest(req.WithContext(logging.WithCtx(req.Context(), l)))

			err := next(c)
			if err != nil {
				// ステータスを確定させる
				c.Error(err)
			}

			status := c.Response().Status
			elapsed := time.Since(start)
			if c.Path() == "/webhook" {
				metrics.WebhookDuration.WithLabelValues(strconv.Itoa(status)).Observe(float64(elapsed.Milliseconds()))
			}

			if status >= 500 {
				l.Error("request", "status", status, "duration_ms", elapsed.Milliseconds(), "err", err)
			} else {
				l.Info("request", "status", status, "duration_ms", elapsed.Milliseconds())
			}
			return nil
		}
	}
}
