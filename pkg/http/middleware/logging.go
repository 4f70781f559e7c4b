package middleware

import (
	"log"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs each request with latency. Metrics scrapes and the
// websocket upgrade are skipped to keep the log readable.
func RequestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.RequestURI == "/metrics" || strings.HasPrefix(req.RequestURI, "/ws/") {
				return next(c)
			}

			start := time.Now()
			err := next(c)
			log.Printf("[%s] %s %s - %d (%s)",
				req.Method,
				req.RequestURI,
				req.RemoteAddr,
				c.Response().Status,
				time.Since(start),
			)
			return err
		}
	}
}
