package httpapi

import (
	"context"
	"net"
	"net/http"

	"pm25map/internal/config"
)

// NewServer wraps mux with request logging. baseCtx becomes the parent of
// every request context, so cancelling it ends long-lived map sessions.
func NewServer(cfg config.Config, mux http.Handler, baseCtx context.Context) *http.Server {
	return &http.Server{
		Addr:        cfg.HTTPAddr,
		Handler:     requestLogger(mux),
		BaseContext: func(net.Listener) context.Context { return baseCtx },
	}
}
