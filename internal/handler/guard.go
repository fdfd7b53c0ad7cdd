package handler

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"teamperf/pkg/errors"
	"teamperf/pkg/logger"
)

// recoverer turns a handler panic into an internal error envelope.
// If the handler already started its response, the panic is only logged.
func recoverer(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err := errors.NewInternalError("Internal server error", fmt.Errorf("panic: %v", rec))
				if ww.Status() != 0 {
					log.WithError(err).WithField("path", r.URL.Path).Error("Panic after response started")
					return
				}
				respondError(ww, r, log, err)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// timeout bounds the request context. A handler that gives up on the deadline without
// answering gets a 504 envelope.
func timeout(d time.Duration, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			if ww.Status() == 0 && stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
				respondError(ww, r, log, errors.NewTimeoutError("Request timed out", ctx.Err()))
			}
		})
	}
}
