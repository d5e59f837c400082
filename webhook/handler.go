package webhook

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tpp-lora/lora-app-sheets/log"
	"github.com/tpp-lora/lora-app-sheets/logsheet"
)

// Appender is the log writer invoked for every webhook callback.
type Appender interface {
	Handle(ctx context.Context, rq logsheet.Record) (logsheet.Outcome, error)
}

type handler struct {
	appender Appender
	maxBody  int64
}

// NewRouter returns the webhook router: GET and POST callbacks on 'path' and a
// health check on /healthz.
func NewRouter(appender Appender, path string, maxBody int64, timeout time.Duration) http.Handler {
	h := handler{
		appender: appender,
		maxBody:  maxBody,
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	if timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})

	r.Get(path, h.handleGet)
	r.Post(path, h.handlePost)

	return r
}

func (h *handler) handleGet(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r)
}

func (h *handler) handlePost(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r)
}

// handle answers '0' for both logged events and diagnostic rows. Only a retention
// failure is reported to the caller. An abandoned request is left to the timeout
// middleware.
func (h *handler) handle(w http.ResponseWriter, r *http.Request) {
	rq := Decode(r, h.maxBody)

	outcome, err := h.appender.Handle(r.Context(), rq)
	if errors.Is(err, logsheet.ErrAbandoned) {
		log.Warnf("%v  %v", middleware.GetReqID(r.Context()), err)
		return
	} else if err != nil {
		log.Errorf("%v  %v", middleware.GetReqID(r.Context()), err)
		http.Error(w, "error enforcing log retention", http.StatusInternalServerError)
		return
	}

	if outcome.Diagnostic {
		log.Warnf("%v  logged diagnostic row for %v %v", middleware.GetReqID(r.Context()), r.Method, r.URL.Path)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("0"))
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			log.Debugf("%v  %v %v  status:%v  bytes:%v  duration:%v  remote:%v",
				middleware.GetReqID(r.Context()),
				r.Method,
				r.URL.Path,
				ww.Status(),
				ww.BytesWritten(),
				time.Since(start),
				r.RemoteAddr)
		}()

		next.ServeHTTP(ww, r)
	})
}
