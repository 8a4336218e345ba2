package restapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mediahub/vhub/dispatch"
	"github.com/mediahub/vhub/events"
	"github.com/mediahub/vhub/health"
	"github.com/mediahub/vhub/metric"
	"github.com/mediahub/vhub/protocol"
	"github.com/mediahub/vhub/session"
)

// Server is the human-facing HTTP surface: the three REST endpoints of
// spec.md §6, operational endpoints, and the live events feed.
type Server struct {
	Dispatcher       *dispatch.Dispatcher
	Health           *health.Monitor
	Metrics          *metric.MetricsRegistry
	Events           *events.Hub
	Logger           *slog.Logger
	GetStreamTimeout time.Duration
	PollInterval     time.Duration

	doc *openapi3.T
}

// Router builds the chi.Mux serving every route this server answers.
// Returns an error if the embedded OpenAPI document that documents these
// routes fails to validate.
func (s *Server) Router() (http.Handler, error) {
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	doc, err := validateOpenAPIDoc()
	if err != nil {
		return nil, err
	}
	s.doc = doc

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Logger)
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "restapi")
	})
	r.Use(httprate.LimitByIP(600, time.Minute))

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.HandlerFor(s.Metrics.PrometheusRegistry(), promhttp.HandlerOpts{}))
	if s.Events != nil {
		r.Get("/events", s.Events.ServeHTTP)
	}

	api := chi.NewRouter()
	api.Use(func(next http.Handler) http.Handler {
		return gzhttp.GzipHandler(next)
	})
	api.Get("/getdevicelist", s.handleDeviceList)
	api.Get("/getdeviceinfo", s.handleDeviceInfo)
	api.Get("/getdevicestream", s.handleGetStream)
	r.Mount("/api", api)

	return r, nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	status := s.Health.AggregateHealth("vhub")
	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(status)
}

func (s *Server) handleDeviceList(w http.ResponseWriter, r *http.Request) {
	env := protocol.NewRequest(protocol.MsgCSDeviceListReq, 1)
	env.EasyDarwin.Body.AppType = r.URL.Query().Get("AppType")
	env.EasyDarwin.Body.TerminalType = r.URL.Query().Get("TerminalType")
	s.dispatchOnce(r.Context(), w, env)
}

func (s *Server) handleDeviceInfo(w http.ResponseWriter, r *http.Request) {
	env := protocol.NewRequest(protocol.MsgCSDeviceInfoReq, 1)
	env.EasyDarwin.Body.Serial = r.URL.Query().Get("device")
	s.dispatchOnce(r.Context(), w, env)
}

func (s *Server) handleGetStream(w http.ResponseWriter, r *http.Request) {
	env := protocol.NewRequest(protocol.MsgCSGetStreamReq, 1)
	q := r.URL.Query()
	env.EasyDarwin.Body.Serial = q.Get("device")
	env.EasyDarwin.Body.Channel = q.Get("channel")
	env.EasyDarwin.Body.Protocol = q.Get("protocol")
	env.EasyDarwin.Body.Reserve = q.Get("reserve")
	s.dispatchPolling(r.Context(), w, env)
}

// ephemeralSession builds a throwaway client session to carry a REST
// request's wait_slot through the dispatcher; it never reads or writes its
// paired net.Conn, since get-stream's device-side traffic always flows
// over the device's own session, not this one.
func ephemeralSession(logger *slog.Logger) (*session.Session, func()) {
	client, server := net.Pipe()
	sess := session.New(uuid.NewString(), client, 0, logger)
	return sess, func() {
		_ = client.Close()
		_ = server.Close()
	}
}

// dispatchOnce handles REST calls that never wait on a device (device-list,
// device-info): a single Dispatch call is always Ready.
func (s *Server) dispatchOnce(ctx context.Context, w http.ResponseWriter, env protocol.Envelope) {
	sess, cleanup := ephemeralSession(s.Logger)
	defer cleanup()

	result, err := s.Dispatcher.Dispatch(ctx, sess, env)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeEnvelope(w, result)
}

// dispatchPolling handles getdevicestream's two-phase wait (spec.md
// §4.3.2), re-invoking Dispatch on the hub's own poll quantum exactly like
// session.runToCompletion, since a REST call has no session loop of its
// own to do it.
func (s *Server) dispatchPolling(ctx context.Context, w http.ResponseWriter, env protocol.Envelope) {
	sess, cleanup := ephemeralSession(s.Logger)
	defer cleanup()

	pollInterval := s.PollInterval
	if pollInterval <= 0 {
		pollInterval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		result, err := s.Dispatcher.Dispatch(ctx, sess, env)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if result.Ready {
			writeEnvelope(w, result)
			return
		}
		select {
		case <-ticker.C:
			continue
		case <-ctx.Done():
			http.Error(w, "client disconnected", http.StatusRequestTimeout)
			return
		}
	}
}

func writeEnvelope(w http.ResponseWriter, result session.Result) {
	status := result.StatusCode
	if status == 0 {
		status = http.StatusOK
		if result.Envelope.EasyDarwin.Header.ErrorNum != protocol.ErrorSuccessOK {
			status = result.Envelope.EasyDarwin.Header.ErrorNum
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(result.Envelope)
}
