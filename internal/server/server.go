package server

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"lookbook/internal/blobstore"
	"lookbook/internal/catalog"
	"lookbook/internal/upload"
)

const (
	allowRemoteEnvKey      = "LOOKBOOK_ALLOW_REMOTE"
	readHeaderTimeout      = 5 * time.Second
	readTimeout            = 2 * time.Minute
	writeTimeout           = 5 * time.Minute
	idleTimeout            = 60 * time.Second
	uploadConcurrencyLimit = 2

	defaultMaxUploadBytes     int64 = 64 << 20 // 64 MiB
	defaultMultipartMaxMemory int64 = 8 << 20  // 8 MiB
)

// Options carries the HTTP-facing settings of a Server.
type Options struct {
	StoreBackend        string
	MaxUploadBytes      int64
	MultipartMaxMemory  int64
	CuratorPasswordHash string
}

// Server wraps HTTP handlers for the lookbook API.
type Server struct {
	addr          string
	orchestrator  *upload.Orchestrator
	catalog       *catalog.Catalog
	blobs         blobstore.ObjectStore
	opts          Options
	logger        *slog.Logger
	uploadLimiter chan struct{}
}

// New creates a new server instance.
func New(addr string, orchestrator *upload.Orchestrator, cat *catalog.Catalog, blobs blobstore.ObjectStore, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	if opts.MultipartMaxMemory <= 0 {
		opts.MultipartMaxMemory = defaultMultipartMaxMemory
	}
	opts.CuratorPasswordHash = strings.TrimSpace(opts.CuratorPasswordHash)

	return &Server{
		addr:          addr,
		orchestrator:  orchestrator,
		catalog:       cat,
		blobs:         blobs,
		opts:          opts,
		logger:        logger.With("component", "server"),
		uploadLimiter: make(chan struct{}, uploadConcurrencyLimit),
	}
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.withRequestLogging(s.withCuratorAuth(s.routes()))
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.log().Info("starting server", "addr", s.addr, "curator_auth", s.opts.CuratorPasswordHash != "")
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	return server.ListenAndServe()
}

// ListenAddr converts a base API URL into a listen address.
func ListenAddr(apiURL string) (string, error) {
	if apiURL == "" {
		return "", fmt.Errorf("api url is required")
	}
	if u, err := url.Parse(apiURL); err == nil && u.Host != "" {
		host := u.Hostname()
		if !isAllowedListenHost(host) {
			return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
		}
		return u.Host, nil
	}

	host, _, err := net.SplitHostPort(apiURL)
	if err == nil && !isAllowedListenHost(host) {
		return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}

	return apiURL, nil
}

func isAllowedListenHost(host string) bool {
	if host == "" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true") {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) acquireLimiter(limiter chan struct{}, w http.ResponseWriter, r *http.Request, name string) bool {
	if limiter == nil {
		return true
	}
	select {
	case limiter <- struct{}{}:
		return true
	default:
		err := apiError{
			status:  http.StatusTooManyRequests,
			code:    "resource_exhausted",
			errCode: ErrCodeResourceExhausted,
			err:     fmt.Errorf("too many concurrent %s requests", name),
		}
		s.writeErrorReq(w, r, http.StatusTooManyRequests, err)
		return false
	}
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

func (s *Server) releaseLimiter(limiter chan struct{}) {
	if limiter == nil {
		return
	}
	select {
	case <-limiter:
	default:
	}
}
