package server

import (
	"fmt"
	"net/http"

	"lookbook/internal/auth"
)

const curatorRealm = `Basic realm="lookbook", charset="UTF-8"`

// withCuratorAuth requires curator basic auth on every non-read request
// once a password hash is configured.
func (s *Server) withCuratorAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.CuratorPasswordHash == "" || isReadOnlyMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		username, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", curatorRealm)
			s.writeErrorReq(w, r, http.StatusUnauthorized, unauthorized(fmt.Errorf("curator credentials required")))
			return
		}
		if !auth.VerifyCurator(s.opts.CuratorPasswordHash, username, password) {
			w.Header().Set("WWW-Authenticate", curatorRealm)
			s.writeErrorReq(w, r, http.StatusUnauthorized, unauthorized(fmt.Errorf("invalid curator credentials")))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isReadOnlyMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}
