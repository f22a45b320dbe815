package server

import (
	"net/http"

	"lookbook/internal/api"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	counts, err := s.catalog.Counts(r.Context())
	if err != nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError, storeFailure(err))
		return
	}

	resp := api.InfoResponse{
		StoreBackend:          s.opts.StoreBackend,
		Counts:                make(map[string]int, len(counts)),
		AllowedItemMediaTypes: s.orchestrator.AllowedItemMediaTypes(),
		DescriptionMaxBytes:   s.orchestrator.Policy().DescriptionMaxBytes,
		CuratorAuth:           s.opts.CuratorPasswordHash != "",
	}
	for collection, n := range counts {
		resp.Counts[string(collection)] = n
	}

	s.writeJSON(w, http.StatusOK, resp)
}
