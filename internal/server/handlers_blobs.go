package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"lookbook/internal/blobstore"
)

func (s *Server) handleGetBlob(w http.ResponseWriter, r *http.Request) {
	path := r.PathValue("path")
	info, err := s.blobs.Stat(r.Context(), path)
	if err != nil {
		s.writeServiceError(w, r, blobError(err))
		return
	}

	rc, err := s.blobs.Open(r.Context(), info.Path)
	if err != nil {
		s.writeServiceError(w, r, blobError(err))
		return
	}
	defer rc.Close()

	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}
	if info.SHA256 != "" {
		w.Header().Set("ETag", strconv.Quote(info.SHA256))
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")

	if seeker, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, info.Path, info.UpdatedAt, seeker)
		return
	}

	w.Header().Set("Content-Length", strconv.FormatInt(info.SizeBytes, 10))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, rc); err != nil {
		s.log().Warn("blob stream interrupted", "path", info.Path, "error", err)
	}
}

func blobError(err error) error {
	switch {
	case errors.Is(err, blobstore.ErrNotFound):
		return notFoundCode(fmt.Errorf("blob not found"), ErrCodeBlobNotFound)
	case errors.Is(err, blobstore.ErrInvalidPath):
		return badRequestCode(err, ErrCodeInvalidBlobPath)
	default:
		return internalError(err)
	}
}
