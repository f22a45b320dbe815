package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check and info.
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /v1/info", s.handleInfo)

	// Uploads.
	mux.HandleFunc("POST /v1/uploads", s.handleCreateUpload)

	// Catalog reads.
	mux.HandleFunc("GET /v1/images/{id}", s.handleGetImage)
	mux.HandleFunc("GET /v1/items/{id}", s.handleGetItem)
	mux.HandleFunc("GET /v1/artists/{id}", s.handleGetArtist)

	// Brands.
	mux.HandleFunc("GET /v1/brands", s.handleListBrands)
	mux.HandleFunc("POST /v1/brands", s.handleCreateBrand)
	mux.HandleFunc("GET /v1/brands/{id}", s.handleGetBrand)

	// Stored objects.
	mux.HandleFunc("GET /blobs/{path...}", s.handleGetBlob)

	return mux
}
