package server

import (
	"errors"
	"fmt"
	"net/http"

	"lookbook/internal/api"
	"lookbook/internal/catalog"
	"lookbook/internal/store"
)

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathRefOrBadRequest(w, r)
	if !ok {
		return
	}
	detail, err := s.catalog.GetImageDetail(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, lookupError(err, "image", ErrCodeImageNotFound))
		return
	}
	s.writeJSON(w, http.StatusOK, imageDetailResponse(detail))
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.pathRefOrBadRequest(w, r)
	if !ok {
		return
	}
	item, err := s.catalog.GetItem(r.Context(), ref)
	if err != nil {
		s.writeServiceError(w, r, lookupError(err, "item", ErrCodeItemNotFound))
		return
	}
	s.writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleGetArtist(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.pathRefOrBadRequest(w, r)
	if !ok {
		return
	}
	artist, err := s.catalog.GetArtist(r.Context(), ref)
	if err != nil {
		s.writeServiceError(w, r, lookupError(err, "artist", ErrCodeArtistNotFound))
		return
	}
	s.writeJSON(w, http.StatusOK, artist)
}

func (s *Server) handleListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := s.catalog.ListBrands(r.Context())
	if err != nil {
		s.writeServiceError(w, r, storeFailure(err))
		return
	}
	s.writeJSON(w, http.StatusOK, brands)
}

func (s *Server) handleGetBrand(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.pathRefOrBadRequest(w, r)
	if !ok {
		return
	}
	brand, err := s.catalog.GetBrand(r.Context(), ref)
	if err != nil {
		s.writeServiceError(w, r, lookupError(err, "brand", ErrCodeBrandNotFound))
		return
	}
	s.writeJSON(w, http.StatusOK, brand)
}

func (s *Server) handleCreateBrand(w http.ResponseWriter, r *http.Request) {
	var req api.BrandCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	brand, created, err := s.catalog.CreateBrand(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, catalog.ErrNameRequired) {
			s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(err, ErrCodeMissingRequired))
			return
		}
		s.writeServiceError(w, r, storeFailure(err))
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	s.writeJSON(w, status, api.BrandCreateResponse{Brand: brand, Created: created})
}

func lookupError(err error, kind string, code int) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFoundCode(fmt.Errorf("%s not found", kind), code)
	}
	return storeFailure(err)
}

func imageDetailResponse(detail catalog.ImageDetail) api.ImageDetailResponse {
	out := api.ImageDetailResponse{
		Image:        detail.Image,
		ImageURL:     detail.ImageURL,
		Items:        make([]api.HoverItem, 0, len(detail.Items)),
		Brands:       detail.Brands,
		Artists:      detail.Artists,
		ArtistImages: make([]api.ArtistImage, 0, len(detail.ArtistImages)),
	}
	for _, item := range detail.Items {
		out.Items = append(out.Items, api.HoverItem{Position: item.Position, Item: item.Item})
	}
	for _, img := range detail.ArtistImages {
		out.ArtistImages = append(out.ArtistImages, api.ArtistImage{ID: img.ID, URL: img.URL})
	}
	return out
}
