package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"lookbook/internal/api"
	"lookbook/internal/models"
	"lookbook/internal/upload"
)

const genericMediaType = "application/octet-stream"

func (s *Server) handleCreateUpload(w http.ResponseWriter, r *http.Request) {
	s.withLimiter(w, r, s.uploadLimiter, "upload", func() {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
		if err := r.ParseMultipartForm(s.opts.MultipartMaxMemory); err != nil {
			s.writeErrorReq(w, r, http.StatusBadRequest, classifyMultipartError(err))
			return
		}
		defer r.MultipartForm.RemoveAll()

		req, err := uploadRequestFromForm(r.MultipartForm)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}

		res, err := s.orchestrator.Upload(r.Context(), req)
		if res.UploadID != "" {
			annotateRequest(r, "upload_id", res.UploadID, "upload_state", res.State, "image_id", res.ImageID)
		}
		if err != nil {
			s.writeUploadError(w, r, res, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, uploadResponse(res))
	})
}

// writeUploadError maps orchestrator failures to HTTP statuses. Failures
// after writing started carry the partial result so the caller can see
// which records were kept.
func (s *Server) writeUploadError(w http.ResponseWriter, r *http.Request, res upload.Result, err error) {
	var (
		validation *upload.ValidationError
		format     *upload.FormatError
		partial    *upload.PartialPropagationError
		remote     *upload.RemoteWriteError
	)
	switch {
	case errors.As(err, &validation):
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(err, ErrCodeInvalidUpload))
	case errors.As(err, &format):
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(err, ErrCodeUnsupportedMedia))
	case errors.Is(err, upload.ErrUploadInProgress):
		s.writeErrorReq(w, r, http.StatusConflict, conflictCode(err, ErrCodeUploadBusy))
	case errors.As(err, &remote) && errors.Is(err, context.DeadlineExceeded):
		body := uploadResponse(res)
		s.writeErrorBody(w, r, http.StatusGatewayTimeout, gatewayTimeout(err), &body)
	case errors.As(err, &partial):
		body := uploadResponse(res)
		s.writeErrorBody(w, r, http.StatusBadGateway, badGatewayCode(err, ErrCodePartialPropagate), &body)
	case errors.As(err, &remote):
		body := uploadResponse(res)
		s.writeErrorBody(w, r, http.StatusBadGateway, badGatewayCode(err, ErrCodeRemoteWrite), &body)
	default:
		s.writeErrorReq(w, r, http.StatusInternalServerError, internalError(err))
	}
}

// uploadRequestFromForm assembles an upload request from the multipart
// form. Each region's "file" names the part carrying its item image.
func uploadRequestFromForm(form *multipart.Form) (upload.Request, error) {
	image, imageName, _, err := readFormFile(form, "image")
	if err != nil {
		return upload.Request{}, err
	}

	req := upload.Request{
		Image:       image,
		FileName:    firstNonEmpty(formValue(form, "file_name"), imageName),
		Title:       formValue(form, "title"),
		Artist:      formValue(form, "artist"),
		Description: formValue(form, "description"),
	}

	var regions []api.UploadRegion
	if raw := formValue(form, "regions"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &regions); err != nil {
			return upload.Request{}, badRequestCode(fmt.Errorf("invalid regions: %w", err), ErrCodeInvalidJSON)
		}
	}

	for i, region := range regions {
		out := upload.Region{
			Position:  region.Position,
			Item:      itemInput(region.Item),
			Brands:    region.Brands,
			MediaType: strings.TrimSpace(region.MediaType),
		}
		if part := strings.TrimSpace(region.File); part != "" {
			if len(form.File[part]) == 0 {
				return upload.Request{}, badRequestCode(fmt.Errorf("regions[%d].file: part %q not found", i, part), ErrCodeMissingRequired)
			}
			data, _, mediaType, err := readFormFile(form, part)
			if err != nil {
				return upload.Request{}, err
			}
			out.Image = data
			if out.MediaType == "" && mediaType != genericMediaType {
				out.MediaType = mediaType
			}
		}
		req.Regions = append(req.Regions, out)
	}
	return req, nil
}

func itemInput(item api.UploadItem) upload.ItemInput {
	in := upload.ItemInput{
		Name:         item.Name,
		Price:        item.Price,
		Category:     models.ItemCategory(strings.TrimSpace(item.Category)),
		AffiliateURL: strings.TrimSpace(item.AffiliateURL),
		Description:  item.Description,
	}
	if currency, err := models.ParseCurrency(string(item.Price.Currency)); err == nil {
		in.Price.Currency = currency
	}
	if category, err := models.ParseItemCategory(item.Category); err == nil {
		in.Category = category
	}
	return in
}

func readFormFile(form *multipart.Form, field string) ([]byte, string, string, error) {
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, "", "", badRequestCode(fmt.Errorf("%s is required", field), ErrCodeMissingRequired)
	}
	header := headers[0]
	f, err := header.Open()
	if err != nil {
		return nil, "", "", badRequestCode(fmt.Errorf("open %s: %w", field, err), ErrCodeInvalidArgument)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", "", badRequestCode(fmt.Errorf("read %s: %w", field, err), ErrCodeInvalidArgument)
	}
	return data, header.Filename, strings.TrimSpace(header.Header.Get("Content-Type")), nil
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}

func uploadResponse(res upload.Result) api.UploadResponse {
	out := api.UploadResponse{
		UploadID:    res.UploadID,
		State:       string(res.State),
		ImageID:     res.ImageID,
		ArtistID:    res.ArtistID,
		ItemIDs:     res.ItemIDs,
		BrandIDs:    res.BrandIDs,
		TaggedItems: res.TaggedItems,
		Propagation: api.PropagationResponse{Targets: []api.TargetResponse{}},
	}
	for _, target := range res.Propagation.Targets {
		t := api.TargetResponse{Collection: string(target.Collection), ID: target.ID, Name: target.Name}
		if target.Err != nil {
			t.Error = target.Err.Error()
		}
		out.Propagation.Targets = append(out.Propagation.Targets, t)
	}
	return out
}

func classifyMultipartError(err error) error {
	if err == nil {
		return nil
	}
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) || strings.Contains(strings.ToLower(err.Error()), "request body too large") {
		return badRequestCode(fmt.Errorf("request body too large"), ErrCodeRequestTooLarge)
	}
	return badRequestCode(err, ErrCodeInvalidArgument)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}
