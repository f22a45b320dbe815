package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"lookbook/internal/auth"
	"lookbook/internal/models"
)

const (
	defaultHTTPTimeout       = 10 * time.Second
	httpTimeoutEnvKey        = "LOOKBOOK_HTTP_TIMEOUT"
	curatorPasswordEnvKey    = "LOOKBOOK_CURATOR_PASSWORD"
	regionFilePartPrefix     = "region_"
	defaultUploadHTTPTimeout = 5 * time.Minute
)

// Client is a simple HTTP client for the lookbook API.
type Client struct {
	baseURL         string
	http            *http.Client
	uploadHTTP      *http.Client
	curatorPassword string
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	timeout := httpTimeoutFromEnv()
	uploadTimeout := defaultUploadHTTPTimeout
	if timeout > uploadTimeout {
		uploadTimeout = timeout
	}
	return &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		http:            &http.Client{Timeout: timeout},
		uploadHTTP:      &http.Client{Timeout: uploadTimeout},
		curatorPassword: os.Getenv(curatorPasswordEnvKey),
	}
}

// SetCuratorPassword sets the password sent as basic auth on mutating calls.
func (c *Client) SetCuratorPassword(password string) {
	c.curatorPassword = password
}

// Ping checks whether the API server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) GetInfo(ctx context.Context) (InfoResponse, error) {
	var resp InfoResponse
	err := c.do(ctx, http.MethodGet, "/v1/info", nil, &resp)
	return resp, err
}

// Upload sends one image with its tagged regions as a multipart request.
// Region images are sent as parts named region_<index>.
func (c *Client) Upload(ctx context.Context, req UploadRequest) (UploadResponse, error) {
	var resp UploadResponse

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := [][2]string{
		{"file_name", req.FileName},
		{"title", req.Title},
		{"artist", req.Artist},
		{"description", req.Description},
	}
	for _, field := range fields {
		if err := mw.WriteField(field[0], field[1]); err != nil {
			return resp, err
		}
	}

	regions := make([]UploadRegion, 0, len(req.Regions))
	for i, region := range req.Regions {
		regions = append(regions, UploadRegion{
			Position:  region.Position,
			Item:      region.Item,
			Brands:    region.Brands,
			File:      regionFilePartPrefix + strconv.Itoa(i),
			MediaType: region.Image.MediaType,
		})
	}
	regionsJSON, err := json.Marshal(regions)
	if err != nil {
		return resp, err
	}
	if err := mw.WriteField("regions", string(regionsJSON)); err != nil {
		return resp, err
	}

	if err := writeFilePart(mw, "image", firstNonEmpty(req.Image.Name, req.FileName), req.Image); err != nil {
		return resp, err
	}
	for i, region := range req.Regions {
		if err := writeFilePart(mw, regions[i].File, region.Image.Name, region.Image); err != nil {
			return resp, err
		}
	}
	if err := mw.Close(); err != nil {
		return resp, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/uploads", &body)
	if err != nil {
		return resp, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	c.setAuthHeader(httpReq)

	httpResp, err := c.uploadHTTP.Do(httpReq)
	if err != nil {
		return resp, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 400 {
		return resp, decodeError(httpResp)
	}
	err = json.NewDecoder(httpResp.Body).Decode(&resp)
	return resp, err
}

func (c *Client) GetImage(ctx context.Context, id string) (ImageDetailResponse, error) {
	var resp ImageDetailResponse
	err := c.do(ctx, http.MethodGet, "/v1/images/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

func (c *Client) GetItem(ctx context.Context, ref string) (models.Item, error) {
	var resp models.Item
	err := c.do(ctx, http.MethodGet, "/v1/items/"+url.PathEscape(ref), nil, &resp)
	return resp, err
}

func (c *Client) ListBrands(ctx context.Context) ([]models.Brand, error) {
	var resp []models.Brand
	err := c.do(ctx, http.MethodGet, "/v1/brands", nil, &resp)
	return resp, err
}

func (c *Client) CreateBrand(ctx context.Context, req BrandCreateRequest) (BrandCreateResponse, error) {
	var resp BrandCreateResponse
	err := c.do(ctx, http.MethodPost, "/v1/brands", req, &resp)
	return resp, err
}

func (c *Client) GetBrand(ctx context.Context, ref string) (models.Brand, error) {
	var resp models.Brand
	err := c.do(ctx, http.MethodGet, "/v1/brands/"+url.PathEscape(ref), nil, &resp)
	return resp, err
}

func (c *Client) GetArtist(ctx context.Context, ref string) (models.Artist, error) {
	var resp models.Artist
	err := c.do(ctx, http.MethodGet, "/v1/artists/"+url.PathEscape(ref), nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuthHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		return &APIError{
			Status:    resp.StatusCode,
			Code:      errResp.Code,
			ErrorCode: errResp.ErrorCode,
			Message:   errResp.Error,
			Upload:    errResp.Upload,
		}
	}
	return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("api error: %s", resp.Status)}
}

func (c *Client) setAuthHeader(req *http.Request) {
	if c.curatorPassword == "" || req == nil {
		return
	}
	if req.Method == http.MethodGet || req.Method == http.MethodHead {
		return
	}
	req.SetBasicAuth(auth.CuratorUsername, c.curatorPassword)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFilePart(mw *multipart.Writer, field, filename string, file UploadFile) error {
	if filename == "" {
		filename = field
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(filename)))
	mediaType := file.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	h.Set("Content-Type", mediaType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(file.Data)
	return err
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
