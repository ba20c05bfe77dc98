package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/url"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/config"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/constants"
	fachttp "github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/http"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/logging"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/models"
)

// retryLogger adapts our logger to the retryablehttp.LeveledLogger
// interface. Only warnings and errors matter; retry chatter stays quiet.
type retryLogger struct {
	log *logging.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{})  {}
func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {}

// Client talks to the carver server. It holds two HTTP clients: a
// retry-wrapped one for API calls and a pool-tuned, timeout-free one for
// evidence uploads.
type Client struct {
	httpClient   *nethttp.Client
	uploadClient *nethttp.Client
	config       *config.AgentConfig
	baseURL      string
	log          *logging.Logger

	tokenMu sync.Mutex
	token   string
}

// NewClient creates a new carver server client. The retry budget for
// API calls follows cfg.Polling.RetryMax; with the default of 0 every
// request is a single attempt.
func NewClient(cfg *config.AgentConfig, log *logging.Logger) (*Client, error) {
	httpClient, err := fachttp.ConfigureHTTPClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	uploadClient, err := fachttp.CreateTransferClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure transfer client: %w", err)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = httpClient
	retryClient.RetryMax = cfg.Polling.RetryMax
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 15 * time.Second
	retryClient.Logger = &retryLogger{log: log}

	return &Client{
		httpClient:   retryClient.StandardClient(),
		uploadClient: uploadClient,
		config:       cfg,
		baseURL:      cfg.BaseURL(),
		log:          log,
	}, nil
}

// BaseURL returns the server URL this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// EnsureSessionToken returns the cached anti-forgery token, fetching it
// from the server on first use. Mutating endpoints require the token
// both as a form field and as the X-CSRF-Token header.
func (c *Client) EnsureSessionToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.token != "" {
		return c.token, nil
	}
	if c.config.SessionToken != "" {
		c.token = c.config.SessionToken
		return c.token, nil
	}

	var payload struct {
		CSRF string `json:"csrf"`
	}
	if err := c.getJSON(ctx, "/api/get_csrf", &payload); err != nil {
		return "", fmt.Errorf("failed to fetch session token: %w", err)
	}
	if payload.CSRF == "" {
		return "", fmt.Errorf("server returned an empty session token")
	}
	c.token = payload.CSRF
	return c.token, nil
}

// CreateImage submits an acquisition request and returns the new job ID.
// Rejections come back as *SubmissionError.
func (c *Client) CreateImage(ctx context.Context, req *models.AcquisitionRequest) (string, error) {
	token, err := c.EnsureSessionToken(ctx)
	if err != nil {
		return "", err
	}

	form := req.FormValues()
	form.Set("csrf_token", token)

	resp, err := c.postForm(ctx, "/api/create_image", form, token)
	if err != nil {
		return "", fmt.Errorf("create image request failed: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		JobID   string `json:"job_id"`
		ErrCode string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode create image response: %w", err)
	}

	if payload.JobID == "" {
		code := payload.ErrCode
		if code == "" {
			code = fmt.Sprintf("http_%d", resp.StatusCode)
		}
		return "", &SubmissionError{Code: code, Message: payload.Message}
	}
	return payload.JobID, nil
}

// ImageStatus fetches one status snapshot for a job. A 404 maps to
// ErrJobNotFound; transport failures are returned as-is for the monitor
// to classify.
func (c *Client) ImageStatus(ctx context.Context, jobID string) (*models.JobSnapshot, error) {
	req, err := c.newRequest(ctx, "GET", "/api/image_status/"+url.PathEscape(jobID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == nethttp.StatusNotFound {
		return nil, ErrJobNotFound
	}
	if resp.StatusCode != nethttp.StatusOK {
		return nil, fmt.Errorf("status endpoint returned %d", resp.StatusCode)
	}

	var snapshot models.JobSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode status response: %w", err)
	}
	return &snapshot, nil
}

// ListDevices returns the block devices the server can image.
func (c *Client) ListDevices(ctx context.Context) ([]models.Device, error) {
	var payload struct {
		Devices []models.Device `json:"devices"`
	}
	if err := c.getJSON(ctx, "/api/devices", &payload); err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return payload.Devices, nil
}

// UploadedFiles fetches the server's uploaded-files inventory.
func (c *Client) UploadedFiles(ctx context.Context) (models.Inventory, error) {
	var payload struct {
		UploadedFiles models.Inventory `json:"uploaded_files"`
	}
	if err := c.getJSON(ctx, "/api/uploaded_files", &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch inventory: %w", err)
	}
	if payload.UploadedFiles == nil {
		payload.UploadedFiles = models.Inventory{}
	}
	return payload.UploadedFiles, nil
}

// ListDir lists a server-side directory under a browse root.
func (c *Client) ListDir(ctx context.Context, root, path string) (*models.Listing, error) {
	q := url.Values{}
	q.Set("root", root)
	q.Set("path", path)

	var listing models.Listing
	if err := c.getJSON(ctx, "/api/fs/list?"+q.Encode(), &listing); err != nil {
		return nil, fmt.Errorf("failed to list %s:%s: %w", root, path, err)
	}
	return &listing, nil
}

// MakeDir creates a directory under a browse root.
func (c *Client) MakeDir(ctx context.Context, root, path string) error {
	return c.postFS(ctx, "/api/fs/mkdir", root, path)
}

// Delete removes a file or directory under a browse root.
func (c *Client) Delete(ctx context.Context, root, path string) error {
	return c.postFS(ctx, "/api/fs/delete", root, path)
}

func (c *Client) postFS(ctx context.Context, endpoint, root, path string) error {
	token, err := c.EnsureSessionToken(ctx)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("root", root)
	form.Set("path", path)
	form.Set("csrf_token", token)

	resp, err := c.postForm(ctx, endpoint, form, token)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		return fmt.Errorf("%s returned %d: %s", endpoint, resp.StatusCode, readErrorBody(resp.Body))
	}
	return nil
}

// Upload streams one file to the server's multipart upload endpoint.
// The body is piped, so arbitrarily large images upload without
// buffering. progress receives cumulative byte counts; it may be nil.
// Cancellation of ctx surfaces as a *TransferError with Aborted set.
func (c *Client) Upload(ctx context.Context, root, destPath, name string, r io.Reader, progress func(sent int64)) error {
	token, err := c.EnsureSessionToken(ctx)
	if err != nil {
		return err
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		err := writeUploadBody(writer, root, destPath, name, token, r, progress)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.Close()
	}()

	req, err := nethttp.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/fs/upload", pr)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-CSRF-Token", token)
	req.Header.Set("User-Agent", constants.UserAgent)

	resp, err := c.uploadClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return &TransferError{Name: name, Aborted: true}
		}
		return &TransferError{Name: name, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TransferError{
			Name:    name,
			Status:  resp.StatusCode,
			Message: readErrorBody(resp.Body),
		}
	}
	return nil
}

func writeUploadBody(writer *multipart.Writer, root, destPath, name, token string, r io.Reader, progress func(int64)) error {
	if err := writer.WriteField("root", root); err != nil {
		return err
	}
	if err := writer.WriteField("path", destPath); err != nil {
		return err
	}
	if err := writer.WriteField("csrf_token", token); err != nil {
		return err
	}

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return err
	}

	var sent int64
	buf := make([]byte, 256*1024)
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			if _, err := part.Write(buf[:n]); err != nil {
				return err
			}
			sent += int64(n)
			if progress != nil {
				progress(sent)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return readErr
		}
	}

	return writer.Close()
}

// getJSON performs an authenticated GET and decodes the JSON payload.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := c.newRequest(ctx, "GET", path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, token string) (*nethttp.Response, error) {
	contentType, reader, err := encodeMultipartForm(form)
	if err != nil {
		return nil, err
	}

	req, err := nethttp.NewRequestWithContext(ctx, "POST", c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-CSRF-Token", token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", constants.UserAgent)

	return c.httpClient.Do(req)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*nethttp.Request, error) {
	req, err := nethttp.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", constants.UserAgent)
	return req, nil
}

// encodeMultipartForm renders url.Values as a multipart body, the only
// form encoding the mutating endpoints accept.
func encodeMultipartForm(form url.Values) (string, io.Reader, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, values := range form {
		for _, v := range values {
			if err := writer.WriteField(key, v); err != nil {
				return "", nil, err
			}
		}
	}
	if err := writer.Close(); err != nil {
		return "", nil, err
	}
	return writer.FormDataContentType(), &buf, nil
}

// readErrorBody extracts a short diagnostic from an error response,
// preferring the server's JSON message field.
func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return "no response body"
	}
	var payload struct {
		Message string `json:"message"`
		ErrCode string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.ErrCode != "" {
			return payload.ErrCode
		}
	}
	return string(data)
}
