package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/canteenhub/canteen-backend/pkg/config"
	pkgerrors "github.com/canteenhub/canteen-backend/pkg/errors"
	"github.com/canteenhub/canteen-backend/pkg/logger"
)

// MsgUploadFailed is the single message surfaced to clients when the
// blob store rejects an upload, regardless of the underlying cause.
const MsgUploadFailed = "image upload failed"

const pingTimeout = 5 * time.Second

var (
	errBaseURLRequired = errors.New("blob base url is required")
	errTokenRequired   = errors.New("blob token is required")
	errLoggerRequired  = errors.New("blob logger is required")
)

// Client uploads public assets to the blob storage service over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *logger.Logger
}

// NewClient validates the configuration and returns the wrapper.
func NewClient(cfg config.BlobConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errTokenRequired
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    baseURL,
		token:      token,
		logger:     logg,
	}, nil
}

// ObjectPath builds the storage path for an upload. The timestamp
// prefix keeps repeated uploads of the same filename from colliding.
func ObjectPath(prefix, filename string, now time.Time) string {
	base := path.Base(strings.TrimSpace(filename))
	if base == "." || base == "/" || base == "" {
		base = "upload"
	}
	base = strings.ReplaceAll(base, " ", "-")
	return fmt.Sprintf("%s/%d-%s", strings.Trim(prefix, "/"), now.UnixMilli(), base)
}

// Upload stores the object and returns its public URL.
func (c *Client) Upload(ctx context.Context, objectPath string, contentType string, body io.Reader) (string, error) {
	if c == nil {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "blob client not initialized")
	}
	objectPath = strings.TrimLeft(strings.TrimSpace(objectPath), "/")
	if objectPath == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "blob object path is required")
	}
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(objectPath))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	uploadURL := c.baseURL + "/" + escapePath(objectPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, body)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, MsgUploadFailed)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, MsgUploadFailed)
	}
	defer c.closeBody(ctx, resp.Body)

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<12))
		cause := fmt.Errorf("blob upload status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, cause, MsgUploadFailed)
	}

	return uploadURL, nil
}

// Ping verifies the store is reachable with the configured token.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return errors.New("blob client not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("blob ping: %w", err)
	}
	defer c.closeBody(ctx, resp.Body)

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("blob ping status %d", resp.StatusCode)
	}
	return nil
}

func escapePath(objectPath string) string {
	segments := strings.Split(objectPath, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

func (c *Client) closeBody(ctx context.Context, body io.Closer) {
	if body == nil {
		return
	}
	if err := body.Close(); err != nil && c.logger != nil {
		c.logger.Warn(ctx, "closing blob response body failed")
	}
}
