package libs

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"shop-cart/models"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const maxResponseBytes = 4 << 20

// APIClient talks JSON to the commerce backend. Every failure it returns is
// a *models.AppError.
type APIClient struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewAPIClient(baseURL string, timeout time.Duration, logger *zap.Logger) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
}

func (c *APIClient) Do(ctx context.Context, session models.Session, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &models.AppError{Kind: models.KindUnknown, Message: models.MsgUnexpected, Err: errors.Wrap(err, "encode request")}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &models.AppError{Kind: models.KindUnknown, Message: models.MsgUnexpected, Err: errors.Wrap(err, "build request")}
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}

	log := c.logger.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("backend unreachable", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return models.NewNetworkError(errors.Wrapf(err, "%s %s", method, path))
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		log.Warn("backend response interrupted", zap.Error(err))
		return models.NewNetworkError(errors.Wrapf(err, "read %s %s", method, path))
	}

	log.Debug("backend responded", zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		appErr := models.ErrorFromStatus(resp.StatusCode, serverMessage(payload))
		appErr.Err = errors.Errorf("%s %s: status %d", method, path, resp.StatusCode)
		return appErr
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &models.AppError{
			Kind:    models.KindUnknown,
			Status:  resp.StatusCode,
			Message: models.MsgUnexpected,
			Err:     errors.Wrapf(err, "decode %s %s", method, path),
		}
	}
	return nil
}

func serverMessage(payload []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
