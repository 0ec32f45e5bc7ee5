package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

const (
	defaultTimeout    = 8 * time.Second
	idempotencyHeader = "Idempotency-Key"
	maxErrorBodyBytes = 4096
)

// envelope — канонический конверт ответа удалённого API: {success, data, message}.
// Нормализация происходит один раз здесь; выше по стеку ad hoc fallback-цепочек нет.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// RemoteError — отказ удалённого API (success=false или не-2xx) с сохранённым
// пользовательским сообщением. Разворачивается в ErrGatewayRejected.
type RemoteError struct {
	Status  int
	Message string
	Data    json.RawMessage
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote api: %s (http %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("remote api rejected request (http %d)", e.Status)
}

func (e *RemoteError) Unwrap() error {
	if e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden {
		return domain.ErrUnauthorized
	}
	return domain.ErrGatewayRejected
}

// UserMessage извлекает из ошибки текст, пригодный для показа пользователю.
func UserMessage(err error) string {
	var remote *RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	return ""
}

// Client — HTTP-шлюз к удалённому commerce API. Прикрепляет bearer-токен из
// CredentialStore и переводит транспортные/прикладные сбои в единые ошибки
// domain.ErrGateway*.
type Client struct {
	baseURL string
	http    *http.Client
	creds   domain.CredentialStore
	logger  *log.Entry
}

// NewClient создаёт шлюз для заданного базового URL.
func NewClient(baseURL string, creds domain.CredentialStore, logger *log.Entry) *Client {
	if logger == nil {
		logger = log.New().WithField("component", "gateway")
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		creds:   creds,
		logger:  logger,
	}
}

// do выполняет запрос и декодирует envelope.Data в out (если out != nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.creds != nil {
		token, err := c.creds.Token()
		if err != nil {
			return fmt.Errorf("read bearer token: %w", domain.ErrUnauthorized)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	if key, ok := idempotencyKeyFrom(ctx); ok {
		req.Header.Set(idempotencyHeader, key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WithError(err).WithFields(log.Fields{
			"method": method,
			"path":   path,
		}).Warn("gateway transport failure")
		return fmt.Errorf("%s %s: %v: %w", method, path, err, domain.ErrGatewayUnavailable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %v: %w", method, path, err, domain.ErrGatewayUnavailable)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			// Не-JSON тело трактуем как отказ с обрезанным текстом.
			env = envelope{Message: truncate(string(raw), maxErrorBodyBytes)}
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		return &RemoteError{
			Status:  resp.StatusCode,
			Message: env.Message,
			Data:    env.Data,
		}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: decode data: %w", method, path, err)
		}
	}
	return nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

// Ping проверяет достижимость удалённого API для health check.
// Любой HTTP-ответ считается признаком жизни, ошибкой является только
// транспортный сбой.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build ping request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrGatewayUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodyBytes))

	return nil
}

type idempotencyKeyContextKey struct{}

// WithIdempotencyKey прикрепляет Idempotency-Key к исходящему запросу.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKeyContextKey{}, key)
}

func idempotencyKeyFrom(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(idempotencyKeyContextKey{}).(string)
	return key, ok && key != ""
}
