// Package transport реализует storage.Service поверх HTTP API сервера.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"cipherkeeper/internal/app/client/storage"
	"cipherkeeper/internal/domain/record"
	"cipherkeeper/internal/errs"
)

const (
	apiPrefix = "/api/v1"
	userAgent = "Cipherkeeper-Client/1.0"

	// токен обновляется заранее, чтобы не истечь в пути
	tokenLeeway = 30 * time.Second
)

// Credentials - API-ключ клиента
type Credentials struct {
	ClientID  uuid.UUID `json:"client_id"`
	APIKeyID  string    `json:"api_key_id"`
	APISecret string    `json:"api_secret"`
}

type HTTPClient struct {
	client  *http.Client
	baseURL string
	creds   Credentials
	log     *slog.Logger

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

var _ storage.Service = (*HTTPClient)(nil)

type Option func(*HTTPClient)

// WithHTTPClient подменяет http.Client (таймауты, TLS)
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.client = c }
}

// New создает клиента для сервера по baseURL (например, https://keeper:8080)
func New(baseURL string, creds Credentials, log *slog.Logger, opts ...Option) *HTTPClient {
	h := &HTTPClient{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
		baseURL: baseURL,
		creds:   creds,
		log:     log.With("component", "http_transport"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// BaseURL собирает адрес сервера из host:port
func BaseURL(address string, enableTLS bool) string {
	if enableTLS {
		return "https://" + address
	}
	return "http://" + address
}

// Register регистрирует открытый ключ и возвращает выданный API-ключ.
// Авторизация не требуется.
func (h *HTTPClient) Register(ctx context.Context, email, publicKey string) (Credentials, error) {
	req := map[string]string{"email": email, "public_key": publicKey}

	var creds Credentials
	if err := h.do(ctx, http.MethodPost, "/clients", req, &creds, false); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

// HealthCheck проверяет доступность сервера
func (h *HTTPClient) HealthCheck(ctx context.Context) error {
	return h.do(ctx, http.MethodGet, "/health", nil, nil, false)
}

func (h *HTTPClient) GetRecord(ctx context.Context, recordID uuid.UUID) (record.Record, error) {
	var rec record.Record
	if err := h.do(ctx, http.MethodGet, "/records/"+recordID.String(), nil, &rec, true); err != nil {
		return record.Record{}, err
	}
	return rec, nil
}

func (h *HTTPClient) CreateRecord(ctx context.Context, rec record.Record) (record.Record, error) {
	var created record.Record
	if err := h.do(ctx, http.MethodPost, "/records", rec, &created, true); err != nil {
		return record.Record{}, err
	}
	return created, nil
}

// UpdateRecord выполняет условное обновление по meta.version записи
func (h *HTTPClient) UpdateRecord(ctx context.Context, rec record.Record) (record.Record, error) {
	var updated record.Record
	if err := h.do(ctx, http.MethodPut, "/records/"+rec.ID().String(), rec, &updated, true); err != nil {
		return record.Record{}, err
	}
	return updated, nil
}

func (h *HTTPClient) DeleteRecord(ctx context.Context, recordID uuid.UUID) error {
	return h.do(ctx, http.MethodDelete, "/records/"+recordID.String(), nil, nil, true)
}

type queryRequest struct {
	WriterIDs   []uuid.UUID       `json:"writer_ids,omitempty"`
	AllWriters  bool              `json:"all_writers,omitempty"`
	UserIDs     []uuid.UUID       `json:"user_ids,omitempty"`
	RecordIDs   []uuid.UUID       `json:"record_ids,omitempty"`
	Types       []string          `json:"types,omitempty"`
	Plain       map[string]string `json:"plain,omitempty"`
	IncludeData bool              `json:"include_data,omitempty"`
	Count       int               `json:"count,omitempty"`
	AfterIndex  int64             `json:"after_index,omitempty"`
}

type queryResponse struct {
	Results   []record.Record `json:"results"`
	LastIndex int64           `json:"last_index"`
}

func (h *HTTPClient) ListRecords(ctx context.Context, filter storage.Filter) (storage.Page, error) {
	req := queryRequest{
		WriterIDs:   filter.WriterIDs,
		AllWriters:  filter.AllWriters,
		UserIDs:     filter.UserIDs,
		RecordIDs:   filter.RecordIDs,
		Types:       filter.Types,
		IncludeData: filter.IncludeData,
		Count:       filter.Count,
		AfterIndex:  filter.AfterIndex,
	}
	if filter.Plain.Len() > 0 {
		req.Plain = filter.Plain.AsMap()
	}

	var resp queryResponse
	if err := h.do(ctx, http.MethodPost, "/records/query", req, &resp, true); err != nil {
		return storage.Page{}, err
	}
	return storage.Page{Records: resp.Results, LastIndex: resp.LastIndex}, nil
}

func (h *HTTPClient) GetClientInfo(ctx context.Context, idOrEmail string) (storage.ClientInfo, error) {
	var info storage.ClientInfo
	if err := h.do(ctx, http.MethodGet, "/clients/"+url.PathEscape(idOrEmail), nil, &info, true); err != nil {
		return storage.ClientInfo{}, err
	}
	return info, nil
}

func (h *HTTPClient) GetAccessKey(ctx context.Context, writerID, userID, readerID uuid.UUID, typ string) (storage.AccessKeyEnvelope, error) {
	var env storage.AccessKeyEnvelope
	if err := h.do(ctx, http.MethodGet, scopePath("/access_keys", writerID, userID, readerID, typ), nil, &env, true); err != nil {
		return storage.AccessKeyEnvelope{}, err
	}
	return env, nil
}

func (h *HTTPClient) PutAccessKey(ctx context.Context, writerID, userID, readerID uuid.UUID, typ, eak string) error {
	body := map[string]string{"eak": eak}
	return h.do(ctx, http.MethodPut, scopePath("/access_keys", writerID, userID, readerID, typ), body, nil, true)
}

func (h *HTTPClient) DeleteAccessKey(ctx context.Context, writerID, userID, readerID uuid.UUID, typ string) error {
	return h.do(ctx, http.MethodDelete, scopePath("/access_keys", writerID, userID, readerID, typ), nil, nil, true)
}

func (h *HTTPClient) PutPolicy(ctx context.Context, writerID, userID, readerID uuid.UUID, typ string, action storage.Action) error {
	body := map[string]string{"action": string(action)}
	return h.do(ctx, http.MethodPut, scopePath("/policy", writerID, userID, readerID, typ), body, nil, true)
}

func scopePath(prefix string, writerID, userID, readerID uuid.UUID, typ string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", prefix, writerID, userID, readerID, url.PathEscape(typ))
}

// bearer возвращает действующий токен, при необходимости получая новый
func (h *HTTPClient) bearer(ctx context.Context) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.token != "" && time.Now().Add(tokenLeeway).Before(h.expiresAt) {
		return h.token, nil
	}

	req := map[string]string{"api_key_id": h.creds.APIKeyID, "api_secret": h.creds.APISecret}
	var resp struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := h.do(ctx, http.MethodPost, "/auth/token", req, &resp, false); err != nil {
		return "", fmt.Errorf("obtain token: %w", err)
	}

	h.token, h.expiresAt = resp.Token, resp.ExpiresAt
	return h.token, nil
}

func (h *HTTPClient) do(ctx context.Context, method, path string, body, result any, authorized bool) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+apiPrefix+path, reqBody)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", errs.ErrTransport, err)
	}
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorized {
		token, err := h.bearer(ctx)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	h.log.Debug("sending request", "method", method, "path", path)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", errs.ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", errs.ErrTransport, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return statusError(method, path, resp.StatusCode, data)
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return nil
}

// statusError переводит HTTP-статус в ошибку из errs
func statusError(method, path string, status int, body []byte) error {
	var problem struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	detail := http.StatusText(status)
	if json.Unmarshal(body, &problem) == nil {
		switch {
		case problem.Detail != "":
			detail = problem.Detail
		case problem.Error != "":
			detail = problem.Error
		}
	}

	var kind error
	switch status {
	case http.StatusNotFound, http.StatusGone:
		kind = errs.ErrNotFound
	case http.StatusConflict:
		kind = errs.ErrConflict
	case http.StatusForbidden:
		kind = errs.ErrForbidden
	case http.StatusUnauthorized:
		kind = errs.ErrUnauthorized
	default:
		kind = errs.ErrTransport
	}
	return fmt.Errorf("%w: %s %s: status %d: %s", kind, method, path, status, detail)
}
