package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gestor/internal"
	"gestor/internal/config"
)

// Client talks to the store backend: it pulls the current product catalog
// and pushes a merged catalog back after an import run.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
}

type productPayload struct {
	ID        int     `json:"id"`
	Codigo    string  `json:"codigo"`
	Nombre    string  `json:"nombre"`
	Categoria string  `json:"categoria"`
	Precio    float64 `json:"precio"`
	Costo     float64 `json:"costo"`
	Stock     int     `json:"stock"`
	Unidad    string  `json:"unidad"`
}

type syncResponse struct {
	Success  bool   `json:"success"`
	Inserted int    `json:"inserted"`
	Updated  int    `json:"updated"`
	Errors   int    `json:"errors"`
	Error    string `json:"error"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.CatalogTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.CatalogRateLimitRPS),
	}
}

// GetProducts fetches the full remote catalog.
func (c *Client) GetProducts(ctx context.Context) ([]internal.Product, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "products", nil)
	if err != nil {
		return nil, err
	}

	var payload []productPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decodificando catálogo: %w", err)
	}

	out := make([]internal.Product, 0, len(payload))
	for _, p := range payload {
		if strings.TrimSpace(p.Codigo) == "" {
			continue
		}
		out = append(out, internal.Product{
			ID:       p.ID,
			Code:     p.Codigo,
			Name:     p.Nombre,
			Category: p.Categoria,
			Price:    p.Precio,
			Cost:     p.Costo,
			Stock:    p.Stock,
			Unit:     p.Unidad,
		})
	}
	return out, nil
}

// PushProducts uploads the whole merged catalog in one call.
func (c *Client) PushProducts(ctx context.Context, products []internal.Product) error {
	payload := make([]productPayload, 0, len(products))
	for _, p := range products {
		payload = append(payload, productPayload{
			ID:        p.ID,
			Codigo:    p.Code,
			Nombre:    p.Name,
			Categoria: p.Category,
			Precio:    p.Price,
			Costo:     p.Cost,
			Stock:     p.Stock,
			Unidad:    p.Unit,
		})
	}

	blob, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	body, err := c.doRequest(ctx, http.MethodPost, "products/sync", blob)
	if err != nil {
		return err
	}

	var resp syncResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		// Older backends answer with a bare counts object; a decode
		// failure on a 2xx body is not a push failure.
		return nil
	}
	if resp.Error != "" {
		return fmt.Errorf("sincronización rechazada: %s", resp.Error)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	baseURL := strings.TrimRight(c.cfg.CatalogAPIBaseURL, "/") + "/"
	u, err := url.Parse(baseURL + endpoint)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= 5; attempt++ {
		c.limiter.WaitTurn()

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token := strings.TrimSpace(c.cfg.CatalogAPIToken); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < 5 {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("catalog api status %d", resp.StatusCode)
				continue
			}
			return nil, fmt.Errorf("catalog api error: status=%d body=%s", resp.StatusCode, string(respBody))
		}

		return respBody, nil
	}

	if lastErr == nil {
		lastErr = errors.New("catalog request failed")
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
