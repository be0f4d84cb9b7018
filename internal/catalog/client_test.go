package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"gestor/internal"
	"gestor/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func testClientConfig() config.Config {
	cfg, _ := config.Load()
	cfg.CatalogAPIBaseURL = "https://example.test/api"
	cfg.CatalogAPIToken = "test"
	cfg.CatalogRateLimitRPS = 1000
	return cfg
}

func TestGetProductsWithRetry(t *testing.T) {
	attempt := 0

	client := NewClient(testClientConfig())
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.URL.Path != "/api/products" {
				t.Fatalf("unexpected path %s", r.URL.Path)
			}
			if r.Header.Get("Authorization") != "Bearer test" {
				t.Fatalf("auth header %q", r.Header.Get("Authorization"))
			}
			attempt++
			if attempt == 1 {
				return &http.Response{
					StatusCode: http.StatusServiceUnavailable,
					Body:       io.NopCloser(strings.NewReader(`{"error":"boom"}`)),
					Header:     make(http.Header),
				}, nil
			}

			payload := []map[string]any{
				{"id": 1, "codigo": "A001", "nombre": "Lapicera", "categoria": "Librería", "precio": 100.0, "stock": 4},
				{"id": 2, "codigo": "", "nombre": "Fila sin código"},
				{"id": 3, "codigo": "A002", "nombre": "Cuaderno", "precio": 200.0},
			}
			blob, _ := json.Marshal(payload)
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(string(blob))),
				Header:     make(http.Header),
			}, nil
		}),
	}

	products, err := client.GetProducts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 2 {
		t.Fatalf("len=%d", len(products))
	}
	if products[0].Code != "A001" || products[0].Price != 100 {
		t.Fatalf("got %+v", products[0])
	}
	if attempt != 2 {
		t.Fatalf("attempt=%d", attempt)
	}
}

func TestPushProductsPayload(t *testing.T) {
	var captured []map[string]any

	client := NewClient(testClientConfig())
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.Method != http.MethodPost || r.URL.Path != "/api/products/sync" {
				t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
			}
			blob, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(blob, &captured); err != nil {
				t.Fatal(err)
			}
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(`{"success":true,"inserted":1,"updated":1}`)),
				Header:     make(http.Header),
			}, nil
		}),
	}

	err := client.PushProducts(context.Background(), []internal.Product{
		{ID: 1, Code: "A001", Name: "Lapicera", Price: 100, Stock: 4},
		{ID: 2, Code: "A002", Name: "Cuaderno", Price: 200, Stock: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(captured) != 2 {
		t.Fatalf("len=%d", len(captured))
	}
	if captured[0]["codigo"] != "A001" || captured[0]["precio"] != 100.0 {
		t.Fatalf("got %+v", captured[0])
	}
}

func TestPushProductsRejected(t *testing.T) {
	client := NewClient(testClientConfig())
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(`{"error":"catálogo bloqueado"}`)),
				Header:     make(http.Header),
			}, nil
		}),
	}

	err := client.PushProducts(context.Background(), []internal.Product{{Code: "A001", Name: "x", Price: 1}})
	if err == nil || !strings.Contains(err.Error(), "catálogo bloqueado") {
		t.Fatalf("err=%v", err)
	}
}

func TestClientGivesUpOnPermanentError(t *testing.T) {
	client := NewClient(testClientConfig())
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusUnauthorized,
				Body:       io.NopCloser(strings.NewReader(`{}`)),
				Header:     make(http.Header),
			}, nil
		}),
	}

	_, err := client.GetProducts(context.Background())
	if err == nil || !strings.Contains(err.Error(), "status=401") {
		t.Fatalf("err=%v", err)
	}
}
