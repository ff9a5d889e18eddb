package shopify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"voyage-bff/internal/model"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()
	return NewAdapter(newTestClient(t, handler), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAdapter_ListProducts_DemoFallback(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	products, err := a.ListProducts(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListProducts() error: %v", err)
	}

	demo, _ := DemoProducts()
	if len(products) != len(demo) {
		t.Errorf("ListProducts() = %d products, want %d demo products", len(products), len(demo))
	}
}

func TestAdapter_ListProducts_DefaultLimit(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "50" {
			t.Errorf("limit = %s, want 50", got)
		}
		io.WriteString(w, `{"products":[{"id":1,"variants":[{"id":11,"price":"9.99","inventory_quantity":1}]}]}`)
	})

	products, err := a.ListProducts(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListProducts() error: %v", err)
	}
	if len(products) != 1 || products[0].PriceRange.MinVariantPrice.Amount != "9.99" {
		t.Errorf("ListProducts() = %+v", products)
	}
}

func TestAdapter_CollectionProducts(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/custom_collections.json":
			io.WriteString(w, `{"custom_collections":[{"id":11,"handle":"mens"}]}`)
		case "/smart_collections.json":
			io.WriteString(w, `{"smart_collections":[{"id":12,"handle":"womens"}]}`)
		case "/collections/12/products.json":
			io.WriteString(w, `{"products":[{"id":5,"title":"Cat Eye"}]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	products, err := a.CollectionProducts(context.Background(), "womens")
	if err != nil {
		t.Fatalf("CollectionProducts() error: %v", err)
	}
	if len(products) != 1 || products[0].Title != "Cat Eye" {
		t.Errorf("CollectionProducts() = %+v", products)
	}
}

func TestAdapter_CollectionProducts_UnknownHandle(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/custom_collections.json":
			io.WriteString(w, `{"custom_collections":[]}`)
		case "/smart_collections.json":
			io.WriteString(w, `{"smart_collections":[]}`)
		}
	})

	_, err := a.CollectionProducts(context.Background(), "nope")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 404 {
		t.Fatalf("error = %v, want 404", err)
	}
	if apiErr.Message != "Collection not found" {
		t.Errorf("Message = %q, want %q", apiErr.Message, "Collection not found")
	}
}

func TestAdapter_LensOptions_NeverFails(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	opts, err := a.LensOptions(context.Background())
	if err != nil {
		t.Fatalf("LensOptions() error: %v", err)
	}
	if opts.AllLenses == nil || len(opts.AllLenses) != 0 {
		t.Errorf("AllLenses = %#v, want empty", opts.AllLenses)
	}
}

func TestAdapter_ShopInfo(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"shop":{"name":"Voyage","domain":"voyage.example","currency":"INR"}}`)
	})

	shop, err := a.ShopInfo(context.Background())
	if err != nil {
		t.Fatalf("ShopInfo() error: %v", err)
	}
	want := model.Shop{Name: "Voyage", PrimaryDomain: "voyage.example", CurrencyCode: "INR"}
	if *shop != want {
		t.Errorf("ShopInfo() = %+v, want %+v", *shop, want)
	}
}
