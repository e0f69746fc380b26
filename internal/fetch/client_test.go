package fetch

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"epitrend/internal/domain"
	"epitrend/internal/infra"
	"epitrend/internal/storage"
)

const (
	seedCSV  = "dateRep,day,month,year,cases,deaths,countriesAndTerritories,geoId,countryterritoryCode\n1/3/2020,1,3,2020,2,0,United_States_of_America,US,USA\n"
	freshCSV = "dateRep,day,month,year,cases,deaths,countriesAndTerritories,geoId,countryterritoryCode\n2/3/2020,2,3,2020,5,1,United_States_of_America,US,USA\n"
)

func newCache(t *testing.T, seed string) *storage.CacheFile {
	t.Helper()
	cache, err := storage.NewCacheFile(filepath.Join(t.TempDir(), "covid19.csv"))
	if err != nil {
		t.Fatalf("NewCacheFile error: %v", err)
	}
	if seed != "" {
		if err := cache.Overwrite([]byte(seed)); err != nil {
			t.Fatalf("Overwrite error: %v", err)
		}
	}
	return cache
}

func newFetcher(t *testing.T, cache Cache, url string, buf *bytes.Buffer) *Fetcher {
	t.Helper()
	logger := infra.Logger(zerolog.New(buf))
	f, err := NewFetcher(cache, Options{URL: url, Logger: &logger})
	if err != nil {
		t.Fatalf("NewFetcher error: %v", err)
	}
	return f
}

func TestRefreshReplacesCacheOn200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		_, _ = w.Write([]byte(freshCSV))
	}))
	defer srv.Close()

	cache := newCache(t, seedCSV)
	var logs bytes.Buffer
	updated, err := newFetcher(t, cache, srv.URL, &logs).Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if !updated {
		t.Fatal("expected cache to be updated")
	}
	got, err := cache.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if string(got) != freshCSV {
		t.Fatalf("cache = %q, want %q", got, freshCSV)
	}
}

func TestRefreshFollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/csv", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/data.csv", http.StatusFound)
	})
	mux.HandleFunc("/data.csv", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(freshCSV))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cache := newCache(t, "")
	var logs bytes.Buffer
	updated, err := newFetcher(t, cache, srv.URL+"/csv", &logs).Refresh(context.Background())
	if err != nil || !updated {
		t.Fatalf("Refresh = %v, %v", updated, err)
	}
	got, _ := cache.Load()
	if string(got) != freshCSV {
		t.Fatalf("cache = %q", got)
	}
}

func TestRefreshServiceUnavailableLeavesCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cache := newCache(t, seedCSV)
	before, _ := cache.Load()

	var logs bytes.Buffer
	updated, err := newFetcher(t, cache, srv.URL, &logs).Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if updated {
		t.Fatal("cache must not be reported as updated")
	}
	after, _ := cache.Load()
	if !bytes.Equal(before, after) {
		t.Fatalf("cache changed: %q -> %q", before, after)
	}
	if !strings.Contains(logs.String(), "refresh failed") || !strings.Contains(logs.String(), "503") {
		t.Fatalf("expected failure log line, got %q", logs.String())
	}
}

func TestRefreshTransportErrorIsLogged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	cache := newCache(t, "seed")
	var logs bytes.Buffer
	updated, err := newFetcher(t, cache, url, &logs).Refresh(context.Background())
	if err != nil || updated {
		t.Fatalf("Refresh = %v, %v; want false, nil", updated, err)
	}
	if !strings.Contains(logs.String(), `"stage":"fetch"`) {
		t.Fatalf("expected fetch stage log, got %q", logs.String())
	}
}

func TestRefreshEmptyBodyIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cache := newCache(t, "seed")
	var logs bytes.Buffer
	updated, err := newFetcher(t, cache, srv.URL, &logs).Refresh(context.Background())
	if err != nil || updated {
		t.Fatalf("Refresh = %v, %v; want false, nil", updated, err)
	}
	got, _ := cache.Load()
	if string(got) != "seed" {
		t.Fatalf("cache = %q", got)
	}
}

func TestRefreshNonCSVPayloadLeavesCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>Service moved</body></html>"))
	}))
	defer srv.Close()

	cache := newCache(t, seedCSV)
	var logs bytes.Buffer
	updated, err := newFetcher(t, cache, srv.URL, &logs).Refresh(context.Background())
	if err != nil || updated {
		t.Fatalf("Refresh = %v, %v; want false, nil", updated, err)
	}
	got, err := cache.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if string(got) != seedCSV {
		t.Fatalf("cache replaced by non-CSV payload: %q", got)
	}
	if !strings.Contains(logs.String(), "not a usable dataset") {
		t.Fatalf("expected payload rejection log, got %q", logs.String())
	}
}

type failingCache struct {
	exists bool
}

func (c failingCache) Exists() bool { return c.exists }

func (c failingCache) Overwrite([]byte) error {
	return domain.ErrIO
}

func TestRefreshStoreFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(freshCSV))
	}))
	defer srv.Close()

	var logs bytes.Buffer
	updated, err := newFetcher(t, failingCache{exists: true}, srv.URL, &logs).Refresh(context.Background())
	if err != nil || updated {
		t.Fatalf("with prior cache: Refresh = %v, %v; want false, nil", updated, err)
	}
	if !strings.Contains(logs.String(), "could not store download") {
		t.Fatalf("expected store failure log, got %q", logs.String())
	}

	_, err = newFetcher(t, failingCache{exists: false}, srv.URL, &logs).Refresh(context.Background())
	if !errors.Is(err, domain.ErrIO) {
		t.Fatalf("without prior cache: expected ErrIO, got %v", err)
	}
}

func TestNewFetcherValidation(t *testing.T) {
	if _, err := NewFetcher(nil, Options{URL: "http://example.com"}); err == nil {
		t.Fatal("expected error for nil cache")
	}
	if _, err := NewFetcher(failingCache{}, Options{URL: " "}); err == nil {
		t.Fatal("expected error for empty url")
	}
}
