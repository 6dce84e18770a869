package encoding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"courselab_backend/internal/config"
	"courselab_backend/internal/util"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.EncodingConfig{
		BaseURL:     baseURL,
		TokenID:     "token-id",
		TokenSecret: "token-secret",
	})
}

func TestCreateAsset(t *testing.T) {
	var gotReq createAssetRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/video/v1/assets" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "token-id" || pass != "token-secret" {
			t.Errorf("basic auth = %q/%q", user, pass)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"asset-abc","status":"preparing","playback_ids":[{"id":"pb-1","policy":"public"}]}}`))
	}))
	defer srv.Close()

	asset, err := newTestClient(srv.URL).CreateAsset(context.Background(), "https://cdn.example.com/v.mp4", PolicyPublic)
	if err != nil {
		t.Fatalf("create asset: %v", err)
	}

	if gotReq.Input != "https://cdn.example.com/v.mp4" {
		t.Errorf("input = %q", gotReq.Input)
	}
	if len(gotReq.PlaybackPolicy) != 1 || gotReq.PlaybackPolicy[0] != PolicyPublic {
		t.Errorf("playback policy = %v", gotReq.PlaybackPolicy)
	}
	if asset.ID != "asset-abc" {
		t.Errorf("asset id = %q", asset.ID)
	}
	if asset.PlaybackID() != "pb-1" {
		t.Errorf("playback id = %q", asset.PlaybackID())
	}
}

func TestCreateAssetUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"messages":["encoder overloaded"]}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreateAsset(context.Background(), "https://cdn.example.com/v.mp4", PolicyPublic)
	if !errors.Is(err, util.ErrUpstreamAsset) {
		t.Fatalf("error = %v, want ErrUpstreamAsset", err)
	}
}

func TestCreateAssetRejectsEmptyID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreateAsset(context.Background(), "https://cdn.example.com/v.mp4", PolicyPublic)
	if !errors.Is(err, util.ErrUpstreamAsset) {
		t.Fatalf("error = %v, want ErrUpstreamAsset", err)
	}
}

func TestDeleteAsset(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := newTestClient(srv.URL).DeleteAsset(context.Background(), "asset-abc"); err != nil {
		t.Fatalf("delete asset: %v", err)
	}
	if gotPath != "/video/v1/assets/asset-abc" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestDeleteAssetTreatsNotFoundAsDeleted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if err := newTestClient(srv.URL).DeleteAsset(context.Background(), "gone"); err != nil {
		t.Fatalf("404 must count as deleted, got %v", err)
	}
}

func TestDeleteAssetUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).DeleteAsset(context.Background(), "asset-abc")
	if !errors.Is(err, util.ErrUpstreamAsset) {
		t.Fatalf("error = %v, want ErrUpstreamAsset", err)
	}
}
