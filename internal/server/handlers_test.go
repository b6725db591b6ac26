package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"tidy/internal/startup"
	"tidy/internal/store"
)

func setupTestServer(t *testing.T) (*Server, *store.Store, *startup.Config) {
	t.Helper()

	base := t.TempDir()
	cfg := &startup.Config{BaseDir: base, Port: "0"}
	if err := cfg.EnsureLibrary(); err != nil {
		t.Fatal(err)
	}

	s, err := store.Open(context.Background(), filepath.Join(base, "test.sqlite3"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	return New(s, cfg), s, cfg
}

func seedLibrary(t *testing.T, s *store.Store) *store.Item {
	t.Helper()

	ctx := context.Background()
	album, err := s.FindOrCreateAlbum(ctx, "2016/Summer_Holiday")
	if err != nil {
		t.Fatal(err)
	}
	item, err := s.FindOrCreateItem(ctx, album.ID, "2016/Summer_Holiday", "IMG_0001.jpg", "image/jpeg")
	if err != nil {
		t.Fatal(err)
	}

	err = s.UpdateItemMetadata(ctx, item.ID, store.Metadata{
		Timestamp: sql.NullInt64{Int64: 1457619725, Valid: true},
		Width:     sql.NullInt64{Int64: 4000, Valid: true},
		Height:    sql.NullInt64{Int64: 3000, Valid: true},
		Make:      sql.NullString{String: "Canon", Valid: true},
	})
	if err != nil {
		t.Fatal(err)
	}

	tag, err := s.FindOrCreateTag(ctx, store.TagTypeAlbum, "2016/Summer_Holiday")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.FindOrCreateTagging(ctx, item.ID, tag.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.RefreshTagStats(ctx, tag.ID); err != nil {
		t.Fatal(err)
	}
	return item
}

func doRequest(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest("GET", path, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return body
}

func TestHealth(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	srv, _, _ := setupTestServer(t)

	rec := doRequest(t, srv, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := decodeBody(t, rec)["status"]; got != "ok" {
		t.Errorf("status field = %v, want ok", got)
	}
}

func TestListAlbums(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	srv, s, _ := setupTestServer(t)
	seedLibrary(t, s)

	rec := doRequest(t, srv, "/api/albums")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := decodeBody(t, rec)
	albums := body["albums"].([]interface{})
	if len(albums) != 1 {
		t.Fatalf("expected 1 album, got %d", len(albums))
	}

	album := albums[0].(map[string]interface{})
	if album["name"] != "2016/Summer Holiday" {
		t.Errorf("name = %v, want underscores read as spaces", album["name"])
	}
	if album["itemsCount"].(float64) != 1 {
		t.Errorf("itemsCount = %v, want 1", album["itemsCount"])
	}
	if body["nextPageUrl"] != "/api/albums?page=2&per_page=50" {
		t.Errorf("nextPageUrl = %v", body["nextPageUrl"])
	}
}

func TestGetAlbum(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	srv, s, _ := setupTestServer(t)
	item := seedLibrary(t, s)

	rec := doRequest(t, srv, "/api/albums/"+itemAlbumID(t, s, item))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	album := decodeBody(t, rec)["album"].(map[string]interface{})
	items := album["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 item in album, got %d", len(items))
	}
	got := items[0].(map[string]interface{})
	if got["thumbnailUrl"] == "" || got["originalUrl"] == "" {
		t.Error("expected item URLs to be populated")
	}
	// Album item listings omit the metadata block.
	if _, ok := got["metadata"]; ok {
		t.Error("expected no metadata in album item listing")
	}
}

func itemAlbumID(t *testing.T, s *store.Store, item *store.Item) string {
	t.Helper()

	got, err := s.FindItem(context.Background(), item.ID)
	if err != nil {
		t.Fatal(err)
	}
	return idString(got.AlbumID.Int64)
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestGetAlbumNotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	srv, _, _ := setupTestServer(t)

	rec := doRequest(t, srv, "/api/albums/999")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetItem(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	srv, s, _ := setupTestServer(t)
	item := seedLibrary(t, s)

	rec := doRequest(t, srv, "/api/items/"+idString(item.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	got := decodeBody(t, rec)["item"].(map[string]interface{})
	if got["aspectRatio"].(float64) != 4000.0/3000.0 {
		t.Errorf("aspectRatio = %v", got["aspectRatio"])
	}

	meta := got["metadata"].(map[string]interface{})
	if meta["make"] != "Canon" {
		t.Errorf("make = %v, want Canon", meta["make"])
	}
	if meta["model"] != nil {
		t.Errorf("model = %v, want null", meta["model"])
	}
}

func TestGetItemNotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	srv, _, _ := setupTestServer(t)

	rec := doRequest(t, srv, "/api/items/999")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestItemThumbnailMissing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	srv, s, _ := setupTestServer(t)
	item := seedLibrary(t, s)

	rec := doRequest(t, srv, "/api/items/"+idString(item.ID)+"/thumb")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for an item without a thumbnail", rec.Code)
	}
}

func TestItemThumbnailServed(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	srv, s, cfg := setupTestServer(t)
	item := seedLibrary(t, s)

	dir := filepath.Join(cfg.ThumbnailsDir(), "2016", "Summer_Holiday")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "IMG_0001.jpeg"), []byte("jpeg bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.SetThumbnail(context.Background(), item.ID, "IMG_0001.jpeg"); err != nil {
		t.Fatal(err)
	}

	rec := doRequest(t, srv, "/api/items/"+idString(item.ID)+"/thumb")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "jpeg bytes" {
		t.Errorf("body = %q, want the thumbnail file contents", rec.Body.String())
	}
}

func TestItemOriginalServed(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	srv, s, cfg := setupTestServer(t)
	item := seedLibrary(t, s)

	dir := filepath.Join(cfg.OriginalsDir(), "2016", "Summer_Holiday")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "IMG_0001.jpg"), []byte("original bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := doRequest(t, srv, "/api/items/"+idString(item.ID)+"/original")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "original bytes" {
		t.Errorf("body = %q, want the original file contents", rec.Body.String())
	}
}

func TestPagination(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantPage    int
		wantPerPage int
	}{
		{"defaults", "/api/albums", 1, 50},
		{"explicit", "/api/albums?page=3&per_page=10", 3, 10},
		{"negative page clamps", "/api/albums?page=-1", 1, 50},
		{"zero per_page clamps", "/api/albums?per_page=0", 1, 50},
		{"garbage falls back", "/api/albums?page=abc&per_page=xyz", 1, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.query, nil)
			page, perPage := pagination(req, defaultAlbumsPerPage)
			if page != tt.wantPage || perPage != tt.wantPerPage {
				t.Errorf("pagination = (%d, %d), want (%d, %d)",
					page, perPage, tt.wantPage, tt.wantPerPage)
			}
		})
	}
}
