package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"tidy/internal/logging"
	"tidy/internal/store"
)

const (
	defaultAlbumsPerPage = 50
	defaultItemsPerPage  = 250
)

type albumJSON struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	URL        string  `json:"url"`
	ItemsCount int64   `json:"itemsCount"`
	MinDate    *string `json:"minDate"`
	MaxDate    *string `json:"maxDate"`
}

type itemJSON struct {
	ID           int64         `json:"id"`
	URL          string        `json:"url"`
	ThumbnailURL string        `json:"thumbnailUrl"`
	OriginalURL  string        `json:"originalUrl"`
	AspectRatio  float64       `json:"aspectRatio"`
	Timestamp    *string       `json:"timestamp"`
	Metadata     *metadataJSON `json:"metadata,omitempty"`
}

type metadataJSON struct {
	Width       *int64          `json:"width"`
	Height      *int64          `json:"height"`
	Make        *string         `json:"make"`
	Model       *string         `json:"model"`
	Exposure    *int64          `json:"exposure"`
	FNumber     *float64        `json:"fNumber"`
	ISO         *int64          `json:"iso"`
	FocalLength *float64        `json:"focalLength"`
	Coordinates coordinatesJSON `json:"coordinates"`
	Location    locationJSON    `json:"location"`
}

type coordinatesJSON struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type locationJSON struct {
	ID   *int64  `json:"id"`
	Name *string `json:"name"`
}

func (s *Server) listAlbums(w http.ResponseWriter, r *http.Request) {
	page, perPage := pagination(r, defaultAlbumsPerPage)

	albums, err := s.store.ListAlbums(r.Context(), page, perPage)
	if err != nil {
		serverError(w, err)
		return
	}

	out := make([]albumJSON, 0, len(albums))
	for _, a := range albums {
		out = append(out, albumToJSON(a))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"albums":      out,
		"nextPageUrl": fmt.Sprintf("/api/albums?page=%d&per_page=%d", page+1, perPage),
	})
}

func (s *Server) getAlbum(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	page, perPage := pagination(r, defaultItemsPerPage)

	album, err := s.store.FindAlbum(r.Context(), id)
	if err == sql.ErrNoRows {
		http.Error(w, "Album not found", http.StatusNotFound)
		return
	}
	if err != nil {
		serverError(w, err)
		return
	}

	items, err := s.store.ListAlbumItems(r.Context(), album.ID, page, perPage)
	if err != nil {
		serverError(w, err)
		return
	}

	itemsOut := make([]itemJSON, 0, len(items))
	for _, item := range items {
		itemsOut = append(itemsOut, itemToJSON(item, false))
	}

	out := albumToJSON(*album)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"album": map[string]interface{}{
			"id":         out.ID,
			"name":       out.Name,
			"url":        out.URL,
			"items":      itemsOut,
			"itemsCount": out.ItemsCount,
			"minDate":    out.MinDate,
			"maxDate":    out.MaxDate,
		},
		"nextPageUrl": fmt.Sprintf("/api/albums/%d?page=%d&per_page=%d", id, page+1, perPage),
	})
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	page, perPage := pagination(r, defaultItemsPerPage)

	items, err := s.store.ListItems(r.Context(), page, perPage)
	if err != nil {
		serverError(w, err)
		return
	}

	out := make([]itemJSON, 0, len(items))
	for _, item := range items {
		out = append(out, itemToJSON(item, false))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items":       out,
		"nextPageUrl": fmt.Sprintf("/api/items?page=%d&per_page=%d", page+1, perPage),
	})
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	item, ok := s.findItem(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"item": itemToJSON(*item, true)})
}

func (s *Server) itemThumbnail(w http.ResponseWriter, r *http.Request) {
	item, ok := s.findItem(w, r)
	if !ok {
		return
	}
	if !item.ThumbnailFilename.Valid {
		http.Error(w, "Thumbnail not created", http.StatusNotFound)
		return
	}
	path := filepath.Join(s.cfg.ThumbnailsDir(), filepath.FromSlash(item.Path), item.ThumbnailFilename.String)
	http.ServeFile(w, r, path)
}

func (s *Server) itemOriginal(w http.ResponseWriter, r *http.Request) {
	item, ok := s.findItem(w, r)
	if !ok {
		return
	}
	path := filepath.Join(s.cfg.OriginalsDir(), filepath.FromSlash(item.Path), item.Filename)
	http.ServeFile(w, r, path)
}

func (s *Server) findItem(w http.ResponseWriter, r *http.Request) (*store.Item, bool) {
	item, err := s.store.FindItem(r.Context(), pathID(r))
	if err == sql.ErrNoRows {
		http.Error(w, "Item not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		serverError(w, err)
		return nil, false
	}
	return item, true
}

func albumToJSON(a store.AlbumSummary) albumJSON {
	return albumJSON{
		ID: a.ID,
		// Import keeps directory names verbatim; underscores read as
		// spaces in the browsing layer.
		Name:       strings.ReplaceAll(a.Name, "_", " "),
		URL:        fmt.Sprintf("/api/albums/%d", a.ID),
		ItemsCount: a.ItemCount.Int64,
		MinDate:    isoDate(a.OldestTimestamp),
		MaxDate:    isoDate(a.NewestTimestamp),
	}
}

func itemToJSON(item store.Item, withMetadata bool) itemJSON {
	out := itemJSON{
		ID:           item.ID,
		URL:          fmt.Sprintf("/api/items/%d", item.ID),
		ThumbnailURL: fmt.Sprintf("/api/items/%d/thumb", item.ID),
		OriginalURL:  fmt.Sprintf("/api/items/%d/original", item.ID),
		Timestamp:    isoDate(item.Timestamp),
	}
	if item.Width.Valid && item.Height.Valid && item.Height.Int64 != 0 {
		out.AspectRatio = float64(item.Width.Int64) / float64(item.Height.Int64)
	}
	if withMetadata {
		out.Metadata = &metadataJSON{
			Width:       nullInt(item.Width),
			Height:      nullInt(item.Height),
			Make:        nullString(item.Make),
			Model:       nullString(item.Model),
			Exposure:    nullInt(item.Exposure),
			FNumber:     nullFloat(item.FNumber),
			ISO:         nullInt(item.ISO),
			FocalLength: nullFloat(item.FocalLength),
			Coordinates: coordinatesJSON{
				Latitude:  nullFloat(item.Latitude),
				Longitude: nullFloat(item.Longitude),
			},
			Location: locationJSON{
				ID:   nullInt(item.LocationID),
				Name: nullString(item.LocationName),
			},
		}
	}
	return out
}

func pagination(r *http.Request, defaultPerPage int) (page, perPage int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 {
		perPage = defaultPerPage
	}
	return page, perPage
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func isoDate(ts sql.NullInt64) *string {
	if !ts.Valid {
		return nil
	}
	s := time.Unix(ts.Int64, 0).UTC().Format(time.RFC3339)
	return &s
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("encoding response: %v", err)
	}
}

func serverError(w http.ResponseWriter, err error) {
	logging.Error("request failed: %v", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
