package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/tagbot/internal/domain"
)

type tagListResponse struct {
	// GuildID is a string so JavaScript clients keep all 64 bits.
	GuildID string   `json:"guild_id"`
	Names   []string `json:"names"`
}

type tagResponse struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ListTags handles GET /guilds/{guildID}/tags.
func (s *Server) ListTags(w http.ResponseWriter, r *http.Request) {
	guildID, ok := guildParam(w, r)
	if !ok {
		return
	}

	names, err := s.tags.ListNames(r.Context(), guildID)
	if err != nil {
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tagListResponse{
		GuildID: strconv.FormatInt(guildID, 10),
		Names:   names,
	})
}

// GetTag handles GET /guilds/{guildID}/tags/{name}.
func (s *Server) GetTag(w http.ResponseWriter, r *http.Request) {
	guildID, ok := guildParam(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	// chi matches on the raw path when it differs from the decoded one
	// (e.g. an escaped slash), so the param may still be escaped.
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}

	content, err := s.tags.Content(r.Context(), guildID, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "tag not found")
			return
		}
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tagResponse{Name: name, Content: content})
}

// guildParam parses the {guildID} path segment, writing a 400 on failure.
func guildParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "guildID"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "validation_error", "guild id must be a positive integer")
		return 0, false
	}
	return id, true
}
