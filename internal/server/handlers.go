package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/conneroisu/buttonbook/internal/catalog"
	herrors "github.com/conneroisu/buttonbook/internal/errors"
	"github.com/conneroisu/buttonbook/internal/renderer"
	"github.com/conneroisu/buttonbook/internal/version"
	"github.com/conneroisu/buttonbook/pkg/button"
)

// StoryResponse is one entry of GET /api/stories.
type StoryResponse struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	Args         button.Props `json:"args"`
	KnownVariant bool         `json:"known_variant"`
	Background   string       `json:"background"`
	CSS          string       `json:"css"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Stories   int       `json:"stories"`
	Clients   int       `json:"clients"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *PreviewServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	stories := s.catalog.All()
	if len(stories) == 0 {
		http.Error(w, "No stories registered", http.StatusNotFound)
		return
	}
	s.renderPage(w, r, stories[0])
}

func (s *PreviewServer) handleStory(w http.ResponseWriter, r *http.Request) {
	story, ok := s.lookupStory(w, r)
	if !ok {
		return
	}
	s.renderPage(w, r, story)
}

func (s *PreviewServer) handleRender(w http.ResponseWriter, r *http.Request) {
	story, ok := s.lookupStory(w, r)
	if !ok {
		return
	}

	fragment, err := renderer.HTML(r.Context(), withControls(story, r))
	if err != nil {
		s.errorHandler.Handle(r.Context(), err)
		http.Error(w, "Render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(fragment)); err != nil {
		s.logger.Warn(r.Context(), err, "Failed to write render response")
	}
}

func (s *PreviewServer) handleStories(w http.ResponseWriter, r *http.Request) {
	stories := s.catalog.All()
	resp := make([]StoryResponse, 0, len(stories))
	for _, story := range stories {
		style := story.Args.Style()
		resp = append(resp, StoryResponse{
			ID:           story.ID(),
			Name:         story.Name,
			Description:  story.Description,
			Args:         story.Args,
			KnownVariant: story.Args.Variant.Known(),
			Background:   style.Background,
			CSS:          style.CSS(),
		})
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *PreviewServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Version:   version.GetVersion(),
		Stories:   s.catalog.Count(),
		Clients:   s.wsManager.GetConnectedClients(),
		Timestamp: time.Now(),
	})
}

// lookupStory resolves the {name} path value, writing 400 or 404 on failure.
func (s *PreviewServer) lookupStory(w http.ResponseWriter, r *http.Request) (catalog.Story, bool) {
	name := r.PathValue("name")

	if err := catalog.ValidateName(name); err != nil {
		http.Error(w, "Invalid story name: "+err.Error(), http.StatusBadRequest)
		return catalog.Story{}, false
	}

	story, err := s.catalog.Lookup(name)
	if err != nil {
		if herrors.IsNotFound(err) {
			http.NotFound(w, r)
		} else {
			s.errorHandler.Handle(r.Context(), err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return catalog.Story{}, false
	}

	return story, true
}

func (s *PreviewServer) renderPage(w http.ResponseWriter, r *http.Request, story catalog.Story) {
	page, err := renderer.PageHTML(r.Context(), renderer.PageData{
		Meta:        s.catalog.Meta(),
		Stories:     s.catalog.All(),
		Selected:    withControls(story, r),
		HotReload:   s.config.Development.HotReload,
		ReloadError: s.lastReloadError(),
	})
	if err != nil {
		s.errorHandler.Handle(r.Context(), err)
		http.Error(w, "Render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(page)); err != nil {
		s.logger.Warn(r.Context(), err, "Failed to write page response")
	}
}

// withControls applies the text and variant query parameters as arg
// overrides. An absent parameter leaves the story's arg in place.
func withControls(story catalog.Story, r *http.Request) catalog.Story {
	query := r.URL.Query()

	var text, variant *string
	if query.Has("text") {
		v := query.Get("text")
		text = &v
	}
	if query.Has("variant") {
		v := query.Get("variant")
		variant = &v
	}

	return story.WithOverrides(text, variant)
}

func (s *PreviewServer) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn(r.Context(), err, "Failed to encode JSON response")
	}
}
