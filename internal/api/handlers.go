package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/glyphtools/pkg/buildinfo"
	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/media"
	"github.com/matzehuels/glyphtools/pkg/nglyph"
	"github.com/matzehuels/glyphtools/pkg/pipeline"
	"github.com/matzehuels/glyphtools/pkg/watermark"
)

// =============================================================================
// Request and Response Types
// =============================================================================

type translateRequest struct {
	Labels    string `json:"labels"`
	Name      string `json:"name,omitempty"`
	Watermark string `json:"watermark,omitempty"`
	Refresh   bool   `json:"refresh,omitempty"`
}

type translateResponse struct {
	Name        string          `json:"name"`
	Composition json.RawMessage `json:"composition"`
	Rows        int             `json:"rows"`
	Directives  int             `json:"directives"`
	Cached      bool            `json:"cached"`
	Warnings    []string        `json:"warnings"`
}

type encodeRequest struct {
	Composition json.RawMessage `json:"composition"`
	Title       string          `json:"title,omitempty"`
}

type encodeResponse struct {
	Tags []media.Tag `json:"tags"`
}

type decodeRequest struct {
	Tags map[string]string `json:"tags"`
}

type decodeResponse struct {
	Composition json.RawMessage `json:"composition"`
	Warnings    []string        `json:"warnings"`
}

type storeResponse struct {
	ID string `json:"id"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	opts := pipeline.TranslateOptions{
		Source:  []byte(req.Labels),
		Name:    req.Name,
		Refresh: req.Refresh,
		Logger:  s.Logger,
	}
	if req.Watermark != "" {
		wm, err := newWatermark(req.Watermark)
		if err != nil {
			s.writeError(w, err)
			return
		}
		opts.Watermark = wm
	}

	res, err := s.Runner.Translate(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	doc, err := res.File.Marshal()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, translateResponse{
		Name:        res.OutputName(),
		Composition: doc,
		Rows:        res.Stats.Rows,
		Directives:  res.Stats.Directives,
		Cached:      res.CacheInfo.BuildHit,
		Warnings:    nonNil(res.Warnings),
	})
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	var req encodeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if len(req.Composition) == 0 {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "composition is required"))
		return
	}
	if req.Title == "" {
		req.Title = pipeline.DefaultTitle
	}
	if err := errors.ValidateTitle(req.Title); err != nil {
		s.writeError(w, err)
		return
	}

	f, err := nglyph.Read(bytes.NewReader(req.Composition))
	if err != nil {
		s.writeError(w, err)
		return
	}
	t, err := f.Table()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := t.Validate(f.MaxLevel()); err != nil {
		s.writeError(w, err)
		return
	}
	tags, err := pipeline.EncodeTags(f, t, req.Title)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeResponse{Tags: tags})
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	var req decodeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	f, warnings, err := pipeline.DecodeTags(tagLookup(req.Tags), s.Logger)
	if err != nil {
		s.writeError(w, err)
		return
	}
	doc, err := f.Marshal()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decodeResponse{Composition: doc, Warnings: nonNil(warnings)})
}

func (s *Server) handlePutComposition(w http.ResponseWriter, r *http.Request) {
	f, err := nglyph.Read(r.Body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id, err := s.Store.Put(r.Context(), f)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/compositions/"+id)
	writeJSON(w, http.StatusCreated, storeResponse{ID: id})
}

func (s *Server) handleGetComposition(w http.ResponseWriter, r *http.Request) {
	f, err := s.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	doc, err := f.Marshal()
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// =============================================================================
// Helpers
// =============================================================================

func newWatermark(content string) (*watermark.Watermark, error) {
	if err := errors.ValidateWatermark(content); err != nil {
		return nil, err
	}
	return watermark.Generate(content)
}

// tagLookup matches keys exactly first, then case-insensitively, the way
// ffprobe reports Vorbis comments.
func tagLookup(tags map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if v, ok := tags[key]; ok {
			return v, true
		}
		for k, v := range tags {
			if strings.EqualFold(k, key) {
				return v, true
			}
		}
		return "", false
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
