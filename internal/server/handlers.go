package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ppiankov/omnieval/internal/catalog"
	"github.com/ppiankov/omnieval/internal/dataset"
	"github.com/ppiankov/omnieval/internal/model"
	"github.com/ppiankov/omnieval/internal/pipeline"
)

type articleEntry struct {
	Key     string         `json:"key"`
	Sources []model.Source `json:"sources"`
}

type requirementsResponse struct {
	Groups     map[string]map[model.Classification][]model.Requirement `json:"groups"`
	Categories []string                                                `json:"categories"`
	Stats      catalog.Stats                                           `json:"stats"`
	Scores     map[string]*model.RequirementDetail                     `json:"scores,omitempty"` // Set when ?key= is given
}

type requirementResponse struct {
	model.Requirement
	Score *model.RequirementDetail `json:"score,omitempty"`
}

// articleScope is the optional ?key=&source= pair on requirement routes
type articleScope struct {
	Key    string
	Source model.Source
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleData serves the fixed bundle exactly as stored on disk
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	src := model.Source(s.cfg.Data.DefaultSource)
	bundle, err := dataset.ReadBundle(s.cfg.Data.Dir, s.cfg.Data.DefaultKey, src)
	if err != nil {
		if errors.Is(err, dataset.ErrNotFound) {
			writeError(w, http.StatusNotFound, "File not found")
			return
		}
		s.logger.Error("failed to read bundle",
			zap.String("key", s.cfg.Data.DefaultKey),
			zap.String("source", string(src)),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "Failed to read data")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(bundle.Bytes())
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	keys := s.service.Registry().Keys()
	out := make([]articleEntry, 0, len(keys))
	for _, key := range keys {
		out = append(out, articleEntry{Key: key, Sources: model.Sources})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePanel(w http.ResponseWriter, r *http.Request) {
	src, ok := s.source(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	kind := model.PanelKind(query.Get("kind"))
	if kind == "" {
		kind = model.PanelSection
	}
	section, err := intParam(query.Get("section"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid section index")
		return
	}
	sentence, err := intParam(query.Get("sentence"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid sentence index")
		return
	}

	panel, err := s.service.Panel(r.Context(), pipeline.PanelRequest{
		Key:      chi.URLParam(r, "key"),
		Source:   src,
		Kind:     kind,
		Section:  section,
		Sentence: sentence,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.metrics.IncrementPanels(string(kind))
	writeJSON(w, http.StatusOK, panel)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	src, ok := s.source(w, r)
	if !ok {
		return
	}

	report, err := s.service.Report(r.Context(), chi.URLParam(r, "key"), src)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.metrics.IncrementReports(string(src))
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleRequirements(w http.ResponseWriter, r *http.Request) {
	scope, ok := s.scope(w, r)
	if !ok {
		return
	}

	cat := s.service.Catalog()
	resp := requirementsResponse{
		Groups:     cat.Search(r.URL.Query().Get("q")),
		Categories: cat.Categories(),
		Stats:      cat.Stats(),
	}

	if scope != nil {
		var ids []string
		for _, byClass := range resp.Groups {
			for _, reqs := range byClass {
				for _, req := range reqs {
					ids = append(ids, req.ID)
				}
			}
		}
		scores, err := s.service.RequirementDetails(r.Context(), scope.Key, scope.Source, ids)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		resp.Scores = scores
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRequirement(w http.ResponseWriter, r *http.Request) {
	scope, ok := s.scope(w, r)
	if !ok {
		return
	}

	req, found := s.service.Catalog().Lookup(chi.URLParam(r, "id"))
	if !found {
		writeError(w, http.StatusNotFound, "Requirement not found")
		return
	}

	resp := requirementResponse{Requirement: req}
	if scope != nil {
		scores, err := s.service.RequirementDetails(r.Context(), scope.Key, scope.Source, []string{req.ID})
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		resp.Score = scores[req.ID]
	}
	writeJSON(w, http.StatusOK, resp)
}

// scope reads ?key=&source=. The source defaults to data.default_source; a
// source without a key is rejected. A nil scope means none was asked for.
func (s *Server) scope(w http.ResponseWriter, r *http.Request) (*articleScope, bool) {
	q := r.URL.Query()
	key, raw := q.Get("key"), q.Get("source")
	if key == "" {
		if raw != "" {
			writeError(w, http.StatusBadRequest, "source requires key")
			return nil, false
		}
		return nil, true
	}

	if raw == "" {
		raw = s.cfg.Data.DefaultSource
	}
	src, err := model.ParseSource(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown source")
		return nil, false
	}
	return &articleScope{Key: key, Source: src}, true
}

func (s *Server) source(w http.ResponseWriter, r *http.Request) (model.Source, bool) {
	src, err := model.ParseSource(chi.URLParam(r, "source"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown source")
		return "", false
	}
	return src, true
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, dataset.ErrUnknownArticle), errors.Is(err, dataset.ErrUnknownSource):
		writeError(w, http.StatusNotFound, "Article not found")
	case errors.Is(err, pipeline.ErrUnknownKind):
		writeError(w, http.StatusBadRequest, "Unknown panel kind")
	default:
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// intParam parses an optional non-negative index; empty means 0
func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("negative index")
	}
	return n, nil
}
