// Package dataset loads the bundled article/evaluation data.
//
// Layout on disk:
//
//	<dir>/requirements.json
//	<dir>/<KEY>/<source>/article.json
//	<dir>/<KEY>/<source>/evaluation.json
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/ppiankov/omnieval/internal/model"
)

// File names inside the data directory
const (
	RequirementsFile = "requirements.json"
	ArticleFile      = "article.json"
	EvaluationFile   = "evaluation.json"
)

var (
	// ErrNotFound is returned when a backing file does not exist
	ErrNotFound = errors.New("file not found")
	// ErrUnknownArticle is returned for a key the registry does not hold
	ErrUnknownArticle = errors.New("unknown article")
	// ErrUnknownSource is returned for a source name that is not recognised
	ErrUnknownSource = errors.New("unknown source")
)

// Registry is the read-only set of bundles, keyed by article identifier.
// It is built once and safe for concurrent reads.
type Registry struct {
	requirements model.RequirementsDocument
	sets         map[string]model.DataSet
	keys         []string
}

// NewRegistry builds a registry from in-memory data
func NewRegistry(requirements model.RequirementsDocument, sets map[string]model.DataSet) *Registry {
	r := &Registry{
		requirements: requirements,
		sets:         make(map[string]model.DataSet, len(sets)),
	}
	for key, set := range sets {
		r.sets[key] = set
		r.keys = append(r.keys, key)
	}
	sort.Strings(r.keys)
	return r
}

// Load reads every bundle under dir. A key directory missing either source
// is skipped with a warning; malformed JSON is an error.
func Load(dir string, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var requirements model.RequirementsDocument
	if err := readJSON(filepath.Join(dir, RequirementsFile), &requirements); err != nil {
		return nil, fmt.Errorf("load requirements: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	sets := make(map[string]model.DataSet)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		key := entry.Name()

		set, err := loadDataSet(dir, key)
		if errors.Is(err, ErrNotFound) {
			logger.Warn("skipping incomplete article bundle", zap.String("key", key), zap.Error(err))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", key, err)
		}
		sets[key] = set
	}

	logger.Debug("loaded data", zap.String("dir", dir), zap.Int("articles", len(sets)))
	return NewRegistry(requirements, sets), nil
}

func loadDataSet(dir, key string) (model.DataSet, error) {
	var set model.DataSet
	for _, src := range model.Sources {
		data, err := loadSource(dir, key, src)
		if err != nil {
			return model.DataSet{}, err
		}
		switch src {
		case model.SourceWikiCrow:
			set.WikiCrow = data
		case model.SourceWikipedia:
			set.Wikipedia = data
		}
	}
	return set, nil
}

func loadSource(dir, key string, src model.Source) (model.SourceData, error) {
	base := filepath.Join(dir, key, string(src))

	var data model.SourceData
	if err := readJSON(filepath.Join(base, ArticleFile), &data.Article); err != nil {
		return model.SourceData{}, err
	}
	if err := readJSON(filepath.Join(base, EvaluationFile), &data.Evaluation); err != nil {
		return model.SourceData{}, err
	}
	return data, nil
}

// Keys returns the article identifiers in sorted order
func (r *Registry) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Requirements returns the catalog document
func (r *Registry) Requirements() model.RequirementsDocument {
	return r.requirements
}

// Get returns both sources for key
func (r *Registry) Get(key string) (model.DataSet, bool) {
	set, ok := r.sets[key]
	return set, ok
}

// Source returns one source of one article
func (r *Registry) Source(key string, src model.Source) (model.SourceData, error) {
	set, ok := r.Get(key)
	if !ok {
		return model.SourceData{}, fmt.Errorf("%w: %s", ErrUnknownArticle, key)
	}
	data, ok := set.Get(src)
	if !ok {
		return model.SourceData{}, fmt.Errorf("%w: %s", ErrUnknownSource, src)
	}
	return data, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
