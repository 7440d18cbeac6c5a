package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/omnieval/internal/model"
)

// Bundle is the raw payload of the single read endpoint
type Bundle struct {
	Article      json.RawMessage `json:"article"`
	Evaluation   json.RawMessage `json:"evaluation"`
	Requirements json.RawMessage `json:"requirements"`
}

// ReadBundle reads one article/evaluation pair plus the catalog straight
// from disk without decoding them. Any missing file yields ErrNotFound.
func ReadBundle(dir, key string, src model.Source) (*Bundle, error) {
	base := filepath.Join(dir, key, string(src))

	article, err := readRaw(filepath.Join(base, ArticleFile))
	if err != nil {
		return nil, err
	}
	evaluation, err := readRaw(filepath.Join(base, EvaluationFile))
	if err != nil {
		return nil, err
	}
	requirements, err := readRaw(filepath.Join(dir, RequirementsFile))
	if err != nil {
		return nil, err
	}

	return &Bundle{
		Article:      article,
		Evaluation:   evaluation,
		Requirements: requirements,
	}, nil
}

// Bytes encodes the bundle as one JSON object, embedding each file's
// bytes unchanged. json.Marshal would compact them.
func (b *Bundle) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(len(b.Article) + len(b.Evaluation) + len(b.Requirements) + 48)
	buf.WriteString(`{"article":`)
	buf.Write(b.Article)
	buf.WriteString(`,"evaluation":`)
	buf.Write(b.Evaluation)
	buf.WriteString(`,"requirements":`)
	buf.Write(b.Requirements)
	buf.WriteString("}\n")
	return buf.Bytes()
}

func readRaw(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("invalid JSON in %s", path)
	}
	return json.RawMessage(data), nil
}
