package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/omnieval/internal/model"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache[*model.Evaluation](time.Minute, time.Minute)
	doc := &model.Evaluation{Sections: []model.SectionEvaluation{{Index: 1}}}

	_, ok := c.Get("k")
	assert.False(t, ok)

	c.Set("k", doc, 0)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Same(t, doc, got)
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache[string](time.Minute, time.Minute)
	c.Set("k", "v", 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	c := NewMemoryCache[string](time.Minute, time.Minute)
	c.Set("a", "1", 0)
	c.Set("b", "2", 0)

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Clear()
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestNoop(t *testing.T) {
	var c Cache[string] = Noop[string]{}
	c.Set("k", "v", time.Minute)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestEvaluationKey(t *testing.T) {
	assert.Equal(t, "omnieval:v1:evaluation:ABCC11:wikicrow", EvaluationKey("ABCC11", model.SourceWikiCrow))
	assert.NotEqual(t, EvaluationKey("ABCC11", model.SourceWikiCrow), EvaluationKey("ABCC11", model.SourceWikipedia))
}
