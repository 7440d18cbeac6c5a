package model

import "fmt"

// ArticleSection is one rendered block of article text
type ArticleSection struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Level     int      `json:"level"` // Heading depth
	Index     int      `json:"index"`
	Sentences []string `json:"sentences"` // Rendering order, 0-based
}

// Article is the ordered list of sections of one article
type Article []ArticleSection

// Source identifies where an article came from
type Source string

const (
	SourceWikipedia Source = "wikipedia" // Baseline encyclopedia article
	SourceWikiCrow  Source = "wikicrow"  // Generated article
)

// Sources lists every known source in display order
var Sources = []Source{SourceWikipedia, SourceWikiCrow}

// ParseSource validates a source name
func ParseSource(s string) (Source, error) {
	for _, src := range Sources {
		if string(src) == s {
			return src, nil
		}
	}
	return "", fmt.Errorf("unknown source %q (want wikipedia or wikicrow)", s)
}

// SourceData pairs an article with its evaluation
type SourceData struct {
	Article    Article    `json:"article"`
	Evaluation Evaluation `json:"evaluation"`
}

// DataSet holds both sources for one article key (e.g. a gene symbol)
type DataSet struct {
	WikiCrow  SourceData `json:"wikicrow"`
	Wikipedia SourceData `json:"wikipedia"`
}

// Get returns the data for the given source
func (d DataSet) Get(src Source) (SourceData, bool) {
	switch src {
	case SourceWikiCrow:
		return d.WikiCrow, true
	case SourceWikipedia:
		return d.Wikipedia, true
	default:
		return SourceData{}, false
	}
}
