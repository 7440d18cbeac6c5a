// Package catalog indexes the static requirements catalog.
package catalog

import (
	"sort"
	"strings"

	"github.com/ppiankov/omnieval/internal/model"
)

// Catalog is a read-only index over a requirements document.
// It is safe for concurrent use once constructed.
type Catalog struct {
	groups     []model.RequirementGroup
	byID       map[string]model.Requirement
	duplicates []string
}

// New builds a catalog. When an id appears more than once the first
// occurrence wins and the id is recorded in Duplicates.
func New(doc model.RequirementsDocument) *Catalog {
	c := &Catalog{
		groups: doc.Groups,
		byID:   make(map[string]model.Requirement),
	}

	for _, group := range doc.Groups {
		for _, req := range group.Requirements {
			if _, exists := c.byID[req.ID]; exists {
				c.duplicates = append(c.duplicates, req.ID)
				continue
			}
			c.byID[req.ID] = req
		}
	}

	return c
}

// Lookup returns the requirement with the given id
func (c *Catalog) Lookup(id string) (model.Requirement, bool) {
	if c == nil {
		return model.Requirement{}, false
	}
	req, ok := c.byID[id]
	return req, ok
}

// Duplicates lists ids that occurred more than once, in catalog order
func (c *Catalog) Duplicates() []string {
	if c == nil {
		return nil
	}
	return c.duplicates
}

// Groups returns the catalog's own grouping by category
func (c *Catalog) Groups() []model.RequirementGroup {
	if c == nil {
		return nil
	}
	return c.groups
}

// Grouped buckets every requirement by its own category and classification
// fields. The catalog file groups by category only, and a requirement's
// category field is authoritative when the two disagree.
func (c *Catalog) Grouped() map[string]map[model.Classification][]model.Requirement {
	return c.filter(func(model.Requirement) bool { return true })
}

// Search is Grouped restricted to requirements whose description or
// reference contains term, ignoring case. An empty term matches everything.
func (c *Catalog) Search(term string) map[string]map[model.Classification][]model.Requirement {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return c.Grouped()
	}

	return c.filter(func(req model.Requirement) bool {
		return strings.Contains(strings.ToLower(req.Description), needle) ||
			strings.Contains(strings.ToLower(req.Reference), needle)
	})
}

func (c *Catalog) filter(keep func(model.Requirement) bool) map[string]map[model.Classification][]model.Requirement {
	out := make(map[string]map[model.Classification][]model.Requirement)
	if c == nil {
		return out
	}

	for _, group := range c.groups {
		for _, req := range group.Requirements {
			if !keep(req) {
				continue
			}
			byClass, ok := out[req.Category]
			if !ok {
				byClass = make(map[model.Classification][]model.Requirement)
				out[req.Category] = byClass
			}
			byClass[req.Classification] = append(byClass[req.Classification], req)
		}
	}

	return out
}

// Categories returns the sorted category names found on requirements
func (c *Catalog) Categories() []string {
	grouped := c.Grouped()
	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats summarises the catalog size
type Stats struct {
	TotalRequirements int `json:"total_requirements"`
	TotalCategories   int `json:"total_categories"`
}

// Stats counts requirements and distinct categories
func (c *Catalog) Stats() Stats {
	grouped := c.Grouped()
	total := 0
	for _, byClass := range grouped {
		for _, reqs := range byClass {
			total += len(reqs)
		}
	}
	return Stats{
		TotalRequirements: total,
		TotalCategories:   len(grouped),
	}
}
