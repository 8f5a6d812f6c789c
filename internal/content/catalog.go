// Package content holds the immutable catalog of activities and tracks that
// progress rows refer to. It is parsed once at startup and never mutated.
package content

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/gosimple/slug"
	"github.com/learnhub/backend/internal/models"
)

//go:embed catalog.json
var embedded []byte

type Item struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

type Track struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Modules []Item `json:"modules"`
}

// HasModule reports whether moduleSlug belongs to the track.
func (t Track) HasModule(moduleSlug string) bool {
	for _, m := range t.Modules {
		if m.Slug == moduleSlug {
			return true
		}
	}
	return false
}

// ModuleRef is the progress ref stored for a completed track module.
func ModuleRef(trackSlug, moduleSlug string) string {
	return trackSlug + "/" + moduleSlug
}

type catalogFile struct {
	Quizzes     []Item  `json:"quizzes"`
	Labs        []Item  `json:"labs"`
	DeepDives   []Item  `json:"deep_dives"`
	Cheatsheets []Item  `json:"cheatsheets"`
	Tracks      []Track `json:"tracks"`
}

type Catalog struct {
	items  map[models.ActivityType]map[string]Item
	tracks map[string]Track
}

// Load parses the catalog compiled into the binary.
func Load() (*Catalog, error) {
	return Parse(embedded)
}

func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{
		items:  make(map[models.ActivityType]map[string]Item),
		tracks: make(map[string]Track),
	}

	groups := []struct {
		typ   models.ActivityType
		items []Item
	}{
		{models.ActivityQuiz, f.Quizzes},
		{models.ActivityLab, f.Labs},
		{models.ActivityDeepDive, f.DeepDives},
		{models.ActivityCheatsheet, f.Cheatsheets},
	}
	for _, g := range groups {
		set := make(map[string]Item, len(g.items))
		for _, it := range g.items {
			if !slug.IsSlug(it.Slug) {
				return nil, fmt.Errorf("%s %q: invalid slug", g.typ, it.Slug)
			}
			if _, dup := set[it.Slug]; dup {
				return nil, fmt.Errorf("%s %q: duplicate slug", g.typ, it.Slug)
			}
			set[it.Slug] = it
		}
		c.items[g.typ] = set
	}

	for _, t := range f.Tracks {
		if !slug.IsSlug(t.Slug) {
			return nil, fmt.Errorf("track %q: invalid slug", t.Slug)
		}
		if _, dup := c.tracks[t.Slug]; dup {
			return nil, fmt.Errorf("track %q: duplicate slug", t.Slug)
		}
		if len(t.Modules) == 0 {
			return nil, fmt.Errorf("track %q: no modules", t.Slug)
		}
		seen := make(map[string]bool, len(t.Modules))
		for _, m := range t.Modules {
			if !slug.IsSlug(m.Slug) || seen[m.Slug] {
				return nil, fmt.Errorf("track %q: bad module %q", t.Slug, m.Slug)
			}
			seen[m.Slug] = true
		}
		c.tracks[t.Slug] = t
	}

	return c, nil
}

// Has reports whether an activity of the given type exists. Track modules and
// tracks are looked up through Track instead.
func (c *Catalog) Has(t models.ActivityType, ref string) bool {
	switch t {
	case models.ActivityTrack:
		_, ok := c.tracks[ref]
		return ok
	case models.ActivityTrackModule:
		for _, tr := range c.tracks {
			for _, m := range tr.Modules {
				if ModuleRef(tr.Slug, m.Slug) == ref {
					return true
				}
			}
		}
		return false
	}
	_, ok := c.items[t][ref]
	return ok
}

func (c *Catalog) Track(trackSlug string) (Track, bool) {
	t, ok := c.tracks[trackSlug]
	return t, ok
}

// Items returns the activities of one type. The returned slice is a copy.
func (c *Catalog) Items(t models.ActivityType) []Item {
	out := make([]Item, 0, len(c.items[t]))
	for _, it := range c.items[t] {
		out = append(out, it)
	}
	return out
}
