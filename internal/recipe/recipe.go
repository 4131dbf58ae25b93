// Package recipe turns a markdown document into an ordered catalogue of
// named prompt templates. Parsing is pure and line oriented; the resulting
// catalogue is immutable and swapped wholesale on reload.
package recipe

import (
	"sort"

	"golang.org/x/exp/maps"
)

// Recipe is a named, reusable instruction template applied to captured text.
// Created during a parse pass, never mutated.
type Recipe struct {
	Name string
	// Instruction is the prompt prefix with any USETOOLS marker already
	// stripped
	Instruction   string
	RequiresTools bool
	// Group is the heading of the owning group, empty for the implicit
	// default group
	Group string
}

// Group is a cluster of recipes under one markdown heading, in document order.
type Group struct {
	Heading string
	Level   int
	Recipes []Recipe
}

// Catalogue is a full parse result: groups in document order plus a
// name index for lookup. On duplicate names the index holds the latest
// definition while both stay enumerable in their groups.
type Catalogue struct {
	Groups []Group
	index  map[string]Recipe
}

// Get the latest definition of the named recipe
func (c *Catalogue) Get(name string) (Recipe, bool) {
	r, ok := c.index[name]
	return r, ok
}

// Names of all indexed recipes, sorted for stable output
func (c *Catalogue) Names() []string {
	names := maps.Keys(c.index)
	sort.Strings(names)
	return names
}

// Len is the amount of indexed recipes
func (c *Catalogue) Len() int {
	return len(c.index)
}
