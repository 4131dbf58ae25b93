package recipe

import (
	"fmt"
	"strings"
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
)

func TestParse_GroupsAndDocumentOrder(t *testing.T) {
	doc := `# Basics

**Summarize**: Summarize the following text:

**Translate**: Translate to English:

## Coding

**Review**: Review this code:
`
	c, warnings := Parse(doc)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(c.Groups) != 2 {
		t.Fatalf("expected 2 groups, got: %v", len(c.Groups))
	}
	testboil.FailTestIfDiff(t, c.Groups[0].Heading, "Basics")
	testboil.FailTestIfDiff(t, c.Groups[0].Level, 1)
	testboil.FailTestIfDiff(t, c.Groups[1].Heading, "Coding")
	testboil.FailTestIfDiff(t, c.Groups[1].Level, 2)

	// Recipes keep document order, never reordered by name
	var got []string
	for _, g := range c.Groups {
		for _, r := range g.Recipes {
			got = append(got, r.Name)
		}
	}
	testboil.FailTestIfDiff(t, strings.Join(got, ","), "Summarize,Translate,Review")

	r, ok := c.Get("Summarize")
	if !ok {
		t.Fatal("expected Summarize to be indexed")
	}
	testboil.FailTestIfDiff(t, r.Instruction, "Summarize the following text:")
	testboil.FailTestIfDiff(t, r.Group, "Basics")
}

func TestParse_NoHeadingsYieldsImplicitGroup(t *testing.T) {
	c, _ := Parse("**Fix**: Fix the grammar in:\n")
	if len(c.Groups) != 1 {
		t.Fatalf("expected implicit group, got: %v groups", len(c.Groups))
	}
	testboil.FailTestIfDiff(t, c.Groups[0].Heading, "")
	testboil.FailTestIfDiff(t, c.Groups[0].Level, 0)
	if _, ok := c.Get("Fix"); !ok {
		t.Fatal("expected Fix to be indexed")
	}
}

func TestParse_UseToolsMarker(t *testing.T) {
	c, _ := Parse("**Search**: USETOOLS: Find related links for:\n\n**Plain**: Echo this:\n")
	search, _ := c.Get("Search")
	if !search.RequiresTools {
		t.Fatal("expected RequiresTools for marked recipe")
	}
	testboil.FailTestIfDiff(t, search.Instruction, "Find related links for:")

	plain, _ := c.Get("Plain")
	if plain.RequiresTools {
		t.Fatal("expected RequiresTools false for unmarked recipe")
	}
}

func TestParse_DuplicateNameLastWinsButBothEnumerable(t *testing.T) {
	doc := `# One

**Dup**: first definition:

# Two

**Dup**: second definition:
`
	c, warnings := Parse(doc)
	r, _ := c.Get("Dup")
	testboil.FailTestIfDiff(t, r.Instruction, "second definition:")
	testboil.FailTestIfDiff(t, r.Group, "Two")

	// Both definitions remain visible in their groups
	testboil.FailTestIfDiff(t, len(c.Groups[0].Recipes), 1)
	testboil.FailTestIfDiff(t, len(c.Groups[1].Recipes), 1)
	testboil.FailTestIfDiff(t, c.Groups[0].Recipes[0].Instruction, "first definition:")

	found := false
	for _, w := range warnings {
		if strings.Contains(w.Text, "duplicate recipe 'Dup'") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected duplicate warning, got: %v", warnings)
	}
}

func TestParse_MalformedRecipesSkippedWithWarning(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"no colon", "**Broken** no instruction here", "no ':' delimited instruction"},
		{"no closing bold", "**Broken: something", "without closing '**'"},
		{"empty instruction", "**Broken**:", "empty instruction"},
		{"empty name", "****: do something", "empty name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, warnings := Parse(tt.line + "\n")
			if c.Len() != 0 {
				t.Fatalf("expected no recipes, got: %v", c.Len())
			}
			if len(warnings) != 1 {
				t.Fatalf("expected 1 warning, got: %v", warnings)
			}
			testboil.AssertStringContains(t, warnings[0].Text, tt.want)
		})
	}
}

func TestParse_MissingBlankLineIsNonFatal(t *testing.T) {
	doc := "# Group\n**A**: do a:\n**B**: do b:\n"
	c, warnings := Parse(doc)
	if c.Len() != 2 {
		t.Fatalf("expected both recipes accepted, got: %v", c.Len())
	}
	if len(warnings) != 2 {
		t.Fatalf("expected spacing warnings, got: %v", warnings)
	}
	for _, w := range warnings {
		testboil.AssertStringContains(t, w.Text, "no blank line")
	}
}

func TestParse_ProseIgnored(t *testing.T) {
	doc := `Some introduction text.

# Group

More prose, *single* asterisks, not a recipe.

**Real**: do the thing:
`
	c, warnings := Parse(doc)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if c.Len() != 1 {
		t.Fatalf("expected exactly the one real recipe, got: %v", c.Len())
	}
}

func TestParse_SixHashesIsNotAHeading(t *testing.T) {
	c, _ := Parse("###### Too deep\n\n**A**: run:\n")
	if len(c.Groups) != 1 || c.Groups[0].Heading != "" {
		t.Fatalf("expected implicit group only, got: %+v", c.Groups)
	}
}

func TestCatalogue_NamesSorted(t *testing.T) {
	c, _ := Parse("**Zulu**: z:\n\n**Alpha**: a:\n\n**Mike**: m:\n")
	testboil.FailTestIfDiff(t, strings.Join(c.Names(), ","), "Alpha,Mike,Zulu")
}

func TestParse_WarningString(t *testing.T) {
	w := Warning{Line: 3, Text: "oh no"}
	testboil.FailTestIfDiff(t, w.String(), fmt.Sprintf("line %v: %v", 3, "oh no"))
}
