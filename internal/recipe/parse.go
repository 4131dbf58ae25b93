package recipe

import (
	"fmt"
	"strings"
)

// UseToolsMarker opts a single instruction into backend tool use. It is
// stripped before the instruction is stored or sent.
const UseToolsMarker = "USETOOLS: "

const maxHeadingLevel = 5

// Warning is a non-fatal parse irregularity. The catalogue still builds,
// the warning is surfaced so document authors can be alerted.
type Warning struct {
	Line int
	Text string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %v: %v", w.Line, w.Text)
}

// Parse a recipe document into a catalogue. Lines matching neither heading
// nor recipe syntax are treated as prose and ignored. All irregularities are
// additive: a malformed recipe is skipped with a warning, never a failure.
func Parse(doc string) (*Catalogue, []Warning) {
	var groups []Group
	index := map[string]Recipe{}
	var warnings []Warning

	// index into groups of the most recently opened group, -1 for none
	current := -1
	prevWasEntry := false
	blankSince := true

	for i, raw := range strings.Split(doc, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" {
			blankSince = true
			continue
		}

		if level, heading, ok := parseHeading(line); ok {
			if prevWasEntry && !blankSince {
				warnings = append(warnings, Warning{lineNo, "no blank line before heading"})
			}
			groups = append(groups, Group{Heading: heading, Level: level})
			current = len(groups) - 1
			prevWasEntry = true
			blankSince = false
			continue
		}

		if !strings.HasPrefix(line, "**") {
			// Prose or comment
			prevWasEntry = false
			blankSince = false
			continue
		}

		if prevWasEntry && !blankSince {
			warnings = append(warnings, Warning{lineNo, "no blank line before recipe"})
		}
		prevWasEntry = true
		blankSince = false

		r, warn := parseRecipeLine(line, lineNo)
		if warn != nil {
			warnings = append(warnings, *warn)
			continue
		}

		if current == -1 {
			// Recipes before any heading land in an implicit default group
			groups = append(groups, Group{})
			current = 0
		}
		r.Group = groups[current].Heading
		groups[current].Recipes = append(groups[current].Recipes, r)

		if _, taken := index[r.Name]; taken {
			warnings = append(warnings, Warning{lineNo, fmt.Sprintf("duplicate recipe '%v' overrides earlier definition", r.Name)})
		}
		index[r.Name] = r
	}

	return &Catalogue{Groups: groups, index: index}, warnings
}

// parseHeading matches one to five leading '#' markers followed by a space
func parseHeading(line string) (int, string, bool) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > maxHeadingLevel {
		return 0, "", false
	}
	rest := line[level:]
	if !strings.HasPrefix(rest, " ") {
		return 0, "", false
	}
	heading := strings.TrimSpace(rest)
	if heading == "" {
		return 0, "", false
	}
	return level, heading, true
}

// parseRecipeLine matches '**Name**: Instruction text'. The name is the text
// strictly between the first pair of double asterisks, the instruction is
// everything after the ':' through end of line.
func parseRecipeLine(line string, lineNo int) (Recipe, *Warning) {
	closing := strings.Index(line[2:], "**")
	if closing == -1 {
		return Recipe{}, &Warning{lineNo, "bolded name without closing '**', skipping"}
	}
	name := line[2 : 2+closing]
	rest := line[2+closing+2:]

	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, ":") {
		return Recipe{}, &Warning{lineNo, fmt.Sprintf("recipe '%v' has no ':' delimited instruction, skipping", name)}
	}
	instruction := strings.TrimSpace(rest[1:])

	if strings.TrimSpace(name) == "" {
		return Recipe{}, &Warning{lineNo, "recipe with empty name, skipping"}
	}
	if instruction == "" {
		return Recipe{}, &Warning{lineNo, fmt.Sprintf("recipe '%v' has empty instruction, skipping", name)}
	}

	requiresTools := false
	if strings.HasPrefix(instruction, UseToolsMarker) {
		requiresTools = true
		instruction = strings.TrimPrefix(instruction, UseToolsMarker)
	}

	return Recipe{
		Name:          strings.TrimSpace(name),
		Instruction:   instruction,
		RequiresTools: requiresTools,
	}, nil
}
