// Package prompt composes the final request payload from a chosen recipe or
// freeform instruction, the captured text, and the conversation so far.
package prompt

import (
	"strings"

	"github.com/promptdeck/promptdeck/internal/models"
	"github.com/promptdeck/promptdeck/internal/recipe"
)

// Assembler builds payloads. RequireToolKeyword mirrors the backend
// configuration: when set, tool use must be opted into per instruction via
// the USETOOLS marker.
type Assembler struct {
	RequireToolKeyword bool
}

// Assemble a payload from exactly one of r/freeform. priorTurns is the
// session snapshot, nil when chat mode is inactive. The returned payload is
// fresh and owns its own copy of the prior turns.
func (a Assembler) Assemble(r *recipe.Recipe, freeform, selectedText string, priorTurns []models.Message) (models.Payload, error) {
	if r == nil && freeform == "" {
		return models.Payload{}, &models.InvalidInvocationError{Reason: "neither recipe nor freeform instruction given"}
	}
	if r != nil && freeform != "" {
		return models.Payload{}, &models.InvalidInvocationError{Reason: "both recipe and freeform instruction given"}
	}

	var instruction string
	var useTools bool
	if r != nil {
		// The recipe's USETOOLS marker was already stripped at parse time
		instruction = r.Instruction
		useTools = !a.RequireToolKeyword || r.RequiresTools
	} else {
		hasMarker := strings.HasPrefix(freeform, recipe.UseToolsMarker)
		instruction = strings.TrimPrefix(freeform, recipe.UseToolsMarker)
		useTools = !a.RequireToolKeyword || hasMarker
	}

	var turns []models.Message
	if len(priorTurns) > 0 {
		turns = make([]models.Message, len(priorTurns))
		copy(turns, priorTurns)
	}

	return models.Payload{
		PromptText: compose(instruction, selectedText),
		UseTools:   useTools,
		PriorTurns: turns,
	}, nil
}

// compose joins instruction and captured text with a single space. An empty
// capture sends the instruction alone.
func compose(instruction, selectedText string) string {
	if strings.TrimSpace(selectedText) == "" {
		return instruction
	}
	return instruction + " " + selectedText
}
