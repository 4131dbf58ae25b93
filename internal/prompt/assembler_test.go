package prompt

import (
	"errors"
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
	"github.com/promptdeck/promptdeck/internal/models"
	"github.com/promptdeck/promptdeck/internal/recipe"
)

func TestAssemble_ExactlyOneOfRecipeFreeform(t *testing.T) {
	a := Assembler{}
	r := &recipe.Recipe{Name: "X", Instruction: "do x:"}

	var invalid *models.InvalidInvocationError
	_, err := a.Assemble(nil, "", "text", nil)
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidInvocationError for neither, got: %v", err)
	}
	_, err = a.Assemble(r, "also freeform", "text", nil)
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidInvocationError for both, got: %v", err)
	}
}

func TestAssemble_RecipeComposition(t *testing.T) {
	a := Assembler{}
	r := &recipe.Recipe{Name: "Summarize", Instruction: "Summarize the following text:"}
	p, err := a.Assemble(r, "", "The sky is blue.", nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	testboil.FailTestIfDiff(t, p.PromptText, "Summarize the following text: The sky is blue.")
	if !p.UseTools {
		t.Fatal("expected tools enabled when keyword not required")
	}
}

func TestAssemble_EmptyCaptureSendsInstructionAlone(t *testing.T) {
	a := Assembler{}
	p, err := a.Assemble(nil, "tell me a joke", "  \n ", nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	testboil.FailTestIfDiff(t, p.PromptText, "tell me a joke")
}

func TestAssemble_ToolGating(t *testing.T) {
	toolRecipe := &recipe.Recipe{Name: "Search", Instruction: "Find links for:", RequiresTools: true}
	plainRecipe := &recipe.Recipe{Name: "Plain", Instruction: "Echo:"}

	tests := []struct {
		name           string
		requireKeyword bool
		r              *recipe.Recipe
		freeform       string
		wantTools      bool
		wantPrompt     string
	}{
		{"keyword not required, plain recipe", false, plainRecipe, "", true, "Echo: txt"},
		{"keyword required, plain recipe", true, plainRecipe, "", false, "Echo: txt"},
		{"keyword required, tool recipe", true, toolRecipe, "", true, "Find links for: txt"},
		{"keyword required, plain freeform", true, nil, "just answer:", false, "just answer: txt"},
		{"keyword required, marked freeform", true, nil, "USETOOLS: search for:", true, "search for: txt"},
		{"keyword not required, marked freeform", false, nil, "USETOOLS: search for:", true, "search for: txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Assembler{RequireToolKeyword: tt.requireKeyword}
			p, err := a.Assemble(tt.r, tt.freeform, "txt", nil)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			testboil.FailTestIfDiff(t, p.UseTools, tt.wantTools)
			testboil.FailTestIfDiff(t, p.PromptText, tt.wantPrompt)
		})
	}
}

func TestAssemble_PriorTurnsSnapshotIsCopied(t *testing.T) {
	a := Assembler{}
	turns := []models.Message{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	}
	p, err := a.Assemble(nil, "next question:", "txt", turns)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(p.PriorTurns) != 2 {
		t.Fatalf("expected prior turns carried, got: %v", len(p.PriorTurns))
	}
	turns[0].Content = "mutated"
	if p.PriorTurns[0].Content != "hi" {
		t.Fatal("expected payload to own its snapshot")
	}
}

func TestAssemble_NoPriorTurnsWhenInactive(t *testing.T) {
	a := Assembler{}
	p, err := a.Assemble(nil, "q:", "txt", nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.PriorTurns != nil {
		t.Fatalf("expected nil prior turns, got: %v", p.PriorTurns)
	}
}
