package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/alora-app/alora/internal/domain/module"
	"github.com/alora-app/alora/internal/testutil"
)

func generatedJSON(dayCounts ...int) string {
	type day struct {
		DayNumber            int    `json:"dayNumber"`
		Title                string `json:"title"`
		FrameworkName        string `json:"frameworkName"`
		FrameworkDescription string `json:"frameworkDescription"`
		ReflectionPrompt     string `json:"reflectionPrompt"`
		ShiftFocus           string `json:"shiftFocus"`
	}
	type mod struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Days        []day  `json:"days"`
	}
	payload := struct {
		Modules []mod `json:"modules"`
	}{}
	for i, n := range dayCounts {
		m := mod{
			Title:       fmt.Sprintf("Module %d", i+1),
			Description: "A short description",
		}
		for d := 1; d <= n; d++ {
			m.Days = append(m.Days, day{
				DayNumber:        d,
				Title:            fmt.Sprintf("Day %d", d),
				FrameworkName:    "Box Breathing",
				ReflectionPrompt: "What did you notice?",
				ShiftFocus:       "One mindful breath",
			})
		}
		payload.Modules = append(payload.Modules, m)
	}
	b, _ := json.Marshal(payload)
	return string(b)
}

func TestGeneratePersistsModules(t *testing.T) {
	repo := testutil.NewMockModuleRepository()
	completer := &testutil.MockCompleter{Response: generatedJSON(5, 7)}
	svc := NewModuleService(repo, completer, testutil.NewTestLogger())

	modules, err := svc.Generate(context.Background(), 1, "I want calmer mornings", "Sam", "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(modules) != 2 {
		t.Fatalf("generated %d modules, want 2", len(modules))
	}
	if modules[0].ID == 0 {
		t.Error("module was not persisted")
	}
	if modules[1].TotalDays != 7 {
		t.Errorf("totalDays = %d, want 7", modules[1].TotalDays)
	}

	if len(completer.Prompts) != 1 {
		t.Fatalf("made %d LLM calls, want 1", len(completer.Prompts))
	}
	if !strings.Contains(completer.Prompts[0].User, "I want calmer mornings") {
		t.Error("prompt does not carry the personal context")
	}
}

func TestGenerateRejectsInvalidOutput(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not json", "here are your modules!"},
		{"no modules", `{"modules":[]}`},
		{"single module", generatedJSON(5)},
		{"too few days", generatedJSON(5, 4)},
		{"too many days", generatedJSON(5, 8)},
		{"bad day numbering", strings.Replace(generatedJSON(5, 5), `"dayNumber":1`, `"dayNumber":9`, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := testutil.NewMockModuleRepository()
			completer := &testutil.MockCompleter{Response: tt.response}
			svc := NewModuleService(repo, completer, testutil.NewTestLogger())

			_, err := svc.Generate(context.Background(), 1, "context", "", "")
			if !errors.Is(err, ErrBadGeneration) {
				t.Errorf("Generate() error = %v, want ErrBadGeneration", err)
			}
			if len(repo.Modules) != 0 {
				t.Error("invalid output was persisted")
			}
		})
	}
}

func TestGenerateCapsModuleCount(t *testing.T) {
	repo := testutil.NewMockModuleRepository()
	completer := &testutil.MockCompleter{Response: generatedJSON(5, 5, 5, 5)}
	svc := NewModuleService(repo, completer, testutil.NewTestLogger())

	modules, err := svc.Generate(context.Background(), 1, "context", "", "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(modules) != module.MaxModules {
		t.Errorf("generated %d modules, want %d", len(modules), module.MaxModules)
	}
	if len(repo.Modules) != module.MaxModules {
		t.Errorf("persisted %d modules, want %d", len(repo.Modules), module.MaxModules)
	}
}

func TestGenerateScopesModulesToUser(t *testing.T) {
	repo := testutil.NewMockModuleRepository()
	completer := &testutil.MockCompleter{Response: generatedJSON(5, 5)}
	svc := NewModuleService(repo, completer, testutil.NewTestLogger())
	ctx := context.Background()

	modules, err := svc.Generate(ctx, 1, "context", "", "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := svc.GetByID(ctx, 2, modules[0].ID); !errors.Is(err, module.ErrNotFound) {
		t.Errorf("cross-user GetByID() error = %v, want ErrNotFound", err)
	}
}
