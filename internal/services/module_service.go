package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alora-app/alora/internal/domain/module"
	"github.com/alora-app/alora/internal/llm"
	"github.com/alora-app/alora/internal/pkg/logger"
	"github.com/alora-app/alora/internal/pkg/metrics"
	"github.com/alora-app/alora/internal/prompt"
)

// ErrBadGeneration is returned when the model output cannot be parsed
// into valid modules. Handlers surface it as a 502.
var ErrBadGeneration = errors.New("generated content is invalid")

// ModuleService implements module.Service
type ModuleService struct {
	repo   module.Repository
	llm    llm.Completer
	logger *logger.Logger
}

// NewModuleService creates a new module service
func NewModuleService(repo module.Repository, completer llm.Completer, log *logger.Logger) module.Service {
	return &ModuleService{
		repo:   repo,
		llm:    completer,
		logger: log,
	}
}

// generatedPayload is the JSON contract the generation prompt asks for.
type generatedPayload struct {
	Modules []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Days        []struct {
			DayNumber            int    `json:"dayNumber"`
			Title                string `json:"title"`
			FrameworkName        string `json:"frameworkName"`
			FrameworkDescription string `json:"frameworkDescription"`
			ReflectionPrompt     string `json:"reflectionPrompt"`
			ShiftFocus           string `json:"shiftFocus"`
		} `json:"days"`
	} `json:"modules"`
}

// Generate renders the generation prompt, calls the LLM, parses the JSON
// response and persists the resulting modules.
func (s *ModuleService) Generate(ctx context.Context, userID int64, personalContext, userName, language string) ([]*module.Module, error) {
	start := time.Now()

	p := prompt.Modules(prompt.ModuleInput{
		PersonalContext: personalContext,
		UserName:        userName,
		Language:        language,
	})

	raw, err := s.llm.CompleteJSON(ctx, p)
	if err != nil {
		metrics.RecordGeneration("modules", "error", time.Since(start))
		s.logger.ErrorWithErr(err, "Module generation request failed")
		return nil, err
	}

	modules, err := parseModules(raw, userID)
	if err != nil {
		metrics.RecordGeneration("modules", "invalid", time.Since(start))
		s.logger.ErrorWithErr(err, "Module generation returned invalid content")
		return nil, fmt.Errorf("%w: %v", ErrBadGeneration, err)
	}

	for _, m := range modules {
		if err := s.repo.Create(ctx, m); err != nil {
			metrics.RecordGeneration("modules", "error", time.Since(start))
			return nil, err
		}
	}

	metrics.RecordGeneration("modules", "success", time.Since(start))
	s.logger.WithFields(map[string]interface{}{
		"user_id": userID,
		"count":   len(modules),
	}).Info("Modules generated")

	return modules, nil
}

// parseModules validates the model output against the generation
// contract: 2-3 modules, 5-7 days each, day numbers sequential from 1.
// A response with extra modules still yields three valid ones, so only
// the overflow is discarded.
func parseModules(raw string, userID int64) ([]*module.Module, error) {
	var payload generatedPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &payload); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if len(payload.Modules) < module.MinModules {
		return nil, fmt.Errorf("response contains %d modules, want at least %d", len(payload.Modules), module.MinModules)
	}
	if len(payload.Modules) > module.MaxModules {
		payload.Modules = payload.Modules[:module.MaxModules]
	}

	modules := make([]*module.Module, 0, len(payload.Modules))
	for i, gm := range payload.Modules {
		if gm.Title == "" {
			return nil, fmt.Errorf("module %d has no title", i+1)
		}
		if len(gm.Days) < module.MinDays || len(gm.Days) > module.MaxDays {
			return nil, fmt.Errorf("module %q has %d days, want %d-%d", gm.Title, len(gm.Days), module.MinDays, module.MaxDays)
		}

		m := &module.Module{
			UserID:      userID,
			Title:       gm.Title,
			Description: gm.Description,
			TotalDays:   len(gm.Days),
			Days:        make([]module.Day, 0, len(gm.Days)),
		}
		for j, gd := range gm.Days {
			if gd.DayNumber != j+1 {
				return nil, fmt.Errorf("module %q day %d is numbered %d", gm.Title, j+1, gd.DayNumber)
			}
			if gd.FrameworkName == "" || gd.ReflectionPrompt == "" {
				return nil, fmt.Errorf("module %q day %d is missing required fields", gm.Title, j+1)
			}
			m.Days = append(m.Days, module.Day{
				DayNumber:            gd.DayNumber,
				Title:                gd.Title,
				FrameworkName:        gd.FrameworkName,
				FrameworkDescription: gd.FrameworkDescription,
				ReflectionPrompt:     gd.ReflectionPrompt,
				ShiftFocus:           gd.ShiftFocus,
			})
		}
		modules = append(modules, m)
	}
	return modules, nil
}

// GetByID retrieves one of the user's modules
func (s *ModuleService) GetByID(ctx context.Context, userID, id int64) (*module.Module, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// ListByUser retrieves the user's modules
func (s *ModuleService) ListByUser(ctx context.Context, userID int64) ([]*module.Module, error) {
	return s.repo.ListByUser(ctx, userID)
}
