package module

import "context"

// Service defines the interface for module generation and lookup
type Service interface {
	// Generate renders the generation prompt, calls the LLM, parses the
	// returned JSON and persists the resulting modules.
	Generate(ctx context.Context, userID int64, personalContext, userName, language string) ([]*Module, error)

	// GetByID retrieves one of the user's modules
	GetByID(ctx context.Context, userID, id int64) (*Module, error)

	// ListByUser retrieves the user's modules
	ListByUser(ctx context.Context, userID int64) ([]*Module, error)
}
