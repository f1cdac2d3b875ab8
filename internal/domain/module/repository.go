package module

import "context"

// Repository defines the interface for module data access
type Repository interface {
	// Create persists a module and its days
	Create(ctx context.Context, m *Module) error

	// GetByID retrieves one of the user's modules with its days
	GetByID(ctx context.Context, userID, id int64) (*Module, error)

	// ListByUser retrieves the user's modules, newest first
	ListByUser(ctx context.Context, userID int64) ([]*Module, error)
}
