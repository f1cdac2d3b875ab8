package dto

// GenerateModulesRequest is the payload for POST /api/modules/generate
type GenerateModulesRequest struct {
	PersonalContext string `json:"personalContext" validate:"required,min=10"`
	Language        string `json:"language" validate:"omitempty,max=50"`
}
