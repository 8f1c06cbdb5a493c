package dto

import (
	"github.com/asset-hq/nwt_backend/internal/core/domain"
)

// UpdateSettingsRequest replaces the stored settings.
type UpdateSettingsRequest struct {
	USDCNHManual   *float64 `json:"usdcnhManual" binding:"required"`
	EnableAutoFx   *bool    `json:"enableAutoFx" binding:"required"`
	BackgroundNote string   `json:"backgroundNote"`
}

// SettingsResponse defines the data returned for the stored settings.
type SettingsResponse struct {
	USDCNHManual   float64 `json:"usdcnhManual"`
	EnableAutoFx   bool    `json:"enableAutoFx"`
	BackgroundNote string  `json:"backgroundNote,omitempty"`
}

// ToSettingsResponse converts domain.Settings to its DTO.
func ToSettingsResponse(s *domain.Settings) SettingsResponse {
	return SettingsResponse{
		USDCNHManual:   s.USDCNHManual,
		EnableAutoFx:   s.EnableAutoFx,
		BackgroundNote: s.BackgroundNote,
	}
}
