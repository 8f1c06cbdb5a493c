package dto

import (
	"github.com/asset-hq/nwt_backend/internal/core/domain"
)

// CreateSubjectRequest defines the data needed to add a subject to the
// catalog. The ID is assigned by the service.
type CreateSubjectRequest struct {
	Name              string `json:"name" binding:"required"`
	Bucket            string `json:"bucket" binding:"required,oneof=Cash Invest Social Other"`
	DefaultCurrency   string `json:"defaultCurrency" binding:"required,oneof=CNY USD"`
	IsIndexLike       bool   `json:"isIndexLike"`
	IncludeInNetWorth *bool  `json:"includeInNetWorth"`
}

// UpdateSubjectRequest carries a partial in-place update of a subject.
// Nil fields are left unchanged.
type UpdateSubjectRequest struct {
	Name              *string `json:"name" binding:"omitempty,min=1"`
	Bucket            *string `json:"bucket" binding:"omitempty,oneof=Cash Invest Social Other"`
	DefaultCurrency   *string `json:"defaultCurrency" binding:"omitempty,oneof=CNY USD"`
	IsIndexLike       *bool   `json:"isIndexLike"`
	IncludeInNetWorth *bool   `json:"includeInNetWorth"`
}

// SubjectResponse defines the data returned for a subject.
type SubjectResponse struct {
	SubjectID         string `json:"id"`
	Name              string `json:"name"`
	Bucket            string `json:"bucket"`
	DefaultCurrency   string `json:"defaultCurrency"`
	IsIndexLike       bool   `json:"isIndexLike"`
	IncludeInNetWorth bool   `json:"includeInNetWorth"`
}

// ToSubjectResponse converts a domain.Subject to a SubjectResponse DTO.
func ToSubjectResponse(s *domain.Subject) SubjectResponse {
	return SubjectResponse{
		SubjectID:         s.SubjectID,
		Name:              s.Name,
		Bucket:            string(s.Bucket),
		DefaultCurrency:   string(s.DefaultCurrency),
		IsIndexLike:       s.IsIndexLike,
		IncludeInNetWorth: s.InNetWorth(),
	}
}

// ToListSubjectResponse converts a slice of subjects to DTOs.
func ToListSubjectResponse(subjects []domain.Subject) []SubjectResponse {
	res := make([]SubjectResponse, len(subjects))
	for i := range subjects {
		res[i] = ToSubjectResponse(&subjects[i])
	}
	return res
}
