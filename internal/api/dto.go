package api

import (
	"pvt-resolver/internal/domain"
)

// ProfileDTO is the JSON form of a resolved profile.
type ProfileDTO struct {
	CompletionID string            `json:"completion_id"`
	AsOf         string            `json:"as_of"`
	SnapshotDate string            `json:"snapshot_date"`
	Case         string            `json:"case"`
	Pressure     *float64          `json:"pressure"`
	Properties   domain.Properties `json:"properties"`
}

// CompletionsResponse lists known completions.
type CompletionsResponse struct {
	Completions []string `json:"completions"`
}

// ErrorResponse is returned for all failed requests.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toProfileDTO(req domain.Request, res domain.Result) ProfileDTO {
	return ProfileDTO{
		CompletionID: res.CompletionID,
		AsOf:         req.AsOf.Format(domain.DateLayout),
		SnapshotDate: res.SnapshotDate.Format(domain.DateLayout),
		Case:         res.Case.String(),
		Pressure:     res.Pressure,
		Properties:   res.Properties,
	}
}
