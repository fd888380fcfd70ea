package api

import "github.com/starford/genedata/internal/proteinservice"

// CatalogResponse describes the active catalog.
type CatalogResponse = proteinservice.CatalogInfo

// SearchResponse is the answer to GET /api/search.
type SearchResponse = proteinservice.SearchResult

// DiffResponse is the answer to GET /api/diff.
type DiffResponse = proteinservice.DiffResult

// ModeResponse is the answer to GET /api/mode.
type ModeResponse = proteinservice.ModeResult

// RecordResponse is a single catalog record with its decoded formula.
type RecordResponse struct {
	Name    string `json:"name" example:"P1" validate:"required"`
	Origin  string `json:"origin" example:"Org1" validate:"required"`
	Formula string `json:"formula" example:"2AB" validate:"required"`
	Decoded string `json:"decoded" example:"AAB" validate:"required"`
}
