// Package models defines the domain types for genedata.
package models

// Record is one catalog entry. Formula is kept in compact form.
type Record struct {
	Name    string `json:"name"`
	Origin  string `json:"origin"`
	Formula string `json:"formula"`
}
