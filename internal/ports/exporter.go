package ports

import "tskit/internal/domain"

type ExportOptions struct {
	// Fallback writes the source text where a translation is missing.
	Fallback bool
	// Separator selects the CSV field separator: comma, semicolon or tab.
	Separator string
}

type Exporter interface {
	Format() string
	Extension() string
	Export(c *domain.Catalog, opts ExportOptions) ([]byte, error)
}
