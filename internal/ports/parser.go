package ports

import (
	"tskit/internal/domain"
)

type ParseResult struct {
	Catalog *domain.Catalog
	Locale  string // optional, if detected from file
}

type Parser interface {
	Format() string
	Extensions() []string
	Parse(data []byte) (ParseResult, error)
}
