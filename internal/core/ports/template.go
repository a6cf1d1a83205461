package ports

import "context"

// TemplateSource provides the binding template the generator scans for engine functions.
//
//go:generate go run go.uber.org/mock/mockgen -source=template.go -destination=mocks/mock_template.go -package=mocks
type TemplateSource interface {
	// Fetch returns the template text.
	Fetch(ctx context.Context) ([]byte, error)
}
