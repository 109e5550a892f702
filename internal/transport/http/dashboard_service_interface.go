package http

import (
	"context"

	"odpulse/internal/analytics"
	"odpulse/internal/dataset"
	"odpulse/internal/services"
)

// DashboardServiceInterface is what the dashboard handler needs from
// the service layer. Kept as an interface so handler tests can stub it.
type DashboardServiceInterface interface {
	Options(ctx context.Context) (dataset.Options, error)
	Query(ctx context.Context, criteria analytics.Criteria) (*services.QueryResult, error)
	Export(ctx context.Context, criteria analytics.Criteria) (string, error)
	Reload(ctx context.Context) error
}
