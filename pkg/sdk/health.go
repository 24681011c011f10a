package textdex

import (
	"context"

	healthuc "github.com/kailas-cloud/textdex/internal/usecase/health"
)

// HealthStatus represents the aggregated engine health.
type HealthStatus struct {
	Status  string            // "ok" or "degraded"
	Checks  map[string]string // component -> "ok"/"error"
	Indices int
}

// Health checks storage and reports the number of loaded indices.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	return fromReport(report)
}

func fromReport(report healthuc.Report) HealthStatus {
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status:  string(report.Status),
		Checks:  checks,
		Indices: report.Indices,
	}
}
