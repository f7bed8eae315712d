package app

import (
	"context"
	"time"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	// External tools must be resolvable for the configured profile.
	for _, tool := range []string{"graph-index", "graph-node2type"} {
		if _, err := s.app.toolRunner.Resolve(tool); err != nil {
			status.Status = "degraded"
			status.Components[tool] = "unresolvable"
		} else {
			status.Components[tool] = "ok"
		}
	}

	if s.app.journal != nil {
		if err := s.app.journal.Ping(ctx); err != nil {
			status.Status = "degraded"
			status.Components["journal"] = "unreachable"
		} else {
			status.Components["journal"] = "ok"
		}
	} else if s.app.Config.Journal.Enabled {
		status.Status = "degraded"
		status.Components["journal"] = "missing but enabled in config"
	}

	return status
}
