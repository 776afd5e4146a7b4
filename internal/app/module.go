package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/goflightscore/internal/flightscore"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.flightscore.enabled") {
		if err := flightscore.New(flightscore.Dependency{
			Config: a.config,
			Router: a.router,
		}); err != nil {
			slog.Error("failed to init module flightscore", "error", err)
			os.Exit(1)
		}
	}
}
