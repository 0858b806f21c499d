package app

import (
	"context"
	"log/slog"
	"os"

	"github.com/shandysiswandi/gomony/internal/mony"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.mony.enabled") {
		closer, err := mony.New(mony.Dependency{
			Config:  a.config,
			Router:  a.router,
			ID:      a.uuid,
			EventID: a.snowflake,
		})
		if err != nil {
			slog.Error("failed to init module mony", "error", err)
			os.Exit(1)
		}
		if closer != nil {
			if a.closerFn == nil {
				a.closerFn = map[string]func(context.Context) error{}
			}
			a.closerFn["Mony"] = closer
		}
	}
}
