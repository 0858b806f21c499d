package app

import (
	"context"
	"net/http"
	"os"

	"github.com/shandysiswandi/gomony/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/gomony/internal/pkg/pkglog"
	"github.com/shandysiswandi/gomony/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/gomony/internal/pkg/pkguid"
)

type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config pkgconfig.Config

	// libraries
	uuid      pkguid.StringID
	snowflake pkguid.StringID

	// server
	router     *pkgrouter.Router
	httpServer *http.Server

	//
	closerFn map[string]func(context.Context) error
}

func New() *App {
	pkglog.InitLogging(os.Getenv(pkgconfig.EnvPrefix + "_LOG_LEVEL"))

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initLibraries()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
