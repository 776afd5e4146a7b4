package app

import (
	"context"
	"net/http"

	"github.com/shandysiswandi/goflightscore/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/goflightscore/internal/pkg/pkglog"
	"github.com/shandysiswandi/goflightscore/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/goflightscore/internal/pkg/pkguid"
)

// Options tune how the application boots. The zero value reads the config
// from /config/config.yaml, or ./config/config.yaml when LOCAL=true.
type Options struct {
	ConfigPath string
}

type closer struct {
	name string
	fn   func(context.Context) error
}

type App struct {
	options    Options
	config     pkgconfig.Config
	uuid       pkguid.StringID
	router     *pkgrouter.Router
	httpServer *http.Server
	closers    []closer
}

func New(opts Options) *App {
	app := &App{options: opts}
	pkglog.InitLogging()
	app.initConfig()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()
	return app
}

// Handler exposes the root handler so it can be served without a listener.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}
