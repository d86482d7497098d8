// Package server exposes the table engine and the natural-key lookup over HTTP.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nautobot/nautobot-sub011/internal/common/httpx"
	commonmiddleware "github.com/nautobot/nautobot-sub011/internal/common/middleware"
	"github.com/nautobot/nautobot-sub011/internal/config"
	"github.com/nautobot/nautobot-sub011/internal/core/extras"
	"github.com/nautobot/nautobot-sub011/internal/core/tables"
	"github.com/nautobot/nautobot-sub011/internal/core/users"
	"github.com/nautobot/nautobot-sub011/internal/fixtures"
)

// ServerVersion is reported by GET /version.
const ServerVersion = "0.1.0"

// Backend holds the data the server reads from.
type Backend struct {
	Data *fixtures.Dataset
	// Extras defaults to Data.Extras.
	Extras extras.Registry
	// Preferences defaults to an in-memory store.
	Preferences users.PreferenceStore
}

type TableServer struct {
	Router *chi.Mux

	cfg      *config.ConfigParam
	data     *fixtures.Dataset
	extras   extras.Registry
	prefs    users.PreferenceStore
	urls     tables.URLResolver
	defaults tables.ColumnDefaults
}

func CreateNewServer(cfg *config.ConfigParam, backend Backend) (*TableServer, error) {
	if cfg == nil {
		return nil, httpx.ErrApplicationError("no configuration")
	}
	if backend.Data == nil {
		return nil, httpx.ErrApplicationError("no data")
	}
	s := &TableServer{
		Router: chi.NewRouter(),
		cfg:    cfg,
		data:   backend.Data,
		extras: backend.Extras,
		prefs:  backend.Preferences,
		urls:   tables.PathResolver{},
		defaults: tables.ColumnDefaults{
			SortContentTypes:          cfg.Tables.SortContentTypesOrDefault(),
			ContentTypesTruncateWords: cfg.Tables.ContentTypesTruncateWords,
		},
	}
	if s.extras == nil {
		s.extras = backend.Data.Extras
	}
	if s.prefs == nil {
		s.prefs = users.NewMemoryStore()
	}
	return s, nil
}

func (s *TableServer) MountHandlers() {
	s.Router.Use(commonmiddleware.RequestLogger)
	s.Router.Use(commonmiddleware.PanicHandler)
	if timeout, err := s.cfg.GetRequestTimeout(); err == nil && timeout > 0 {
		s.Router.Use(commonmiddleware.SetTimeout(timeout))
	}
	if s.cfg.HandleCORS {
		s.Router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
			ExposedHeaders: []string{commonmiddleware.RequestIDHeader},
			MaxAge:         300,
		}))
	}
	s.mountResourceHandlers(s.Router)
	if zerolog.GlobalLevel() <= zerolog.TraceLevel {
		walkFunc := func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
			log.Trace().Str("method", method).Str("route", route).Msg("route")
			return nil
		}
		if err := chi.Walk(s.Router, walkFunc); err != nil {
			log.Error().Err(err).Msg("unable to walk routes")
		}
	}
}

func (s *TableServer) mountResourceHandlers(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/tables/{app}/{model}", httpx.WrapHttpRsp(s.listTable))
		r.Get("/objects/{app}/{model}/{key}", httpx.WrapHttpRsp(s.getObject))
		r.Get("/users/{user}/tables/{table}/columns", httpx.WrapHttpRsp(s.getTableColumns))
		r.Put("/users/{user}/tables/{table}/columns", httpx.WrapHttpRsp(s.putTableColumns))
	})
	r.Get("/version", s.getVersion)
}

type GetVersionRsp struct {
	ServerVersion string `json:"serverVersion"`
	ConfigVersion string `json:"configVersion"`
}

func (s *TableServer) getVersion(w http.ResponseWriter, r *http.Request) {
	log.Ctx(r.Context()).Debug().Msg("GetVersion")
	rsp := &GetVersionRsp{
		ServerVersion: "Nautobot Tables Server: " + ServerVersion,
		ConfigVersion: config.ConfigFormatVersion,
	}
	httpx.SendJsonRsp(r.Context(), w, http.StatusOK, rsp)
}
