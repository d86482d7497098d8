package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/nautobot/nautobot-sub011/internal/common/httpx"
	"github.com/nautobot/nautobot-sub011/internal/core/tables"
)

type TableColumnsReq struct {
	Columns []string `json:"columns"`
}

type TableColumnsRsp struct {
	User    string   `json:"user"`
	Table   string   `json:"table"`
	Columns []string `json:"columns"`
}

// knownTable builds the named table without data to learn its column names.
func (s *TableServer) knownTable(r *http.Request) (*tables.Table, error) {
	name := chi.URLParam(r, "table")
	spec, ok := s.data.TableSpecByName(name, s.defaults)
	if !ok {
		return nil, httpx.ErrNotFound("unknown table " + name)
	}
	return tables.New(spec, nil, tables.WithContext(r.Context()), tables.WithRegistry(s.extras))
}

func (s *TableServer) getTableColumns(r *http.Request) (*httpx.Response, error) {
	tbl, err := s.knownTable(r)
	if err != nil {
		return nil, err
	}
	user := requestUser(chi.URLParam(r, "user"))
	columns, _, err := s.prefs.TableColumns(r.Context(), user, tbl.Name())
	if err != nil {
		return nil, err
	}
	if columns == nil {
		columns = []string{}
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   &TableColumnsRsp{User: user.Username, Table: tbl.Name(), Columns: columns},
	}, nil
}

func (s *TableServer) putTableColumns(r *http.Request) (*httpx.Response, error) {
	tbl, err := s.knownTable(r)
	if err != nil {
		return nil, err
	}
	r.Body = http.MaxBytesReader(nil, r.Body, s.cfg.MaxRequestBodySize)
	req := &TableColumnsReq{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	for _, name := range req.Columns {
		if _, ok := tbl.Column(name); !ok {
			return nil, httpx.ErrInvalidRequest(fmt.Sprintf("unknown column %q for table %s", name, tbl.Name()))
		}
	}

	user := requestUser(chi.URLParam(r, "user"))
	if err := s.prefs.SetTableColumns(r.Context(), user, tbl.Name(), req.Columns); err != nil {
		return nil, err
	}
	log.Ctx(r.Context()).Info().Str("user", user.Username).Str("table", tbl.Name()).Strs("columns", req.Columns).Msg("saved table columns")
	columns := req.Columns
	if columns == nil {
		columns = []string{}
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   &TableColumnsRsp{User: user.Username, Table: tbl.Name(), Columns: columns},
	}, nil
}
