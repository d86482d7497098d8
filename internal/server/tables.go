package server

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nautobot/nautobot-sub011/internal/common/httpx"
	"github.com/nautobot/nautobot-sub011/internal/core/models"
	"github.com/nautobot/nautobot-sub011/internal/core/tables"
	"github.com/nautobot/nautobot-sub011/internal/core/users"
)

type columnRsp struct {
	Name        string `json:"name"`
	VerboseName string `json:"verbose_name"`
	Header      string `json:"header"`
	Orderable   bool   `json:"orderable"`
}

type rowRsp struct {
	ID    string            `json:"id"`
	Cells map[string]string `json:"cells"`
}

type TableRsp struct {
	Name      string                `json:"name"`
	Model     string                `json:"model"`
	Columns   []columnRsp           `json:"columns"`
	Available []tables.ColumnChoice `json:"available"`
	OrderBy   []string              `json:"order_by"`
	Count     int                   `json:"count"`
	Page      int                   `json:"page"`
	PerPage   int                   `json:"per_page"`
	Rows      []rowRsp              `json:"rows"`
}

func (s *TableServer) model(r *http.Request) (*models.Model, error) {
	label := chi.URLParam(r, "app") + "." + chi.URLParam(r, "model")
	m, ok := s.data.Models.Get(label)
	if !ok {
		return nil, httpx.ErrNotFound("unknown model " + label)
	}
	return m, nil
}

func requestUser(name string) users.User {
	if name == "" {
		return users.AnonymousUser()
	}
	return users.User{Username: name}
}

// splitList splits a comma separated query parameter, dropping empty items.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// buildTable constructs the table of the requested model. The columns query parameter
// adds text columns by accessor path; show reveals hidden columns by name.
func (s *TableServer) buildTable(r *http.Request) (*tables.Table, error) {
	m, err := s.model(r)
	if err != nil {
		return nil, err
	}
	q := r.URL.Query()
	var extra []tables.Column
	for _, path := range splitList(q.Get("columns")) {
		extra = append(extra, tables.TextColumn(path, path))
	}
	opts := []tables.Option{
		tables.WithContext(r.Context()),
		tables.WithUser(requestUser(q.Get("user"))),
		tables.WithRegistry(s.extras),
		tables.WithPreferences(s.prefs),
		tables.WithURLResolver(s.urls),
		tables.WithObjectResolver(s.data.ResolveObject),
		tables.WithExtraColumns(extra...),
		tables.WithShownColumns(splitList(q.Get("show"))...),
	}
	if orderBy := q.Get("order_by"); orderBy != "" {
		opts = append(opts, tables.WithOrderBy(orderBy))
	}
	return tables.New(s.data.TableSpec(m, s.defaults), s.data.QuerySet(m), opts...)
}

func (s *TableServer) listTable(r *http.Request) (*httpx.Response, error) {
	tbl, err := s.buildTable(r)
	if err != nil {
		return nil, err
	}
	ctx := r.Context()

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
	case "csv":
		var buf bytes.Buffer
		if err := tbl.WriteCSV(ctx, &buf); err != nil {
			return nil, err
		}
		return &httpx.Response{
			StatusCode:  http.StatusOK,
			ContentType: "text/csv",
			Chunked:     true,
			WriteChunks: func(w http.ResponseWriter) error {
				_, err := w.Write(buf.Bytes())
				return err
			},
		}, nil
	case "text":
		var buf bytes.Buffer
		if err := tbl.WriteText(ctx, &buf); err != nil {
			return nil, err
		}
		return &httpx.Response{StatusCode: http.StatusOK, ContentType: "text/plain", Response: buf.String()}, nil
	default:
		return nil, httpx.ErrInvalidRequest("unsupported format " + format)
	}

	page, err := s.page(r)
	if err != nil {
		return nil, err
	}
	recs, err := tbl.Data(ctx)
	if err != nil {
		return nil, err
	}
	perPage := s.cfg.Tables.PerPage
	rsp := &TableRsp{
		Name:    tbl.Name(),
		Model:   tbl.Model().Label(),
		OrderBy: tbl.OrderBy(),
		Count:   len(recs),
		Page:    page,
		PerPage: perPage,
		Rows:    []rowRsp{},
	}
	visible := tbl.VisibleColumns()
	for _, name := range visible {
		c, _ := tbl.Column(name)
		rsp.Columns = append(rsp.Columns, columnRsp{
			Name:        name,
			VerboseName: tbl.VerboseName(name),
			Header:      string(tbl.Header(name)),
			Orderable:   c.Orderable,
		})
	}
	_, rsp.Available = tbl.ConfigurableColumns()

	start, end := pageBounds(page, perPage, len(recs))
	for _, row := range tbl.RenderRows(ctx, recs[start:end]) {
		cells := make(map[string]string, len(visible))
		for i, name := range visible {
			cells[name] = string(row.Cells[i].HTML)
		}
		rsp.Rows = append(rsp.Rows, rowRsp{ID: row.Record.PK().String(), Cells: cells})
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: rsp}, nil
}

// pageBounds returns the slice bounds of page within n records. Pages past the end are
// empty; the bound is checked before multiplying so huge page numbers cannot overflow.
func pageBounds(page, perPage, n int) (start, end int) {
	if perPage <= 0 {
		return 0, n
	}
	if page < 1 || page-1 > n/perPage {
		return n, n
	}
	start = (page - 1) * perPage
	if start > n {
		start = n
	}
	end = n
	if perPage < n-start {
		end = start + perPage
	}
	return start, end
}

func (s *TableServer) page(r *http.Request) (int, error) {
	v := r.URL.Query().Get("page")
	if v == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(v)
	if err != nil || page < 1 {
		return 0, httpx.ErrInvalidRequest("invalid page " + v)
	}
	return page, nil
}
