package tables

import (
	"context"
	"fmt"
	"html/template"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/anand-gl/jsoncanonicalizer"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"

	"github.com/nautobot/nautobot-sub011/internal/core/extras"
	"github.com/nautobot/nautobot-sub011/internal/core/models"
	"github.com/nautobot/nautobot-sub011/internal/core/queryset"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type renderFunc func(ctx context.Context, t *Table, col *Column, rec models.Record) Cell

// renderers is exhaustive over ColumnKind; New rejects columns of any other kind.
var renderers map[ColumnKind]renderFunc

func init() {
	renderers = map[ColumnKind]renderFunc{
		KindText:          renderText,
		KindLink:          renderLink,
		KindToggle:        renderToggle,
		KindBoolean:       renderBoolean,
		KindLinkedCount:   renderLinkedCount,
		KindContentTypes:  renderContentTypes,
		KindTags:          renderTags,
		KindColor:         renderColor,
		KindActions:       renderActions,
		KindCustomField:   renderCustomField,
		KindComputedField: renderComputedField,
		KindRelationship:  renderRelationship,
	}
}

const (
	booleanTrue  = `<span class="text-success"><i class="mdi mdi-check-bold" title="Yes"></i></span>`
	booleanFalse = `<span class="text-danger"><i class="mdi mdi-close-thick" title="No"></i></span>`
	treeIndent   = `<i class="mdi mdi-circle-small"></i>`
	toggleHeader = `<input type="checkbox" class="toggle" title="Toggle all" />`
)

var hexColorRegex = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)

// ToggleHeader is the header of a toggle column: a checkbox selecting every row.
func ToggleHeader() template.HTML {
	return toggleHeader
}

func escape(s string) string {
	return templ.EscapeString(s)
}

func anchor(href string, label string, attrs ...string) string {
	var b strings.Builder
	b.WriteString(`<a href="`)
	b.WriteString(escape(string(templ.URL(href))))
	b.WriteString(`"`)
	for i := 0; i+1 < len(attrs); i += 2 {
		fmt.Fprintf(&b, ` %s="%s"`, attrs[i], escape(attrs[i+1]))
	}
	b.WriteString(">")
	b.WriteString(label)
	b.WriteString("</a>")
	return b.String()
}

func lookup(col *Column, rec models.Record) any {
	steps := col.accessor()
	if len(steps) == 0 {
		return nil
	}
	v, _ := models.Lookup(rec, models.Path(steps).String())
	return v
}

// plainText renders v for exports: members of lists are joined with ", ".
func plainText(v any) string {
	switch tv := v.(type) {
	case nil:
		return ""
	case []models.Record:
		parts := make([]string, 0, len(tv))
		for _, r := range tv {
			parts = append(parts, models.Display(r))
		}
		return strings.Join(parts, ", ")
	case []any:
		parts := make([]string, 0, len(tv))
		for _, item := range tv {
			if s := plainText(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(tv, ", ")
	}
	s, _ := models.StringValue(v)
	return s
}

func truthy(v any) bool {
	switch tv := v.(type) {
	case nil:
		return false
	case bool:
		return tv
	case string:
		if b, err := strconv.ParseBool(tv); err == nil {
			return b
		}
		return tv != ""
	case []models.Record:
		return len(tv) > 0
	case []any:
		return len(tv) > 0
	}
	if models.IsNilRecord(v) {
		return false
	}
	s, _ := models.StringValue(v)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f != 0
	}
	return true
}

func count(v any) (int, bool) {
	switch tv := v.(type) {
	case nil:
		return 0, false
	case []models.Record:
		return len(tv), true
	case []any:
		return len(tv), true
	}
	s, ok := models.StringValue(v)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

func members(v any) []any {
	switch tv := v.(type) {
	case []models.Record:
		out := make([]any, len(tv))
		for i, r := range tv {
			out[i] = r
		}
		return out
	case []any:
		return tv
	case []string:
		out := make([]any, len(tv))
		for i, s := range tv {
			out[i] = s
		}
		return out
	case nil:
		return nil
	}
	return []any{v}
}

func indentation(t *Table, col *Column, rec models.Record) string {
	if !col.TreeNode || !t.treeMode() {
		return ""
	}
	return strings.Repeat(treeIndent, queryset.Depth(rec))
}

func renderText(_ context.Context, t *Table, col *Column, rec models.Record) Cell {
	s := plainText(lookup(col, rec))
	if s == "" {
		return placeholderCell()
	}
	return Cell{Text: s, HTML: template.HTML(indentation(t, col, rec) + escape(s))}
}

func renderLink(_ context.Context, t *Table, col *Column, rec models.Record) Cell {
	v := lookup(col, rec)
	target := rec
	label := ""
	if related, ok := v.(models.Record); ok {
		if models.IsNilRecord(related) {
			return placeholderCell()
		}
		target = related
		label = models.Display(related)
	} else {
		label = plainText(v)
	}
	if label == "" {
		return placeholderCell()
	}
	href := t.urls.ObjectURL(target.Model().ContentType(), target.PK())
	return Cell{Text: label, HTML: template.HTML(indentation(t, col, rec) + anchor(href, escape(label)))}
}

func renderToggle(_ context.Context, _ *Table, _ *Column, rec models.Record) Cell {
	id := rec.PK().String()
	return Cell{Text: id, HTML: template.HTML(`<input type="checkbox" name="pk" value="` + escape(id) + `" />`)}
}

func booleanCell(v bool) Cell {
	if v {
		return Cell{Text: "True", HTML: booleanTrue}
	}
	return Cell{Text: "False", HTML: booleanFalse}
}

func renderBoolean(_ context.Context, _ *Table, col *Column, rec models.Record) Cell {
	return booleanCell(truthy(lookup(col, rec)))
}

func renderLinkedCount(_ context.Context, t *Table, col *Column, rec models.Record) Cell {
	n, ok := count(lookup(col, rec))
	if !ok {
		return placeholderCell()
	}
	text := strconv.Itoa(n)
	if n == 0 {
		return Cell{Text: text, HTML: template.HTML(text)}
	}
	query := url.Values{}
	for param, accessor := range col.URLParams {
		v, _ := models.Lookup(rec, accessor)
		if s, ok := models.StringValue(v); ok {
			query.Set(param, s)
		}
	}
	return Cell{Text: text, HTML: template.HTML(anchor(t.urls.Reverse(col.ViewName, query), text))}
}

func renderContentTypes(_ context.Context, _ *Table, col *Column, rec models.Record) Cell {
	var cts []models.ContentType
	var labels []string
	for _, item := range members(lookup(col, rec)) {
		r, ok := item.(models.Record)
		if !ok || models.IsNilRecord(r) {
			if s := plainText(item); s != "" {
				labels = append(labels, s)
			}
			continue
		}
		app, _ := r.Attr("app_label")
		model, _ := r.Attr("model")
		ct := models.ContentType{AppLabel: plainText(app), Model: plainText(model)}
		cts = append(cts, ct)
	}
	if col.SortContentTypes {
		sort.SliceStable(cts, func(i, j int) bool {
			if cts[i].AppLabel != cts[j].AppLabel {
				return cts[i].AppLabel < cts[j].AppLabel
			}
			return cts[i].Model < cts[j].Model
		})
		sort.Strings(labels)
	}
	all := make([]string, 0, len(cts)+len(labels))
	for _, ct := range cts {
		all = append(all, ct.AppLabeledName())
	}
	all = append(all, labels...)
	if len(all) == 0 {
		return placeholderCell()
	}
	text := strings.Join(all, ", ")
	return Cell{Text: text, HTML: template.HTML(escape(truncateWords(text, col.TruncateWords)))}
}

// truncateWords keeps the first n words of s, marking a cut with an ellipsis. n <= 0
// keeps everything.
func truncateWords(s string, n int) string {
	if n <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) <= n {
		return s
	}
	return strings.Join(words[:n], " ") + "…"
}

func chip(label, color string) string {
	if hexColorRegex.MatchString(color) {
		return `<span class="badge" style="background-color: #` + strings.ToLower(color) + `">` + escape(label) + `</span>`
	}
	return `<span class="badge">` + escape(label) + `</span>`
}

func renderTags(_ context.Context, _ *Table, col *Column, rec models.Record) Cell {
	var names, chips []string
	for _, item := range members(lookup(col, rec)) {
		r, ok := item.(models.Record)
		if !ok || models.IsNilRecord(r) {
			if s := plainText(item); s != "" {
				names = append(names, s)
				chips = append(chips, chip(s, ""))
			}
			continue
		}
		name := models.Display(r)
		color, _ := r.Attr("color")
		names = append(names, name)
		chips = append(chips, chip(name, plainText(color)))
	}
	if len(chips) == 0 {
		return placeholderCell()
	}
	return Cell{Text: strings.Join(names, ", "), HTML: template.HTML(strings.Join(chips, " "))}
}

func renderColor(_ context.Context, _ *Table, col *Column, rec models.Record) Cell {
	color := plainText(lookup(col, rec))
	if !hexColorRegex.MatchString(color) {
		return placeholderCell()
	}
	color = strings.ToLower(color)
	return Cell{
		Text: color,
		HTML: template.HTML(`<span class="color-label" style="background-color: #` + color + `">&nbsp;</span>`),
	}
}

var buttonMarkup = map[string]struct{ suffix, class, title, icon string }{
	ButtonEdit:   {"edit/", "btn btn-xs btn-warning", "Edit", "mdi-pencil"},
	ButtonDelete: {"delete/", "btn btn-xs btn-danger", "Delete", "mdi-trash-can-outline"},
}

func renderActions(_ context.Context, t *Table, col *Column, rec models.Record) Cell {
	base := t.urls.ObjectURL(rec.Model().ContentType(), rec.PK())
	var parts []string
	for _, name := range col.Buttons {
		b, ok := buttonMarkup[name]
		if !ok {
			continue
		}
		parts = append(parts, anchor(base+b.suffix, `<i class="mdi `+b.icon+`"></i>`, "class", b.class, "title", b.title))
	}
	return Cell{HTML: template.HTML(strings.Join(parts, " "))}
}

func customFieldValue(rec models.Record, key string) any {
	v, ok := rec.Attr(models.CustomFieldDataAttr)
	if !ok {
		return nil
	}
	data, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return data[key]
}

func renderCustomField(ctx context.Context, _ *Table, col *Column, rec models.Record) Cell {
	cf := col.CustomField
	v := customFieldValue(rec, cf.Key)
	if v == nil || v == "" {
		return placeholderCell()
	}
	switch cf.Type {
	case extras.CustomFieldTypeBoolean:
		return booleanCell(truthy(v))
	case extras.CustomFieldTypeSelect:
		s := plainText(v)
		return Cell{Text: s, HTML: template.HTML(`<span class="label label-default">` + escape(s) + `</span>`)}
	case extras.CustomFieldTypeMultiSelect:
		var texts, chips []string
		for _, item := range members(v) {
			s := plainText(item)
			if s == "" {
				continue
			}
			texts = append(texts, s)
			chips = append(chips, `<span class="label label-default">`+escape(s)+`</span>`)
		}
		if len(chips) == 0 {
			return placeholderCell()
		}
		return Cell{Text: strings.Join(texts, ", "), HTML: template.HTML(strings.Join(chips, " "))}
	case extras.CustomFieldTypeURL:
		s := plainText(v)
		return Cell{Text: s, HTML: template.HTML(anchor(s, escape(s)))}
	case extras.CustomFieldTypeJSON:
		s, err := canonicalJSON(v)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("custom_field", cf.Key).Msg("unable to render json custom field")
			return placeholderCell()
		}
		return Cell{Text: s, HTML: template.HTML(`<code>` + escape(s) + `</code>`)}
	}
	s := plainText(v)
	return Cell{Text: s, HTML: template.HTML(escape(s))}
}

func canonicalJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	canonical, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return "", err
	}
	return string(canonical), nil
}

func renderComputedField(ctx context.Context, _ *Table, col *Column, rec models.Record) Cell {
	s, err := col.ComputedField.Render(ctx, rec)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("computed_field", col.ComputedField.Key).Str("record", rec.PK().String()).Msg("computed field render failed")
		return placeholderCell()
	}
	if s == "" {
		return placeholderCell()
	}
	return Cell{Text: s, HTML: template.HTML(escape(s))}
}

func renderRelationship(ctx context.Context, t *Table, col *Column, rec models.Record) Cell {
	if t.registry == nil {
		return placeholderCell()
	}
	rel := col.Relationship
	ct := rec.Model().ContentType()
	var assocs []*extras.Association
	for _, a := range t.registry.AssociationsFor(ct, rec.PK()) {
		if a.Relationship != rel.Key {
			continue
		}
		if col.Side != extras.SidePeer && !a.Involves(col.Side, ct, rec.PK()) {
			continue
		}
		assocs = append(assocs, a)
	}
	if len(assocs) == 0 {
		return placeholderCell()
	}

	peerType, peerID := assocs[0].Peer(rec.PK())
	var peerModel *models.Model
	if reg := rec.Model().Registry(); reg != nil {
		peerModel, _ = reg.ForContentType(peerType)
	}

	if rel.HasMany(col.Side.Opposite()) {
		noun := peerType.Model
		if peerModel != nil {
			noun = peerModel.Verbose()
			if len(assocs) > 1 {
				noun = peerModel.VerbosePlural()
			}
		}
		text := fmt.Sprintf("%d %s", len(assocs), noun)
		query := url.Values{}
		query.Set("relationship", rel.Key)
		query.Set(string(col.Side)+"_id", rec.PK().String())
		return Cell{Text: text, HTML: template.HTML(anchor(t.urls.Reverse(AssociationListView, query), escape(text)))}
	}

	label := peerType.Model + " " + peerID.String()
	if peerModel != nil {
		label = peerModel.Verbose() + " " + peerID.String()
	}
	if t.objects != nil {
		peer, err := t.objects(ctx, peerType, peerID)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("relationship", rel.Key).Str("peer", peerID.String()).Msg("unable to load relationship peer")
		} else if !models.IsNilRecord(peer) {
			label = models.Display(peer)
		}
	}
	href := t.urls.ObjectURL(peerType, peerID)
	return Cell{Text: label, HTML: template.HTML(anchor(href, escape(label)))}
}
