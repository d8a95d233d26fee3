package main

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/charmbracelet/log"

	"github.com/oaktreenum/peptoid-msa/internal/export"
	"github.com/oaktreenum/peptoid-msa/internal/fasta"
	"github.com/oaktreenum/peptoid-msa/internal/palette"
	"github.com/oaktreenum/peptoid-msa/internal/render"
	"github.com/oaktreenum/peptoid-msa/internal/session"
)

const cookieName = "peptoid_msa_session"

type app struct {
	store  *session.Store
	tmpl   *template.Template
	logger *log.Logger
	render render.Options
	fasta  fasta.WriteOptions
}

// page is the data behind base.html and the msa.html fragment.
type page struct {
	Input    string
	Strict   bool
	Entries  []session.Entry
	Blank    palette.Color
	ColorMap []palette.Entry
	Fallback palette.Color
	View     session.View
	Figure   template.HTML
	Formats  []export.Format
	Error    string
}

func isHX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true" || r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

func postOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

// statusOf maps a fault tag to an HTTP status.
func statusOf(err error) int {
	switch ftag.Get(err) {
	case ftag.InvalidArgument:
		return http.StatusBadRequest
	case ftag.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// issue is the message shown to the user for err.
func issue(err error) string {
	if msg := fmsg.GetIssue(err); msg != "" {
		return msg
	}
	return "Something went wrong."
}

// sessionID returns the caller's session, starting a new one (and setting the
// cookie) when the cookie is missing or the session expired.
func (a *app) sessionID(w http.ResponseWriter, r *http.Request) string {
	var old string
	if c, err := r.Cookie(cookieName); err == nil {
		old = c.Value
	}
	id, created := a.store.Ensure(old)
	if created {
		http.SetCookie(w, &http.Cookie{Name: cookieName, Value: id, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
		a.logger.Debug("session started", "id", id, "replaced", old != "")
	}
	return id
}

// snapshot builds the page for s. Callers hold the session.
func (a *app) snapshot(s *session.Session) page {
	m := s.Mapping()
	p := page{
		Input:    s.Input,
		Strict:   s.Policy == fasta.Strict,
		Entries:  s.Entries(),
		Blank:    s.Blank,
		ColorMap: m.Entries(),
		Fallback: m.Fallback(),
		View:     s.View(),
		Formats:  export.Formats,
	}
	if p.View.Err != nil {
		p.Error = issue(p.View.Err)
		return p
	}
	for _, w := range p.View.Warnings {
		a.logger.Debug("parse warning", "session", s.ID, "line", w.Line, "kind", w.Kind)
	}
	if p.View.HasGrid() {
		var buf bytes.Buffer
		if err := render.SVG(&buf, p.View.Grid, p.View.Layout, a.render); err != nil {
			a.logger.Error("svg preview failed", "err", err)
			p.Error = "The preview could not be drawn."
			return p
		}
		svg := buf.String()
		if i := strings.Index(svg, "<svg"); i > 0 {
			svg = svg[i:]
		}
		p.Figure = template.HTML(svg)
	}
	return p
}

func (a *app) execute(w http.ResponseWriter, name string, p page, status int) {
	var buf bytes.Buffer
	if err := a.tmpl.ExecuteTemplate(&buf, name, p); err != nil {
		a.logger.Error("template failed", "template", name, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// respond renders the page (or the MSA fragment for HX requests) after fn ran
// on the session. An error from fn is shown on the page with a matching status.
func (a *app) respond(w http.ResponseWriter, r *http.Request, fn func(*session.Session) error) {
	id := a.sessionID(w, r)
	var p page
	var fnErr error
	err := a.store.With(id, func(s *session.Session) error {
		fnErr = fn(s)
		p = a.snapshot(s)
		return nil
	})
	if err != nil {
		http.Error(w, issue(err), statusOf(err))
		return
	}
	status := http.StatusOK
	if fnErr != nil {
		status = statusOf(fnErr)
		p.Error = issue(fnErr)
		a.logger.Warn("request rejected", "uri", r.URL.Path, "err", fnErr)
	}
	name := "base.html"
	if isHX(r) && r.URL.Path == "/msa" {
		name = "msa.html"
	}
	a.execute(w, name, p, status)
}

func indexHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		a.respond(w, r, func(*session.Session) error { return nil })
	}
}

func msaHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.respond(w, r, func(s *session.Session) error {
			s.SetInput(r.FormValue("input"))
			s.Policy = fasta.Lenient
			if r.FormValue("strict") != "" {
				s.Policy = fasta.Strict
			}
			return nil
		})
	}
}

// applyColors applies every submitted row of the color table. Rows with an
// invalid color are left unchanged and the first problem is returned.
func applyColors(s *session.Session, form url.Values) error {
	var first error
	for _, e := range s.Entries() {
		if _, ok := form["color_"+e.ID]; !ok {
			continue
		}
		err := s.UpdateEntry(e.ID, form.Get("codes_"+e.ID), form.Get("prop_"+e.ID), form.Get("color_"+e.ID))
		if err != nil && first == nil {
			first = err
		}
	}
	if blank := form.Get("blank_color"); blank != "" {
		if err := s.SetBlank(blank); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func colorsHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		a.respond(w, r, func(s *session.Session) error {
			return applyColors(s, r.PostForm)
		})
	}
}

func addColorHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.respond(w, r, func(s *session.Session) error {
			_, err := s.AddEntry(r.FormValue("codes"), r.FormValue("property"), r.FormValue("color"))
			return err
		})
	}
}

func deleteColorHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		if len(parts) < 4 || parts[3] == "" {
			http.Error(w, "missing entry", http.StatusBadRequest)
			return
		}
		id := parts[3]
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		// the delete buttons live in the color table form, so edits made to
		// the other rows arrive with the request
		a.respond(w, r, func(s *session.Session) error {
			applied := applyColors(s, r.PostForm)
			if err := s.DeleteEntry(id); err != nil {
				return err
			}
			return applied
		})
	}
}

func resetColorsHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.respond(w, r, func(s *session.Session) error {
			s.ResetColors()
			return nil
		})
	}
}

// resetHandler tears the session down; the next request starts a fresh one.
func resetHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(cookieName); err == nil {
			a.store.Delete(c.Value)
		}
		http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func exportHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		if len(parts) < 3 || parts[2] == "" {
			http.Error(w, "missing format", http.StatusBadRequest)
			return
		}
		format, err := export.ParseFormat(parts[2])
		if err != nil {
			http.Error(w, export.Issue(err), statusOf(err))
			return
		}
		id := a.sessionID(w, r)
		var data []byte
		err = a.store.With(id, func(s *session.Session) error {
			v := s.View()
			if v.Err != nil {
				return v.Err
			}
			var err error
			data, err = export.Bytes(export.Job{
				Format:  format,
				Grid:    v.Grid,
				Layout:  v.Layout,
				Records: v.Records,
				Render:  a.render,
				FASTA:   a.fasta,
			})
			return err
		})
		if err != nil {
			a.logger.Warn("export failed", "format", format, "err", err)
			http.Error(w, export.Issue(err), statusOf(err))
			return
		}
		name := export.Filename(r.URL.Query().Get("name"), format)
		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
		_, _ = w.Write(data)
		a.logger.Info("exported", "format", format, "file", name, "bytes", len(data))
	}
}

type cellJSON struct {
	Code  string `json:"code,omitempty"`
	Gap   bool   `json:"gap,omitempty"`
	Color string `json:"color"`
}

type rowJSON struct {
	Label string     `json:"label"`
	Cells []cellJSON `json:"cells"`
}

type legendJSON struct {
	Property string `json:"property"`
	Color    string `json:"color"`
}

type gridJSON struct {
	Columns  int          `json:"columns"`
	Rows     []rowJSON    `json:"rows"`
	Legend   []legendJSON `json:"legend"`
	Width    int          `json:"width,omitempty"`
	Height   int          `json:"height,omitempty"`
	Cell     int          `json:"cell_size,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
	Prompt   string       `json:"prompt,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func apiGridHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := a.sessionID(w, r)
		var v session.View
		err := a.store.With(id, func(s *session.Session) error {
			v = s.View()
			return v.Err
		})
		if err != nil {
			writeJSON(w, statusOf(err), map[string]string{"error": issue(err)})
			return
		}
		out := gridJSON{Rows: []rowJSON{}, Legend: []legendJSON{}, Prompt: v.Prompt}
		for _, warn := range v.Warnings {
			out.Warnings = append(out.Warnings, warn.String())
		}
		if g := v.Grid; g != nil {
			out.Columns = g.Columns
			out.Width, out.Height, out.Cell = v.Layout.Width, v.Layout.Height, v.Layout.CellWidth
			for _, row := range g.Rows {
				rj := rowJSON{Label: row.Label, Cells: make([]cellJSON, len(row.Cells))}
				for i, c := range row.Cells {
					rj.Cells[i] = cellJSON{Code: c.Code, Gap: c.Gap, Color: c.Color.String()}
				}
				out.Rows = append(out.Rows, rj)
			}
			for _, e := range g.Legend {
				out.Legend = append(out.Legend, legendJSON{Property: e.Property, Color: e.Color.String()})
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type paletteJSON struct {
	Codes   map[string]string `json:"codes"`
	Default string            `json:"default"`
	Blank   string            `json:"blank"`
	Legend  []legendJSON      `json:"legend"`
	Entries []entryJSON       `json:"entries"`
}

type entryJSON struct {
	ID       string `json:"id"`
	Codes    string `json:"codes"`
	Property string `json:"property,omitempty"`
	Color    string `json:"color"`
	Standard bool   `json:"standard"`
}

func apiPaletteHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := a.sessionID(w, r)
		var out paletteJSON
		err := a.store.With(id, func(s *session.Session) error {
			m := s.Mapping()
			out = paletteJSON{
				Codes:   make(map[string]string, m.Len()),
				Default: m.Fallback().String(),
				Blank:   m.Blank().String(),
				Legend:  []legendJSON{},
			}
			for _, e := range m.Entries() {
				out.Codes[e.Code] = e.Color.String()
			}
			for _, e := range m.Legend() {
				out.Legend = append(out.Legend, legendJSON{Property: e.Property, Color: e.Color.String()})
			}
			for _, e := range s.Entries() {
				out.Entries = append(out.Entries, entryJSON{ID: e.ID, Codes: e.Codes, Property: e.Property, Color: e.Color.String(), Standard: e.Standard})
			}
			return nil
		})
		if err != nil {
			writeJSON(w, statusOf(err), map[string]string{"error": issue(err)})
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
