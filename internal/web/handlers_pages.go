package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/JonMunkholm/tabview/internal/core"
	"github.com/JonMunkholm/tabview/internal/logging"
	"github.com/JonMunkholm/tabview/internal/web/templates"
)

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.UploadPage(s.cfg.Upload.MaxFileSize).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render upload page", "error", err)
	}
}

// handleDashboard renders the dashboard for a session.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	params, err := s.dashboardParams(sess)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.DashboardPage(params).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render dashboard", "error", err)
	}
}

// handleSelectionForm applies the dashboard controls. HTMX requests get the
// refreshed dashboard fragment; plain form posts are redirected back.
// A rejected selection keeps the previous one and is shown inline.
func (s *Server) handleSelectionForm(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		err = fmt.Errorf("%w: %v", errBadBody, err)
		respondError(w, r, err, statusFor(err))
		return
	}

	sel, err := selectionFromForm(sess.Selection(), sess.Dataset(), r.PostForm)
	if err == nil {
		err = sess.UpdateSelection(sel)
	}
	var rejected *core.UserMessage
	if err != nil {
		if !core.IsConfigurationError(err) {
			respondError(w, r, err, statusFor(err))
			return
		}
		msg := core.MapError(err)
		rejected = &msg
		logging.WithFields(r.Context(), "session_id", sess.ID).Warn("selection rejected", "error", err)
	}

	if !isHTMX(r) {
		http.Redirect(w, r, "/session/"+sess.ID, http.StatusSeeOther)
		return
	}

	params, perr := s.dashboardParams(sess)
	if perr != nil {
		respondError(w, r, perr, statusFor(perr))
		return
	}
	params.Error = rejected
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Dashboard(params).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render dashboard", "error", err)
	}
}

// dashboardParams collects everything the dashboard template shows.
func (s *Server) dashboardParams(sess *core.Session) (templates.DashboardParams, error) {
	snap, err := sess.Snapshot()
	if err != nil {
		return templates.DashboardParams{}, err
	}
	ds, sel := snap.Dataset, snap.Selection

	p := templates.DashboardParams{
		SessionID:      sess.ID,
		FileName:       snap.FileName,
		Selection:      sel,
		TextColumns:    ds.TextColumns(),
		NumericColumns: ds.NumericColumns(),
		AllColumns:     ds.ColumnNames(),
		Header:         snap.View.ColumnNames(),
		Rows:           snap.View.Head(sel.PreviewLimit()),
		TotalRows:      ds.NumRows(),
		ViewRows:       snap.View.NumRows(),
		ExportURL:      "/session/" + sess.ID + "/export",
	}
	if sel.Categorical != nil {
		p.CategoryValues, p.HasMissing, _ = core.DistinctValues(ds, sel.Categorical.Column)
	}
	if sel.Numeric != nil {
		b := numericRange(ds, sel, sel.Numeric.Column)
		p.NumericMin, p.NumericMax = b.Min, b.Max
	}

	info := s.chartInfo(sess, sel, "")
	p.ChartURL = info.URL
	p.Interactive = sel.Chart.Interactive()
	p.ChartWarning = info.Warning
	return p, nil
}

// selectionFromForm builds a Selection from dashboard form values. Fields
// absent from the form keep their current value. Choosing a different
// categorical column starts with every value selected.
func selectionFromForm(cur core.Selection, ds *core.Dataset, form url.Values) (core.Selection, error) {
	sel := cur.Clone()

	if col, ok := formValue(form, "sort_column"); ok && col != "" {
		sel.Sort.Column = col
	}
	if dir, ok := formValue(form, "sort_dir"); ok && dir != "" {
		sel.Sort.Dir = dir
	}
	if v, ok := formValue(form, "chart"); ok && v != "" {
		kind, err := core.ParseChartKind(v)
		if err != nil {
			return cur, err
		}
		sel.Chart = kind
	}
	if v, ok := formValue(form, "x"); ok {
		sel.X = v
	}
	if v, ok := formValue(form, "y"); ok {
		sel.Y = v
	}
	if v, ok := formValue(form, "color"); ok {
		sel.Color = v
	}
	sel.ShowFull = form.Get("show_full") == "true"

	if col, ok := formValue(form, "categorical_column"); ok {
		switch {
		case col == "":
			sel.Categorical = nil
		case cur.Categorical == nil || cur.Categorical.Column != col:
			f, err := core.CategoricalDefaults(ds, col)
			if err != nil {
				return cur, err
			}
			sel.Categorical = f
		default:
			sel.Categorical = &core.CategoricalFilter{
				Column:         col,
				Values:         form["categorical_values"],
				IncludeMissing: form.Get("include_missing") == "true",
			}
		}
	}

	if col, ok := formValue(form, "numeric_column"); ok {
		switch {
		case col == "":
			sel.Numeric = nil
		case cur.Numeric == nil || cur.Numeric.Column != col:
			sel.Numeric = &core.NumericFilter{Column: col}
		default:
			f := &core.NumericFilter{Column: col}
			var err error
			if f.Min, err = parseBound(form, "numeric_min", col); err != nil {
				return cur, err
			}
			if f.Max, err = parseBound(form, "numeric_max", col); err != nil {
				return cur, err
			}
			sel.Numeric = f
		}
	}
	return sel, nil
}

func formValue(form url.Values, key string) (string, bool) {
	v, ok := form[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return strings.TrimSpace(v[0]), true
}

// parseBound reads an optional range bound; empty means unset.
func parseBound(form url.Values, key, column string) (*float64, error) {
	v, _ := formValue(form, key)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		field := strings.Replace(key, "_", ".", 1)
		return nil, &core.ConfigurationError{Field: field, Column: column, Err: fmt.Errorf("invalid number %q", v)}
	}
	return &f, nil
}
