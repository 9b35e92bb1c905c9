package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/tabview/internal/core"
	"github.com/JonMunkholm/tabview/internal/logging"
	"github.com/JonMunkholm/tabview/internal/render"
)

// sessionResponse describes a session's selection, columns and View.
type sessionResponse struct {
	ID        string            `json:"id"`
	FileName  string            `json:"file_name"`
	Created   time.Time         `json:"created"`
	Rows      int               `json:"rows"`
	ViewRows  int               `json:"view_rows"`
	Columns   []core.ColumnMeta `json:"columns"`
	Selection core.Selection    `json:"selection"`
	Options   filterOptions     `json:"options"`
	Header    []string          `json:"header"`
	Preview   [][]string        `json:"preview"`
	Chart     chartInfo         `json:"chart"`
}

// filterOptions lists the choices each filter control offers.
type filterOptions struct {
	Categorical map[string]categoryOptions `json:"categorical"`
	Numeric     map[string]numericBounds   `json:"numeric"`
}

type categoryOptions struct {
	Values     []string `json:"values"`
	HasMissing bool     `json:"has_missing"`
}

// numericBounds holds formatted bounds; empty when the column has no values.
type numericBounds struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

type chartInfo struct {
	Kind      core.ChartKind `json:"kind"`
	Label     string         `json:"label"`
	MediaType string         `json:"media_type"`
	URL       string         `json:"url"`
	Warning   string         `json:"warning,omitempty"`
	Code      string         `json:"code,omitempty"`
}

// statusResponse reports server load.
type statusResponse struct {
	Sessions int                    `json:"sessions"`
	Uploads  core.LoadLimiterStatus `json:"uploads"`
}

// session resolves the {id} route parameter, writing the error response
// when the session does not exist.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*core.Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return nil, false
	}
	return sess, true
}

// handleStatus reports live sessions and parse slots.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Sessions: s.sessions.Len(),
		Uploads:  s.limiter.Status(),
	})
}

// handleGetSession returns the session state.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	resp, err := s.describeSession(sess)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleUpdateSelection replaces the session's selection with the JSON body.
func (s *Server) handleUpdateSelection(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var sel core.Selection
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sel); err != nil {
		err = fmt.Errorf("%w: %v", errBadBody, err)
		respondError(w, r, err, statusFor(err))
		return
	}
	if sel.Chart != "" {
		kind, err := core.ParseChartKind(string(sel.Chart))
		if err != nil {
			respondError(w, r, err, statusFor(err))
			return
		}
		sel.Chart = kind
	}

	if err := sess.UpdateSelection(sel); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	logging.WithFields(r.Context(), "session_id", sess.ID).Debug("selection updated",
		"chart", sel.Chart, "sort", sel.Sort.Column)

	resp, err := s.describeSession(sess)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleChart renders the selected chart. Charts that cannot be drawn from
// the current View answer 422 with the warning message.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	cmd, err := sess.Chart()
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	body, mediaType, err := render.Bytes(cmd, s.chart)
	if err != nil {
		if errors.Is(err, render.ErrNothingToDraw) {
			err = &core.ChartError{Kind: cmd.Kind, Err: fmt.Errorf("%w: %v", core.ErrNoChartRows, err)}
		}
		respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// handleExport downloads the View as filtered_data.csv. ?scope=chart
// exports the Chart Input instead.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	scope, err := core.ParseExportScope(r.URL.Query().Get("scope"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	data, err := sess.Export(scope)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", core.ExportMIME+"; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", core.ExportFileName))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleDeleteSession discards a session.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.sessions.Delete(id) {
		respondError(w, r, core.ErrSessionNotFound, http.StatusNotFound)
		return
	}
	logging.WithFields(r.Context(), "session_id", id).Info("session deleted")
	w.WriteHeader(http.StatusNoContent)
}

// describeSession builds the API view of a session from one snapshot.
func (s *Server) describeSession(sess *core.Session) (sessionResponse, error) {
	snap, err := sess.Snapshot()
	if err != nil {
		return sessionResponse{}, err
	}
	ds := snap.Dataset

	opts := filterOptions{
		Categorical: make(map[string]categoryOptions),
		Numeric:     make(map[string]numericBounds),
	}
	for _, name := range ds.TextColumns() {
		values, hasMissing, _ := core.DistinctValues(ds, name)
		opts.Categorical[name] = categoryOptions{Values: values, HasMissing: hasMissing}
	}
	for _, name := range ds.NumericColumns() {
		opts.Numeric[name] = numericRange(ds, snap.Selection, name)
	}

	return sessionResponse{
		ID:        sess.ID,
		FileName:  snap.FileName,
		Created:   sess.Created,
		Rows:      ds.NumRows(),
		ViewRows:  snap.View.NumRows(),
		Columns:   ds.Describe(),
		Selection: snap.Selection,
		Options:   opts,
		Header:    snap.View.ColumnNames(),
		Preview:   snap.View.Head(snap.Selection.PreviewLimit()),
		Chart:     s.chartInfo(sess, snap.Selection, "/api"),
	}, nil
}

// numericRange formats the bounds the numeric filter defaults to for name.
func numericRange(ds *core.Dataset, sel core.Selection, name string) numericBounds {
	lo, hi, ok, _ := core.NumericDomain(ds, sel, name)
	if !ok {
		return numericBounds{}
	}
	return numericBounds{Min: core.FormatNumber(lo), Max: core.FormatNumber(hi)}
}

// chartInfo describes where to fetch the chart and whether it can be drawn.
// prefix is "/api" for API clients and "" for the dashboard.
func (s *Server) chartInfo(sess *core.Session, sel core.Selection, prefix string) chartInfo {
	info := chartInfo{
		Kind:      sel.Chart,
		Label:     sel.Chart.Label(),
		MediaType: render.MediaType(sel.Chart),
		URL:       fmt.Sprintf("%s/session/%s/chart?v=%d", prefix, sess.ID, time.Now().UnixNano()),
	}
	if _, err := sess.Chart(); err != nil {
		msg := core.MapError(err)
		info.Warning, info.Code = msg.Message, msg.Code
	}
	return info
}
