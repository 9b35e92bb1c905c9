package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/tabview/internal/core"
	"github.com/JonMunkholm/tabview/internal/logging"
)

// uploadResponse is returned when an upload creates a session.
type uploadResponse struct {
	ID       string            `json:"id"`
	FileName string            `json:"file_name"`
	Rows     int               `json:"rows"`
	Columns  []core.ColumnMeta `json:"columns"`
	URL      string            `json:"url"`
}

// handleUpload parses a multipart file into a new session.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sess, err := s.createSession(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	ds := sess.Dataset()
	writeJSON(w, http.StatusCreated, uploadResponse{
		ID:       sess.ID,
		FileName: sess.FileName(),
		Rows:     ds.NumRows(),
		Columns:  ds.Describe(),
		URL:      "/session/" + sess.ID,
	})
}

// handleUploadForm is the browser form variant of handleUpload. It redirects
// to the new dashboard.
func (s *Server) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	sess, err := s.createSession(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	http.Redirect(w, r, "/session/"+sess.ID, http.StatusSeeOther)
}

// createSession reads the "file" form field, parses it under the load
// limiter and registers a session for the result.
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) (*core.Session, error) {
	name, data, err := s.readUpload(w, r)
	if err != nil {
		return nil, err
	}

	log := logging.WithFields(r.Context(), "file", name, "bytes", len(data))
	start := time.Now()

	ds, err := s.limiter.Load(r.Context(), data, name)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Warn("load failed", "error", err)
		}
		return nil, err
	}

	sess, err := s.sessions.Create(name, ds)
	if err != nil {
		return nil, err
	}

	log.Info("dataset loaded",
		"session_id", sess.ID,
		"rows", ds.NumRows(),
		"columns", ds.NumColumns(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return sess, nil
}

// readUpload returns the uploaded file name and contents, enforcing the
// configured size limit.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	// Memory threshold only; larger parts spill to disk until MaxBytesReader stops them.
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) || strings.Contains(err.Error(), "request body too large") {
			return "", nil, fmt.Errorf("%w: limit is %d bytes", errFileTooBig, maxSize)
		}
		return "", nil, fmt.Errorf("%w: %v", errNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, errNoFile
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return header.Filename, data, nil
}
