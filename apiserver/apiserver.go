// Package apiserver exposes the player over HTTP: track upload, the note
// timeline, single rendered frames and the control toggles.
package apiserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"pianorain/app"
	"pianorain/logger"
	"pianorain/timeline"
	"pianorain/visualizer"
)

const (
	maxUpload     = 32 << 20
	maxFrameSize  = 4096
	defaultWidth  = 1280
	defaultHeight = 720
)

// Player is the part of *app.App the server drives.
type Player interface {
	LoadReader(ctx context.Context, name string, r io.Reader) error
	Store() *timeline.Store
	Settings() visualizer.Settings
	TogglePlay() bool
	Seek(sec float64) error
	ToggleRecording(ctx context.Context) (string, error)
	ToggleOrientation() visualizer.Orientation
	Status() app.Status
}

type Server struct {
	player Player
	log    *slog.Logger
	router *mux.Router
}

func New(p Player) *Server {
	s := &Server{
		player: p,
		log:    logger.GetLogger(),
		router: mux.NewRouter(),
	}

	r := s.router
	r.HandleFunc("/status", s.Status).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/tracks", s.Upload).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/timeline", s.Timeline).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/frame.png", s.Frame).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/transport/{action:play|pause|toggle}", s.Transport).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/transport/seek", s.Seek).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/controls/record", s.Record).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/controls/orientation", s.Orientation).Methods(http.MethodPost, http.MethodOptions)
	r.Use(mux.CORSMethodMiddleware(r))

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// preflight sets the CORS origin and reports whether the request is done.
func preflight(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	return r.Method == http.MethodOptions
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	s.writeJSON(w, code, map[string]string{"error": err.Error()})
}

func (s *Server) Status(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	s.writeJSON(w, http.StatusOK, s.player.Status())
}

// Upload loads a track from a multipart "file" field or from the raw body,
// in which case the name query parameter selects the format.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)

	name := r.URL.Query().Get("name")
	var body io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		defer file.Close()
		name, body = header.Filename, file
	}
	if name == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("missing track name"))
		return
	}

	err := s.player.LoadReader(r.Context(), name, body)
	switch {
	case errors.Is(err, app.ErrUnsupportedInput):
		s.writeError(w, http.StatusUnsupportedMediaType, err)
		return
	case err != nil:
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, s.player.Status())
}

type timelineResponse struct {
	TrackID  string               `json:"trackId,omitempty"`
	Duration float64              `json:"duration"`
	Notes    []timeline.NoteEvent `json:"notes"`
}

func (s *Server) Timeline(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	loaded := s.player.Store().Loaded()
	notes := loaded.Timeline.Events()
	if notes == nil {
		notes = []timeline.NoteEvent{}
	}
	s.writeJSON(w, http.StatusOK, timelineResponse{
		TrackID:  loaded.TrackID,
		Duration: loaded.Timeline.Duration(),
		Notes:    notes,
	})
}

// Frame renders the current track at time t into a w by h PNG.
func (s *Server) Frame(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	q := r.URL.Query()
	t, err := floatParam(q.Get("t"), 0)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	width, err := sizeParam(q.Get("w"), defaultWidth)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	height, err := sizeParam(q.Get("h"), defaultHeight)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	notes := s.player.Store().Current().Events()
	f := visualizer.ComputeFrame(s.player.Settings(), notes, t, float64(width), float64(height))
	img := visualizer.RenderImage(f)

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		s.log.Warn("encode frame", "error", err)
		return
	}
	s.log.Debug("frame rendered", "t", t, "width", width, "height", height, "elapsed", time.Since(start))
}

func (s *Server) Transport(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	status := s.player.Status()
	if status.Phase != app.Ready.String() {
		s.writeError(w, http.StatusConflict, app.ErrNotReady)
		return
	}

	switch mux.Vars(r)["action"] {
	case "play":
		if !status.Playing {
			s.player.TogglePlay()
		}
	case "pause":
		if status.Playing {
			s.player.TogglePlay()
		}
	default:
		s.player.TogglePlay()
	}
	s.writeJSON(w, http.StatusOK, s.player.Status())
}

func (s *Server) Seek(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	sec, err := floatParam(r.URL.Query().Get("t"), 0)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.player.Seek(sec); err != nil {
		s.writeError(w, http.StatusConflict, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.player.Status())
}

type recordResponse struct {
	Output string     `json:"output,omitempty"`
	Status app.Status `json:"status"`
}

func (s *Server) Record(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	out, err := s.player.ToggleRecording(r.Context())
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, app.ErrNotReady) {
			code = http.StatusConflict
		}
		s.writeError(w, code, err)
		return
	}
	s.writeJSON(w, http.StatusOK, recordResponse{Output: out, Status: s.player.Status()})
}

func (s *Server) Orientation(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	s.player.ToggleOrientation()
	s.writeJSON(w, http.StatusOK, s.player.Status())
}

func floatParam(v string, def float64) (float64, error) {
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", v)
	}
	return f, nil
}

func sizeParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 || n > maxFrameSize {
		return 0, fmt.Errorf("invalid size %q", v)
	}
	return n, nil
}

// Run serves until ctx is done.
func Run(ctx context.Context, addr string, p Player) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           New(p),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.GetLogger().Info("running server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
