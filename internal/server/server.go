package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/sseedwings2026/0114-shortform/internal/capture"
	"github.com/sseedwings2026/0114-shortform/internal/config"
	"github.com/sseedwings2026/0114-shortform/internal/player"
)

// Server exposes the playback engine to a UI: play/pause/seek/export plus a
// read-only current-time stream for progress display.
type Server struct {
	player   *player.Player
	recorder *capture.Recorder
	cfg      *config.Config
	upgrader websocket.Upgrader
}

func New(p *player.Player, rec *capture.Recorder, cfg *config.Config) *Server {
	return &Server{
		player:   p,
		recorder: rec,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler builds the route table with CORS enabled for browser UIs.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/playback/play", s.handlePlay).Methods("POST")
	r.HandleFunc("/api/playback/pause", s.handlePause).Methods("POST")
	r.HandleFunc("/api/playback/seek", s.handleSeek).Methods("POST")
	r.HandleFunc("/api/playback/state", s.handleState).Methods("GET")
	r.HandleFunc("/api/playback/time", s.handleTimeStream).Methods("GET")
	r.HandleFunc("/api/export", s.handleExport).Methods("POST")

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}).Handler(r)
}

func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // export and websocket responses are long-lived
	}
	fmt.Printf("[*] Playback API на %s\n", addr)
	return srv.ListenAndServe()
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	if err := s.player.Play(); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	s.writeState(w)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.player.Pause()
	s.writeState(w)
}

func (s *Server) handleSeek(w http.ResponseWriter, r *http.Request) {
	t, err := strconv.ParseFloat(r.URL.Query().Get("t"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid seek position: %w", err))
		return
	}
	s.player.Seek(t)
	s.writeState(w)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeState(w)
}

// handleExport captures one full playback pass into a video file. At most one
// capture runs at a time; concurrent requests get 409 and the running capture
// is unaffected.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap := s.player.Snapshot()
	if snap == nil {
		writeError(w, http.StatusConflict, player.ErrNoMedia)
		return
	}

	name := fmt.Sprintf("%s_%s.mp4", slug(snap.Title), uuid.New().String()[:8])
	outPath := filepath.Join(filepath.Dir(s.cfg.OutputVideo), name)

	bounds := imageBounds(s.cfg)
	opts := capture.Options{
		Width:       bounds.w,
		Height:      bounds.h,
		FPS:         s.cfg.FPS,
		AudioPath:   snap.AudioPath,
		OutputPath:  outPath,
		Encoder:     s.cfg.VideoEncoder,
		Quality:     s.cfg.Quality,
		MaxDuration: snap.Duration,
	}

	path, err := s.player.Export(s.recorder, opts)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, capture.ErrActive) {
			status = http.StatusConflict
		}
		writeError(w, status, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

// handleTimeStream upgrades to a websocket and pushes playback positions as
// they are rendered.
func (s *Server) handleTimeStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[!] websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	times, cancel := s.player.SubscribeTime()
	defer cancel()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-times:
			if !ok {
				return
			}
			if err := conn.WriteJSON(map[string]float64{"t": t}); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeState(w http.ResponseWriter) {
	snap := s.player.Snapshot()
	state := map[string]interface{}{
		"state":       s.player.State().String(),
		"currentTime": s.player.CurrentTime(),
	}
	if snap != nil {
		state["duration"] = snap.Duration
		state["title"] = snap.Title
		state["sceneCount"] = len(snap.Scenes)
	}
	writeJSON(w, http.StatusOK, state)
}

type frameBounds struct{ w, h int }

func imageBounds(cfg *config.Config) frameBounds {
	return frameBounds{w: cfg.Width, h: cfg.Height}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func slug(title string) string {
	if title == "" {
		return "shortform"
	}
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == ' ' || r == '-' || r == '_':
			return '_'
		default:
			return -1
		}
	}, title)
	if cleaned == "" {
		return "shortform"
	}
	return cleaned
}
