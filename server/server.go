// Package server exposes the Twilio webhook surface over HTTP.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"github.com/centro-otologico/voiceline/dialogue"
)

// AudioFetcher serves previously published audio from the /audio route.
// Nil when audio lives in an external bucket.
type AudioFetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// Server handles the Twilio voice webhooks
type Server struct {
	httpServer *http.Server
	controller *dialogue.Controller
	synth      dialogue.Synthesizer
	audio      AudioFetcher
}

// New creates the webhook server on the given port
func New(port int, controller *dialogue.Controller, synth dialogue.Synthesizer, audio AudioFetcher) *Server {
	s := &Server{
		controller: controller,
		synth:      synth,
		audio:      audio,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /twilio/voice", s.handleVoice)
	mux.HandleFunc("POST /twilio/confirm-end", s.handleConfirmEnd)
	mux.HandleFunc("POST /tts/test", s.handleTTSTest)
	mux.HandleFunc("GET /audio/{name}", s.handleAudio)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// Start begins listening for webhooks
func (s *Server) Start() error {
	log.Printf("📞 Voice webhook server starting on %s", s.httpServer.Addr)
	log.Printf("📡 Voice endpoint: http://localhost%s/twilio/voice", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down voice webhook server...")
	return s.httpServer.Shutdown(ctx)
}

func turnInput(r *http.Request) dialogue.TurnInput {
	return dialogue.TurnInput{
		CallSID: r.PostFormValue("CallSid"),
		Speech:  r.PostFormValue("SpeechResult"),
		Digits:  r.PostFormValue("Digits"),
	}
}

func (s *Server) writeTwiML(w http.ResponseWriter, doc interface{ Render() (string, error) }) {
	body, err := doc.Render()
	if err != nil {
		log.Printf("❌ TwiML render failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/xml")
	_, _ = w.Write([]byte(body))
}

func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	in := turnInput(r)
	log.Printf("📞 Voice turn: sid=%.8s speech=%q digits=%q", in.CallSID, in.Speech, in.Digits)
	s.writeTwiML(w, s.controller.HandleVoice(r.Context(), in))
}

func (s *Server) handleConfirmEnd(w http.ResponseWriter, r *http.Request) {
	in := turnInput(r)
	log.Printf("📞 Confirm turn: sid=%.8s speech=%q digits=%q", in.CallSID, in.Speech, in.Digits)
	s.writeTwiML(w, s.controller.HandleConfirm(r.Context(), in))
}

type ttsTestRequest struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// handleTTSTest synthesizes arbitrary text and streams the MP3 back;
// development aid for tuning the voice configuration
func (s *Server) handleTTSTest(w http.ResponseWriter, r *http.Request) {
	var req ttsTestRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "body must be JSON with a non-empty 'text' field"})
		return
	}

	audio, err := s.synth.Synthesize(r.Context(), req.Text)
	if err != nil {
		log.Printf("❌ TTS test failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to generate speech"})
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(audio)))
	_, _ = w.Write(audio)
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	if s.audio == nil {
		http.NotFound(w, r)
		return
	}

	audio, err := s.audio.Fetch(r.Context(), r.PathValue("name"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	_, _ = w.Write(audio)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
