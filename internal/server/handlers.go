package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/comigor/jarvis-assistant/internal/assistant"
	"github.com/comigor/jarvis-assistant/internal/automation"
	"github.com/comigor/jarvis-assistant/internal/logger"
	"github.com/comigor/jarvis-assistant/internal/memory"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Assistant.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeError(w, r, fmt.Errorf("%w: lat and lon must be numbers", errBadRequest))
		return
	}

	raw, err := s.deps.Assistant.Weather(r.Context(), lat, lon)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, raw)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Assistant.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req assistant.ChatRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := s.deps.Assistant.Chat(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMemory(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if strings.TrimSpace(path) == "" {
		writeError(w, r, memory.ErrEmptyPath)
		return
	}

	res, err := s.deps.Assistant.Recall(r.Context(), path)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd automation.Command
	if err := decodeBody(w, r, &cmd); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.gate.Check(cmd.Confirm); err != nil {
		writeError(w, r, err)
		return
	}
	if s.deps.Control == nil {
		writeError(w, r, automation.ErrInputUnavailable)
		return
	}

	logger.L.Info("executing command", "action", cmd.Action, "requestId", RequestIDFrom(r.Context()))
	out, err := s.deps.Control.Execute(r.Context(), cmd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type transcribeRequest struct {
	AudioBase64 string `json:"audio_base64"`
	Filename    string `json:"filename"`
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	var req transcribeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	encoded := strings.TrimSpace(req.AudioBase64)
	if encoded == "" {
		writeError(w, r, fmt.Errorf("%w: audio_base64 is required", errBadRequest))
		return
	}
	// data URLs carry a "data:audio/webm;base64," prefix
	if strings.HasPrefix(encoded, "data:") {
		if i := strings.Index(encoded, ","); i >= 0 {
			encoded = encoded[i+1:]
		}
	}
	audio, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: audio_base64 must be valid base64", errBadRequest))
		return
	}

	filename := req.Filename
	if filename == "" {
		filename = "audio.wav"
	}
	text, err := s.deps.Speech.Transcribe(r.Context(), audio, filename)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

type speakRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	var req speakRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, r, fmt.Errorf("%w: text is required", errBadRequest))
		return
	}

	audio, err := s.deps.Speech.Synthesize(r.Context(), text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"audio_base64": base64.StdEncoding.EncodeToString(audio)})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return fmt.Errorf("%w: body exceeds %d bytes", errBadRequest, tooBig.Limit)
		}
		if errors.Is(err, automation.ErrInvalidCommand) {
			return err
		}
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}
