package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/raphaelgruber/railvoice/internal/agent"
	"github.com/raphaelgruber/railvoice/internal/models"
	"github.com/raphaelgruber/railvoice/internal/speech"
)

// maxUploadBytes caps audio uploads; it matches the transcription service's own limit.
const maxUploadBytes = 25 << 20

// User-facing failure messages.
const (
	msgNoPNR          = "No valid PNR found in the text"
	msgInvalidPNR     = "Invalid PNR. A PNR is exactly 10 digits."
	msgStatusNotFound = "Unable to fetch PNR status. Please verify the PNR number."
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// readAudio reads the "audio" multipart field.
func readAudio(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("audio")
	if err != nil {
		return nil, "", fmt.Errorf("missing audio upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("read audio upload: %w", err)
	}
	return data, header.Filename, nil
}

// speechStatus maps a speech error to an HTTP status.
func speechStatus(err error) int {
	switch {
	case errors.Is(err, speech.ErrAudioTooSmall):
		return http.StatusBadRequest
	case errors.Is(err, speech.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": Banner})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.collector.Snapshot())
}

type speechToTextResponse struct {
	Success bool `json:"success"`
	*speech.Transcription
}

func (s *Server) handleSpeechToText(w http.ResponseWriter, r *http.Request) {
	audio, filename, err := readAudio(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tr, err := s.agent.Transcribe(r.Context(), audio, filename)
	if err != nil {
		writeError(w, speechStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, speechToTextResponse{Success: true, Transcription: tr})
}

type extractRequest struct {
	Text string `json:"text"`
}

type extractResponse struct {
	Success      bool   `json:"success"`
	PNR          string `json:"pnr,omitempty"`
	Error        string `json:"error,omitempty"`
	OriginalText string `json:"original_text"`
}

func (s *Server) handleExtractPNR(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pnr, err := s.agent.ExtractPNR(req.Text)
	if err != nil {
		writeJSON(w, http.StatusOK, extractResponse{Success: false, Error: msgNoPNR, OriginalText: req.Text})
		return
	}
	writeJSON(w, http.StatusOK, extractResponse{Success: true, PNR: pnr, OriginalText: req.Text})
}

type statusRequest struct {
	PNR      string `json:"pnr"`
	Language string `json:"language"`
	// Summary defaults to true; false skips the summarizer.
	Summary *bool `json:"summary,omitempty"`
}

type statusResponse struct {
	Success  bool          `json:"success"`
	PNR      string        `json:"pnr"`
	PNRData  any           `json:"pnr_data"`
	Source   models.Source `json:"source"`
	Degraded bool          `json:"degraded"`
	Summary  string        `json:"summary"`
	Language string        `json:"language"`
}

func newStatusResponse(report *agent.StatusReport) statusResponse {
	return statusResponse{
		Success:  true,
		PNR:      report.PNR,
		PNRData:  report.Payload(),
		Source:   report.Source,
		Degraded: report.Degraded,
		Summary:  report.Summary,
		Language: report.Language,
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.agent.Lookup(r.Context(), req.PNR, req.Language, summarize(req.Summary), nil)
	switch {
	case errors.Is(err, models.ErrInvalidPNR):
		writeError(w, http.StatusBadRequest, msgInvalidPNR)
		return
	case err != nil:
		s.logger.Warn("pnr status not found", "pnr", strings.TrimSpace(req.PNR), "error", err)
		writeError(w, http.StatusOK, msgStatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, newStatusResponse(report))
}

type speakRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

func (s *Server) handleTextToSpeech(w http.ResponseWriter, r *http.Request) {
	var req speakRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	audio, err := s.agent.Speak(r.Context(), req.Text, req.Language)
	if err != nil {
		writeError(w, speechStatus(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", `attachment; filename="response.mp3"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}

type flowResponse struct {
	Success          bool   `json:"success"`
	Error            string `json:"error,omitempty"`
	TranscribedText  string `json:"transcribed_text,omitempty"`
	DetectedLanguage string `json:"detected_language,omitempty"`
	PNR              string `json:"pnr,omitempty"`
	PNRData          any    `json:"pnr_data,omitempty"`
	Source           string `json:"source,omitempty"`
	Summary          string `json:"summary,omitempty"`
	Note             string `json:"note,omitempty"`
}

func (s *Server) handleCompleteFlow(w http.ResponseWriter, r *http.Request) {
	audio, filename, err := readAudio(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.agent.CompleteFlow(r.Context(), audio, filename, agent.FlowOptions{})
	resp := flowResponse{PNR: result.PNR}
	if tr := result.Transcript; tr != nil {
		resp.TranscribedText = tr.Text
		resp.DetectedLanguage = tr.Language
	}

	switch {
	case result.Transcript == nil && err != nil:
		writeError(w, speechStatus(err), err.Error())
		return
	case errors.Is(err, models.ErrNoPNRFound):
		resp.Error = "No PNR found"
		writeJSON(w, http.StatusOK, resp)
		return
	case err != nil:
		resp.Error = "PNR status not found"
		writeJSON(w, http.StatusOK, resp)
		return
	}

	resp.Success = true
	resp.PNRData = result.Report.Payload()
	resp.Source = string(result.Report.Source)
	resp.Summary = result.Report.Summary
	resp.Note = "Use /text_to_speech endpoint to convert summary to audio"
	writeJSON(w, http.StatusOK, resp)
}
