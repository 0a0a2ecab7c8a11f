package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/raphaelgruber/railvoice/internal/agent"
	"github.com/raphaelgruber/railvoice/internal/metrics"
	"github.com/raphaelgruber/railvoice/internal/models"
	"github.com/raphaelgruber/railvoice/internal/resolver"
	"github.com/raphaelgruber/railvoice/internal/speech"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	err error
}

func (f fakeResolver) Resolve(ctx context.Context, pnr string, opts ...resolver.ResolveOption) (*models.Resolution, error) {
	if err := models.ValidatePNR(pnr); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return &models.Resolution{
		PNR:    pnr,
		Source: models.SourceAPI,
		Ticket: models.NewTicketRecord(pnr),
		Raw:    json.RawMessage(`{"data":{"trainName":"SHIVGANGA EXP"}}`),
	}, nil
}

type fakeSummarizer struct{}

func (fakeSummarizer) Summarize(ctx context.Context, res *models.Resolution, language string) string {
	return "summary in " + language
}

type fakeTranscriber struct {
	text string
}

func (f fakeTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (*speech.Transcription, error) {
	if len(audio) < speech.MinAudioBytes {
		return nil, speech.ErrAudioTooSmall
	}
	return &speech.Transcription{Text: f.text, Language: "hindi", LanguageCode: "hi"}, nil
}

type fakeSynthesizer struct{}

func (fakeSynthesizer) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	return []byte("ID3 " + language + ": " + text), nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, r agent.Resolver, tr agent.Transcriber, syn agent.Synthesizer) *httptest.Server {
	t.Helper()
	a := agent.New(r, fakeSummarizer{}, tr, syn, quietLogger())
	srv := httptest.NewServer(New(a, metrics.NewCollector(), quietLogger()).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func postAudio(t *testing.T, url string, audio []byte) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("audio", "clip.mp3")
	require.NoError(t, err)
	_, err = fw.Write(audio)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(url, mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestRootHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, fakeResolver{}, nil, nil)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	var banner map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&banner))
	resp.Body.Close()
	assert.Equal(t, Banner, banner["message"])

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok\n", string(body))

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/stats")
	require.NoError(t, err)
	var stats map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	resp.Body.Close()
	assert.Contains(t, stats, "uptime_seconds")
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, fakeResolver{}, nil, nil)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/get_pnr_status", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestExtractPNR(t *testing.T) {
	srv := newTestServer(t, fakeResolver{}, nil, nil)

	resp, out := postJSON(t, srv.URL+"/extract_pnr", `{"text":"my pnr is 260 829 0686"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "2608290686", out["pnr"])
	assert.Equal(t, "my pnr is 260 829 0686", out["original_text"])

	_, out = postJSON(t, srv.URL+"/extract_pnr", `{"text":"hello there"}`)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, msgNoPNR, out["error"])

	resp, _ = postJSON(t, srv.URL+"/extract_pnr", `{"text":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetPNRStatus(t *testing.T) {
	srv := newTestServer(t, fakeResolver{}, nil, nil)

	resp, out := postJSON(t, srv.URL+"/get_pnr_status", `{"pnr":"2608290686","language":"hindi"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "api", out["source"])
	assert.Equal(t, "summary in hindi", out["summary"])
	assert.Equal(t, "hindi", out["language"])
	data, ok := out["pnr_data"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, data, "data")

	resp, out = postJSON(t, srv.URL+"/get_pnr_status", `{"pnr":"2608290686","language":"hindi","summary":false}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "", out["summary"])
	assert.Equal(t, "hindi", out["language"])
}

func TestGetPNRStatusFailures(t *testing.T) {
	srv := newTestServer(t, fakeResolver{}, nil, nil)
	resp, out := postJSON(t, srv.URL+"/get_pnr_status", `{"pnr":"12345"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, msgInvalidPNR, out["error"])

	exhausted := newTestServer(t, fakeResolver{err: fmt.Errorf("%w: down", models.ErrAllSourcesExhausted)}, nil, nil)
	resp, out = postJSON(t, exhausted.URL+"/get_pnr_status", `{"pnr":"2608290686"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, msgStatusNotFound, out["error"])
}

func TestSpeechToText(t *testing.T) {
	srv := newTestServer(t, fakeResolver{}, fakeTranscriber{text: "दो छह"}, nil)

	resp, out := postAudio(t, srv.URL+"/speech_to_text", []byte("ID3 plenty of audio"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "दो छह", out["text"])
	assert.Equal(t, "hindi", out["language"])
	assert.Equal(t, "hi", out["detected_language_code"])

	resp, out = postAudio(t, srv.URL+"/speech_to_text", []byte("tiny"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, out["success"])

	unconfigured := newTestServer(t, fakeResolver{}, nil, nil)
	resp, _ = postAudio(t, unconfigured.URL+"/speech_to_text", []byte("ID3 plenty of audio"))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestTextToSpeech(t *testing.T) {
	srv := newTestServer(t, fakeResolver{}, nil, fakeSynthesizer{})

	resp, err := http.Post(srv.URL+"/text_to_speech", "application/json", strings.NewReader(`{"text":"hello","language":"hindi"}`))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "audio/mpeg", resp.Header.Get("Content-Type"))
	assert.Equal(t, "ID3 hindi: hello", string(body))

	resp, out := postJSON(t, srv.URL+"/text_to_speech", `{"text":"  "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, out["success"])
}

func TestCompleteFlow(t *testing.T) {
	srv := newTestServer(t, fakeResolver{}, fakeTranscriber{text: "दो छह शून्य आठ दो नौ शून्य छह आठ छह"}, nil)

	resp, out := postAudio(t, srv.URL+"/complete_pnr_flow_json", []byte("ID3 plenty of audio"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "2608290686", out["pnr"])
	assert.Equal(t, "hindi", out["detected_language"])
	assert.Equal(t, "summary in hindi", out["summary"])
	assert.Equal(t, "api", out["source"])
	assert.NotEmpty(t, out["note"])
}

func TestCompleteFlowFailures(t *testing.T) {
	noPNR := newTestServer(t, fakeResolver{}, fakeTranscriber{text: "where is my train"}, nil)
	_, out := postAudio(t, noPNR.URL+"/complete_pnr_flow_json", []byte("ID3 plenty of audio"))
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "No PNR found", out["error"])
	assert.Equal(t, "where is my train", out["transcribed_text"])

	exhausted := newTestServer(t, fakeResolver{err: models.ErrAllSourcesExhausted}, fakeTranscriber{text: "2608290686"}, nil)
	_, out = postAudio(t, exhausted.URL+"/complete_pnr_flow_json", []byte("ID3 plenty of audio"))
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "PNR status not found", out["error"])
	assert.Equal(t, "2608290686", out["pnr"])

	resp, _ := postAudio(t, noPNR.URL+"/complete_pnr_flow_json", []byte("tiny"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/boom" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fine?q="+strings.Repeat("x", 300), nil))
	assert.Contains(t, buf.String(), "request completed")
	assert.Contains(t, buf.String(), "status=200")
	assert.Contains(t, buf.String(), "...")

	buf.Reset()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "status=500")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}

func TestRunShutsDown(t *testing.T) {
	a := agent.New(fakeResolver{}, nil, nil, nil, quietLogger())
	s := New(a, nil, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
