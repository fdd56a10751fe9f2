package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/answerlens/internal/analysis"
	"github.com/skillsenselab/answerlens/internal/apperrors"
	"github.com/skillsenselab/answerlens/internal/logger"
	"github.com/skillsenselab/answerlens/internal/server/middleware"
	"github.com/skillsenselab/answerlens/internal/store"
	"github.com/skillsenselab/answerlens/internal/transcription"
)

// audioFileField is the multipart form field carrying the uploaded audio.
const audioFileField = "file"

// Handler wires the transcription, analysis, and persistence components to
// HTTP routes.
type Handler struct {
	transcriber *transcription.Service
	analyzer    *analysis.Analyzer
	recordings  *store.Store
	log         *logger.Logger
}

// NewHandler creates the route handler for the answerlens API.
func NewHandler(t *transcription.Service, a *analysis.Analyzer, s *store.Store, log *logger.Logger) *Handler {
	return &Handler{
		transcriber: t,
		analyzer:    a,
		recordings:  s,
		log:         log.WithComponent("handler"),
	}
}

// RouteConfig controls authentication on the registered routes.
type RouteConfig struct {
	// Auth gates GET /recordings.
	Auth middleware.SharedSecretConfig
	// ProtectWrites additionally gates POST /analyze with the same secret.
	ProtectWrites bool
}

// Register mounts the API routes on the engine.
func (h *Handler) Register(r gin.IRouter, rc RouteConfig) {
	guard := middleware.SharedSecret(rc.Auth)

	r.POST("/transcribe", h.Transcribe)
	if rc.ProtectWrites {
		r.POST("/analyze", guard, h.Analyze)
	} else {
		r.POST("/analyze", h.Analyze)
	}
	r.GET("/recordings", guard, h.ListRecordings)
	r.GET("/health", h.Health)
}

// transcribeResponse is the body of a successful POST /transcribe.
type transcribeResponse struct {
	Transcript string `json:"transcript"`
}

// analyzeResponse is the body of a successful POST /analyze.
type analyzeResponse struct {
	Transcript       string   `json:"transcript"`
	Sentiment        string   `json:"sentiment"`
	SentimentScore   *float64 `json:"sentiment_score"`
	ReadabilityScore *float64 `json:"readability_score"`
	ConfidenceScore  *float64 `json:"confidence_score"`
	OverallScore     *float64 `json:"overall_score"`
	Summary          string   `json:"summary"`
	Suggestions      []string `json:"suggestions"`
	ID               uint     `json:"id"`
}

// Transcribe handles POST /transcribe: one uploaded audio file in, a
// transcript out. Nothing is persisted.
func (h *Handler) Transcribe(c *gin.Context) {
	audio, err := readAudioFile(c)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}

	transcript, err := h.transcriber.TranscribeBytes(c.Request.Context(), audio)
	if err != nil {
		respondWithError(c, h.log, apperrors.ExternalService("transcription", err))
		return
	}

	c.JSON(http.StatusOK, transcribeResponse{Transcript: transcript})
}

// Analyze handles POST /analyze: transcribe the upload, derive an
// assessment, persist the combined record, and return it. Analysis failures
// degrade instead of erroring; a transcription failure persists nothing.
func (h *Handler) Analyze(c *gin.Context) {
	audio, err := readAudioFile(c)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}

	ctx := c.Request.Context()

	transcript, err := h.transcriber.TranscribeBytes(ctx, audio)
	if err != nil {
		respondWithError(c, h.log, apperrors.ExternalService("transcription", err))
		return
	}

	assessment := h.analyzer.Analyze(ctx, transcript)

	rec := store.Recording{
		Transcript:       transcript,
		Sentiment:        assessment.Sentiment,
		SentimentScore:   assessment.SentimentScore,
		ReadabilityScore: assessment.ReadabilityScore,
		ConfidenceScore:  assessment.ConfidenceScore,
		OverallScore:     assessment.OverallScore,
		Summary:          assessment.Summary,
		Suggestions:      store.StringList(assessment.Suggestions),
	}
	if err := h.recordings.Create(ctx, &rec); err != nil {
		respondWithError(c, h.log, apperrors.Database("create recording", err))
		return
	}

	c.JSON(http.StatusOK, analyzeResponse{
		Transcript:       transcript,
		Sentiment:        assessment.Sentiment,
		SentimentScore:   assessment.SentimentScore,
		ReadabilityScore: assessment.ReadabilityScore,
		ConfidenceScore:  assessment.ConfidenceScore,
		OverallScore:     assessment.OverallScore,
		Summary:          assessment.Summary,
		Suggestions:      assessment.Suggestions,
		ID:               rec.ID,
	})
}

// ListRecordings handles GET /recordings: every persisted record, newest
// first. The shared-secret middleware has already run.
func (h *Handler) ListRecordings(c *gin.Context) {
	recs, err := h.recordings.ListNewestFirst(c.Request.Context())
	if err != nil {
		respondWithError(c, h.log, apperrors.Database("list recordings", err))
		return
	}
	c.JSON(http.StatusOK, recs)
}

// Health handles GET /health. The database and both model backends are
// checked; any unreachable component degrades the overall status.
func (h *Handler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	components := gin.H{"database": "ok", "whisper": "ok", "llm": "ok"}
	healthy := true
	if err := h.recordings.Ping(ctx); err != nil {
		components["database"] = "unavailable"
		healthy = false
	}
	if !h.transcriber.Available(ctx) {
		components["whisper"] = "unavailable"
		healthy = false
	}
	if !h.analyzer.Available(ctx) {
		components["llm"] = "unavailable"
		healthy = false
	}

	status := "ok"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "service": "answerlens", "components": components})
}

// readAudioFile extracts the uploaded audio bytes from the multipart form.
func readAudioFile(c *gin.Context) ([]byte, error) {
	fileHeader, err := c.FormFile(audioFileField)
	if err != nil {
		return nil, apperrors.InvalidInput(audioFileField, "an audio file upload is required").WithCause(err)
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, apperrors.InvalidInput(audioFileField, "the uploaded file could not be read").
			WithCause(err).WithDetail("filename", fileHeader.Filename)
	}
	defer f.Close()

	audio, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.InvalidInput(audioFileField, "the uploaded file could not be read").
			WithCause(err).WithDetail("filename", fileHeader.Filename)
	}
	return audio, nil
}
