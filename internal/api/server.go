package api

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"protoflow/internal/commit"
	"protoflow/internal/config"
	"protoflow/internal/learning"
	"protoflow/internal/match"
	"protoflow/internal/models"
	"protoflow/internal/session"
	"protoflow/internal/storage"
	"protoflow/internal/util"
	"protoflow/internal/workflows"

	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
)

// batchWorkflowID is the fixed id of the ingest batch workflow. Starting a
// second batch while one runs answers a conflict instead of forking.
const batchWorkflowID = "protocol-batch"

type Server struct {
	cfg            config.Config
	db             *storage.DB
	protocolRepo   *storage.ProtocolRepo
	extractionRepo *storage.ExtractionRepo
	personRepo     *storage.PersonRepo
	meetingRepo    *storage.MeetingRepo
	discussionRepo *storage.DiscussionRepo
	sessions       *session.Registry
	learner        *learning.Learner
	matcher        *match.Matcher
	committer      *commit.Coordinator
	temporal       tclient.Client
}

func NewServer(cfg config.Config) *Server {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		panic(err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		panic(err)
	}
	learner := learning.New(storage.NewCorrectionRepo(db))
	if err := learner.Load(ctx); err != nil {
		panic(err)
	}
	tc, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		panic(err)
	}

	matcher := match.New()
	matcher.Thresholds = match.Thresholds{
		Name:       cfg.NameMatchRatio,
		Staff:      cfg.StaffMatchRatio,
		Role:       cfg.RoleMatchRatio,
		Discussion: cfg.DiscussionMatchRatio,
		Vote:       cfg.VoteMatchRatio,
	}
	matcher.Learned = func(text, fieldKind string) (string, bool, bool) {
		m, ok := learner.Lookup(text, fieldKind)
		return m.Accepted, m.WasReversed, ok
	}

	registry := session.NewRegistry(time.Duration(cfg.SessionTTLMinutes) * time.Minute)
	registry.StartSweeper(context.Background(), time.Duration(cfg.SessionSweepSecs)*time.Second)

	return &Server{
		cfg:            cfg,
		db:             db,
		protocolRepo:   storage.NewProtocolRepo(db),
		extractionRepo: storage.NewExtractionRepo(db),
		personRepo:     storage.NewPersonRepo(db),
		meetingRepo:    storage.NewMeetingRepo(db),
		discussionRepo: storage.NewDiscussionRepo(db),
		sessions:       registry,
		learner:        learner,
		matcher:        matcher,
		committer:      commit.New(storage.NewCommitStore(db)),
		temporal:       tc,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/protocols", s.handleProtocols)
	mux.HandleFunc("/ingest", s.handleIngest)
	mux.HandleFunc("/progress", s.handleProgress)
	mux.HandleFunc("/sessions", s.handleSessions)
	mux.HandleFunc("/sessions/", s.handleSessionScoped)
	mux.HandleFunc("/learning/report", s.handleLearningReport)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleProtocols(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		protocols, err := s.protocolRepo.ListProtocols(r.Context())
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"protocols": protocols})
	case http.MethodPost:
		s.handleUpload(w, r)
	default:
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(128 << 20); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("parse multipart: %w", err))
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		if single, ok := firstSingleFile(r.MultipartForm.File); ok {
			files = append(files, single)
		}
	}
	if len(files) == 0 {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no files provided"))
		return
	}

	if err := util.EnsureDir(s.cfg.DataInRoot); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	type uploadResult struct {
		Filename   string `json:"filename"`
		ProtocolID string `json:"protocol_id"`
	}
	out := make([]uploadResult, 0, len(files))

	for _, fh := range files {
		if !isProtocolFile(fh.Filename) {
			continue
		}
		protocolID, savedPath, err := saveUploadedFile(s.cfg.DataInRoot, fh)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		// Re-uploading a reviewed protocol resets it to pending; the batch
		// workflow picks it up again as a fresh review.
		if err := s.protocolRepo.UpsertProtocol(r.Context(), models.Protocol{
			ProtocolID: protocolID,
			Filename:   filepath.Base(savedPath),
			Status:     "pending",
		}); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		out = append(out, uploadResult{Filename: filepath.Base(savedPath), ProtocolID: protocolID})
	}

	writeJSON(w, http.StatusOK, map[string]any{"uploaded": out})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req struct {
		Force                 bool `json:"force"`
		DisableLLM            bool `json:"disable_llm"`
		MaxConcurrentChildren int  `json:"max_concurrent_children"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	maxChildren := req.MaxConcurrentChildren
	if maxChildren <= 0 {
		maxChildren = s.cfg.IngestMaxChildren
	}
	we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:                                       batchWorkflowID,
		TaskQueue:                                s.cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}, workflows.ProtocolBatchWorkflow, workflows.ProtocolBatchInput{
		InputDir:              s.cfg.DataInRoot,
		MaxConcurrentChildren: maxChildren,
		Force:                 req.Force,
		DisableLLM:            req.DisableLLM,
	})
	if err != nil {
		writeErr(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"workflow_id": we.GetID(), "run_id": we.GetRunID()})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var prog workflows.ProtocolBatchProgress
	resp, err := s.temporal.QueryWorkflow(r.Context(), batchWorkflowID, "", workflows.QueryGetProgress)
	if err != nil {
		// Fallback to DB-derived progress when no live batch answers the query.
		protocols, pErr := s.protocolRepo.ListProtocols(r.Context())
		if pErr != nil {
			writeErr(w, http.StatusInternalServerError, pErr)
			return
		}
		per := make(map[string]string, len(protocols))
		done := 0
		failed := 0
		for _, p := range protocols {
			per[p.Filename] = p.Status
			switch p.Status {
			case "ready_for_review", "committed":
				done++
			case "failed":
				failed++
				done++
			}
		}
		writeJSON(w, http.StatusOK, workflows.ProtocolBatchProgress{
			Total:       len(protocols),
			Done:        done,
			Failed:      failed,
			PerProtocol: per,
		})
		return
	}
	if err := resp.Get(&prog); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, prog)
}

// isProtocolFile accepts scanned PDFs and plain-text OCR exports.
func isProtocolFile(name string) bool {
	low := strings.ToLower(name)
	return strings.HasSuffix(low, ".pdf") || strings.HasSuffix(low, ".txt")
}

func saveUploadedFile(dstDir string, fh *multipart.FileHeader) (protocolID, path string, err error) {
	src, err := fh.Open()
	if err != nil {
		return "", "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(dstDir, "upload-*")
	if err != nil {
		return "", "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, h), src); err != nil {
		return "", "", fmt.Errorf("write upload: %w", err)
	}

	protocolID = fmt.Sprintf("%x", h.Sum(nil))
	finalPath := util.SafeJoin(dstDir, fh.Filename)
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return "", "", fmt.Errorf("seek temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", "", err
	}
	if err := os.Rename(tmp.Name(), finalPath); err != nil {
		return "", "", fmt.Errorf("atomic move upload: %w", err)
	}

	return protocolID, finalPath, nil
}

func firstSingleFile(m map[string][]*multipart.FileHeader) (*multipart.FileHeader, bool) {
	for _, v := range m {
		if len(v) > 0 {
			return v[0], true
		}
	}
	return nil, false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

type apiError struct {
	Code    string
	Message string
}

func toAPIError(status int, err error) apiError {
	switch {
	case errors.Is(err, util.ErrSessionNotFound):
		return apiError{
			Code:    "PF-SES-4040",
			Message: "No review session exists under this id.",
		}
	case errors.Is(err, util.ErrSessionExpired):
		return apiError{
			Code:    "PF-SES-4100",
			Message: "Review session has expired or closed. Start a new one from the protocol.",
		}
	case errors.Is(err, util.ErrSessionBusy):
		return apiError{
			Code:    "PF-SES-4090",
			Message: "Another request is working on this session. Retry in a moment.",
		}
	case errors.Is(err, util.ErrInvalidTransition):
		return apiError{
			Code:    "PF-SES-4091",
			Message: "Operation does not fit the current review step.",
		}
	case errors.Is(err, util.ErrUnresolvedStaff):
		return apiError{
			Code:    "PF-SES-4092",
			Message: "Unresolved names remain. Resolve or reject each one first.",
		}
	case errors.Is(err, util.ErrCommitConflict):
		return apiError{
			Code:    "PF-SES-4093",
			Message: "Stored records changed during this review. Check the flagged fields and finalize again.",
		}
	case errors.Is(err, util.ErrNothingToCommit):
		return apiError{
			Code:    "PF-SES-4002",
			Message: "Session has no confirmed changes to commit.",
		}
	}

	msg := "Request failed."
	code := "PF-API-4000"
	raw := ""
	if err != nil {
		raw = strings.ToLower(err.Error())
	}

	switch {
	case status >= 500:
		switch {
		case strings.Contains(raw, "relation") && strings.Contains(raw, "does not exist"):
			return apiError{
				Code:    "PF-DB-5001",
				Message: "Database schema is not initialized. Run migrations and retry.",
			}
		case strings.Contains(raw, "connect"), strings.Contains(raw, "dial tcp"), strings.Contains(raw, "connection refused"):
			return apiError{
				Code:    "PF-DB-5002",
				Message: "Database connection is unavailable. Check local services and retry.",
			}
		default:
			return apiError{
				Code:    "PF-API-5000",
				Message: "Internal server error. Please retry or check service logs.",
			}
		}
	case status == http.StatusBadRequest:
		code = "PF-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusNotFound:
		code = "PF-API-4004"
		msg = "Requested resource was not found."
	case status == http.StatusConflict:
		code = "PF-API-4009"
		msg = "Operation conflicts with current state. Retry after checking status."
	case status == http.StatusMethodNotAllowed:
		code = "PF-API-4005"
		msg = "This endpoint does not support the requested method."
	}

	// For 4xx, keep user-safe validation context only.
	if status >= 400 && status < 500 && err != nil {
		low := strings.ToLower(err.Error())
		switch {
		case strings.Contains(low, "protocol_id is required"):
			msg = "Protocol id is required."
		case strings.Contains(low, "no draft for protocol"):
			msg = "Protocol has no extracted draft yet. Run ingest first."
		case strings.Contains(low, "meeting_no is required"):
			msg = "Meeting number is required."
		case strings.Contains(low, "no files provided"):
			msg = "No protocol files were provided."
		case strings.Contains(low, "invalid json"):
			msg = "Malformed JSON request body."
		case strings.Contains(low, "unknown resolution action"):
			msg = "Staff resolution action must be existing, new or reject."
		}
	}

	return apiError{Code: code, Message: msg}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
