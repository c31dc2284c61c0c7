package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"

	"github.com/praxis-ed/studyengine/internal/catalog"
	"github.com/praxis-ed/studyengine/internal/cycle"
	"github.com/praxis-ed/studyengine/internal/performance"
	"github.com/praxis-ed/studyengine/internal/platform/cache"
	"github.com/praxis-ed/studyengine/internal/platform/database"
	"github.com/praxis-ed/studyengine/internal/progress"
	"github.com/praxis-ed/studyengine/internal/report"
)

// app holds the wired subsystems behind the HTTP surface.
type app struct {
	db    *database.DB
	cache *cache.Cache

	repo       catalog.Repository
	resolver   catalog.GraphResolver
	aggregator *progress.Aggregator
	bridge     *progress.Bridge
	attempts   performance.AttemptSource

	cycleStore    cycle.Store
	autosaver     *cycle.AutoSaver
	defaultBudget float64
}

// newMux creates the HTTP router.
func newMux(a *app) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", a.handleReadyz)

	mux.HandleFunc("GET /v1/users/{userID}/courses/{courseID}/progress", a.handleProgress)
	mux.HandleFunc("POST /v1/users/{userID}/courses/{courseID}/sections", a.handleMarkSection)
	mux.HandleFunc("GET /v1/users/{userID}/courses/{courseID}/performance", a.handlePerformance)
	mux.HandleFunc("GET /v1/users/{userID}/courses/{courseID}/cycle", a.handleCycleGet)
	mux.HandleFunc("PUT /v1/users/{userID}/courses/{courseID}/cycle", a.handleCyclePut)
	mux.HandleFunc("GET /v1/users/{userID}/courses/{courseID}/report", a.handleReport)
	mux.HandleFunc("GET /v1/live", a.handleLive)
	return mux
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (a *app) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if a.db != nil {
		if err := a.db.HealthCheck(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if a.cache != nil {
		if err := a.cache.HealthCheck(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "cache unavailable")
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

func (a *app) handleProgress(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	courseID := r.PathValue("courseID")

	summary, err := a.aggregator.Load(r.Context(), userID, courseID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "course not found")
			return
		}
		slog.Error("progress load failed", "user_id", userID, "course_id", courseID, "error", err)
		writeError(w, http.StatusInternalServerError, "progress load failed")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type markSectionRequest struct {
	LessonID  string `json:"lesson_id"`
	SectionID string `json:"section_id"`
	Done      bool   `json:"done"`
}

func (a *app) handleMarkSection(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	courseID := r.PathValue("courseID")

	var req markSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.LessonID == "" || req.SectionID == "" {
		writeError(w, http.StatusBadRequest, "lesson_id and section_id are required")
		return
	}

	summary, err := a.aggregator.MarkSection(r.Context(), userID, courseID, req.LessonID, req.SectionID, req.Done)
	if err != nil {
		slog.Error("section toggle failed", "user_id", userID, "course_id", courseID, "error", err)
		writeError(w, http.StatusInternalServerError, "section toggle failed")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handlePerformance classifies the learner's attempt accuracy over every
// topic reachable from the course, weighted by attempt volume.
func (a *app) handlePerformance(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	courseID := r.PathValue("courseID")

	goal := performance.MinGoal
	if g := r.URL.Query().Get("goal"); g != "" {
		n, err := strconv.Atoi(g)
		if err != nil {
			writeError(w, http.StatusBadRequest, "goal must be an integer")
			return
		}
		if err := performance.ValidateGoal(n); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		goal = n
	}

	graph, err := a.resolver.Resolve(r.Context(), courseID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "course not found")
			return
		}
		slog.Error("resolution failed", "course_id", courseID, "error", err)
		writeError(w, http.StatusInternalServerError, "resolution failed")
		return
	}

	sums, err := a.topicSummaries(r.Context(), graph, userID)
	if err != nil {
		slog.Error("attempt summaries failed", "user_id", userID, "course_id", courseID, "error", err)
		writeError(w, http.StatusInternalServerError, "attempt summaries failed")
		return
	}

	writeJSON(w, http.StatusOK, performance.ClassifyAggregate(sums, goal))
}

// topicSummaries collects one attempt summary per unique topic in the graph.
func (a *app) topicSummaries(ctx context.Context, graph *catalog.ResolvedGraph, userID string) ([]performance.AttemptSummary, error) {
	uc := catalog.CountUnique(graph.Lessons)
	topicIDs := make([]string, 0, len(uc.TopicIDs))
	for id := range uc.TopicIDs {
		topicIDs = append(topicIDs, id)
	}

	topics, err := a.repo.TopicsByIDs(ctx, topicIDs)
	if err != nil {
		return nil, err
	}

	sums := make([]performance.AttemptSummary, 0, len(topics))
	for _, t := range topics {
		sum, err := a.attempts.SummaryByFilter(ctx, t.QuestionFilter, userID)
		if err != nil {
			return nil, err
		}
		sums = append(sums, sum)
	}
	return sums, nil
}

// handleCycleGet reconciles the saved allocation against the course's current
// disciplines and returns the tagged result. Nothing is persisted here.
func (a *app) handleCycleGet(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	courseID := r.PathValue("courseID")

	graph, existing, status, msg := a.loadCycleInputs(r.Context(), userID, courseID)
	if status != 0 {
		writeError(w, status, msg)
		return
	}

	result := cycle.Reconcile(existing, graph.Disciplines, a.defaultBudget)
	result.Allocation.UserID = userID
	result.Allocation.CourseID = catalog.TranslateSlug(courseID)
	writeJSON(w, http.StatusOK, result)
}

// handleCyclePut stages a full allocation for autosave after validating every
// entry's hours.
func (a *app) handleCyclePut(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	courseID := r.PathValue("courseID")

	var alloc cycle.Allocation
	if err := json.NewDecoder(r.Body).Decode(&alloc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	for _, e := range alloc.Entries {
		if err := cycle.ValidateHours(e.Hours); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	alloc.UserID = userID
	alloc.CourseID = catalog.TranslateSlug(courseID)
	alloc.UpdatedAt = time.Now()
	a.autosaver.Stage(alloc)

	writeJSON(w, http.StatusAccepted, alloc)
}

func (a *app) handleReport(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	courseID := r.PathValue("courseID")

	summary, err := a.aggregator.Load(r.Context(), userID, courseID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "course not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "progress load failed")
		return
	}

	graph, existing, status, msg := a.loadCycleInputs(r.Context(), userID, courseID)
	if status != 0 {
		writeError(w, status, msg)
		return
	}
	alloc := cycle.Reconcile(existing, graph.Disciplines, a.defaultBudget).Allocation

	sums, err := a.topicSummaries(r.Context(), graph, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "attempt summaries failed")
		return
	}
	result := performance.ClassifyAggregate(sums, performance.MinGoal)

	// Render fully before committing headers so a workbook failure can
	// still surface as an error response.
	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, summary, result, alloc); err != nil {
		slog.Error("report export failed", "user_id", userID, "course_id", courseID, "error", err)
		writeError(w, http.StatusInternalServerError, "report export failed")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "study-report.xlsx"))
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("report response write failed", "user_id", userID, "error", err)
	}
}

func (a *app) loadCycleInputs(ctx context.Context, userID, courseID string) (*catalog.ResolvedGraph, *cycle.Allocation, int, string) {
	graph, err := a.resolver.Resolve(ctx, courseID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, nil, http.StatusNotFound, "course not found"
		}
		slog.Error("resolution failed", "course_id", courseID, "error", err)
		return nil, nil, http.StatusInternalServerError, "resolution failed"
	}

	existing, err := a.cycleStore.Get(ctx, userID, catalog.TranslateSlug(courseID))
	if err != nil {
		slog.Error("allocation load failed", "user_id", userID, "course_id", courseID, "error", err)
		return nil, nil, http.StatusInternalServerError, "allocation load failed"
	}
	return graph, existing, 0, ""
}

// handleLive streams published progress updates over a websocket. Delivery is
// last-write-wins: a slow client only ever sees the newest counts.
func (a *app) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	updates := make(chan progress.Update, 1)
	cancel := a.bridge.Subscribe(func(u progress.Update) {
		// Drop the stale buffered update, if any, and keep the newest.
		select {
		case updates <- u:
		default:
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- u:
			default:
			}
		}
	})
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "server shutting down")
			return
		case u := <-updates:
			data, err := json.Marshal(u)
			if err != nil {
				slog.Error("update encode failed", "error", err)
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
