package app

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/gin-gonic/gin"

	"example/chess-ingest/app/models"
)

const (
	ingestTimeout = 2 * time.Minute
	jobTimeout    = 5 * time.Second
)

var contentTypes = map[string]string{
	FormatArrow:   "application/vnd.apache.arrow.stream",
	FormatParquet: "application/vnd.apache.parquet",
	FormatJSON:    "application/json",
}

// API holds the dependencies of the HTTP handlers. Queue may be nil when
// QUEUE_URL is not set; job submission then answers 503.
type API struct {
	Service *Service
	Queue   JobQueue
	Logger  *slog.Logger
}

func NewAPI(svc *Service, queue JobQueue, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{Service: svc, Queue: queue, Logger: logger.With("component", "http")}
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetProfiles returns the profile batch for ?players=a,b.
func (a *API) GetProfiles(c *gin.Context) {
	players, ok := playersParam(c)
	if !ok {
		return
	}
	format, ok := formatParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ingestTimeout)
	defer cancel()

	rec, err := a.Service.GetPlayerProfiles(ctx, players)
	if err != nil {
		a.fail(c, err)
		return
	}
	defer rec.Release()
	a.writeBatch(c, rec, format)
}

// GetArchives lists the in-range archive URLs of one player.
func (a *API) GetArchives(c *gin.Context) {
	username := strings.ToLower(strings.TrimSpace(c.Param("username")))
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing username"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ingestTimeout)
	defer cancel()

	indices, err := a.Service.GetPlayerArchives(ctx, []string{username}, c.Query("start"), c.Query("end"))
	if err != nil {
		a.fail(c, err)
		return
	}

	archives := []string{}
	if len(indices) > 0 && indices[0].Archives != nil {
		archives = indices[0].Archives
	}
	c.JSON(http.StatusOK, gin.H{
		"username": username,
		"count":    len(archives),
		"archives": archives,
	})
}

// GetGames returns the game batch for ?players=a,b&start=YYYY/MM&end=YYYY/MM.
func (a *API) GetGames(c *gin.Context) {
	players, ok := playersParam(c)
	if !ok {
		return
	}
	format, ok := formatParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ingestTimeout)
	defer cancel()

	rec, err := a.Service.GetPlayerGames(ctx, players, c.Query("start"), c.Query("end"))
	if err != nil {
		a.fail(c, err)
		return
	}
	defer rec.Release()
	a.writeBatch(c, rec, format)
}

// CreateJob queues an ingestion job and answers 202 with its id.
func (a *API) CreateJob(c *gin.Context) {
	var req models.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	players := cleanPlayers(req.Players)
	if len(players) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing players"})
		return
	}
	if a.Queue == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "job queue not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), jobTimeout)
	defer cancel()

	jobID, err := SubmitIngestJob(ctx, a.Queue, players, req.StartMonth, req.EndMonth, a.Logger)
	if err != nil {
		a.fail(c, err)
		return
	}
	a.Logger.Info("job queued", "job_id", jobID, "players", len(players))
	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID})
}

// GetJobStatus returns the recorded state of a job.
func (a *API) GetJobStatus(c *gin.Context) {
	jobID := c.Param("jobid")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing job id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), jobTimeout)
	defer cancel()

	status, err := FindJobStatus(ctx, jobID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		case errors.Is(err, errNoDatabase):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		default:
			a.fail(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"job": status})
}

func (a *API) writeBatch(c *gin.Context, rec arrow.Record, format string) {
	var buf bytes.Buffer
	if err := WriteBatch(&buf, rec, format); err != nil {
		a.fail(c, err)
		return
	}
	c.Data(http.StatusOK, contentTypes[format], buf.Bytes())
}

func (a *API) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.Logger.Error("request failed", "path", c.Request.URL.Path, "status", status, "err", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// statusFor maps ingestion errors to HTTP status codes.
func statusFor(err error) int {
	var se *StatusError
	switch {
	case errors.Is(err, ErrInvalidDateFormat), errors.Is(err, ErrInvalidRange), errors.Is(err, ErrNoPlayers):
		return http.StatusBadRequest
	case errors.Is(err, ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNetwork), errors.Is(err, ErrPayloadParse), errors.Is(err, ErrSchemaProjection):
		return http.StatusBadGateway
	case errors.As(err, &se):
		// any other upstream status
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func playersParam(c *gin.Context) ([]string, bool) {
	players := cleanPlayers(strings.Split(c.Query("players"), ","))
	if len(players) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing players"})
		return nil, false
	}
	return players, true
}

func formatParam(c *gin.Context) (string, bool) {
	format := strings.ToLower(c.DefaultQuery("format", FormatJSON))
	if _, ok := contentTypes[format]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown format " + format})
		return "", false
	}
	return format, true
}

// cleanPlayers trims and lowercases usernames and drops blanks. Order and
// duplicates are kept.
func cleanPlayers(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
