package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/twhispers/twhispers/internal/db"
	"github.com/twhispers/twhispers/internal/metrics"
	"github.com/twhispers/twhispers/internal/ws"
)

// CreateConfessionInput accepts the content either as JSON or as a query/form
// parameter.
type CreateConfessionInput struct {
	Content string `json:"content" form:"content" binding:"required,max=2000"`
}

// Env carries the process-scoped dependencies of the handlers.
type Env struct {
	DB      *gorm.DB
	Store   *db.Store
	Hub     *ws.Hub
	Metrics *metrics.Metrics
	Logger  *zap.SugaredLogger
}

func NewEnv(conn *gorm.DB, hub *ws.Hub, m *metrics.Metrics, logger *zap.SugaredLogger) *Env {
	return &Env{
		DB:      conn,
		Store:   db.NewStore(conn),
		Hub:     hub,
		Metrics: m,
		Logger:  logger,
	}
}

func (e *Env) GetConfessions(c *gin.Context) {
	confessions, err := e.Store.Recent(c.Request.Context())
	if err != nil {
		e.internalError(c, "Failed to fetch confessions", err)
		return
	}
	c.JSON(http.StatusOK, confessions)
}

func (e *Env) CreateConfession(c *gin.Context) {
	var input CreateConfessionInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	confession, err := e.Store.Create(c.Request.Context(), input.Content)
	if err != nil {
		e.internalError(c, "Failed to create confession", err)
		return
	}

	e.Metrics.ConfessionsCreated.Inc()
	e.Hub.Publish(ws.EventNewConfession, confession)

	c.JSON(http.StatusOK, confession)
}

func (e *Env) Upvote(c *gin.Context) {
	e.vote(c, db.Up)
}

func (e *Env) Downvote(c *gin.Context) {
	e.vote(c, db.Down)
}

func (e *Env) vote(c *gin.Context, direction db.Direction) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid confession ID"})
		return
	}

	tally, err := e.Store.Vote(c.Request.Context(), uint(id), direction)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Confession not found"})
			return
		}
		e.internalError(c, "Failed to process vote", err)
		return
	}

	e.Metrics.VotesTotal.WithLabelValues(direction.String()).Inc()
	e.Hub.Publish(ws.EventVote, tally)

	c.JSON(http.StatusOK, tally)
}

func (e *Env) FilterByDate(c *gin.Context) {
	day, err := db.ParseDay(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}

	confessions, err := e.Store.OnDate(c.Request.Context(), day)
	if err != nil {
		e.internalError(c, "Failed to filter confessions", err)
		return
	}
	c.JSON(http.StatusOK, confessions)
}

func (e *Env) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := db.Ping(ctx, e.DB); err != nil {
		e.Logger.Warnw("health check failed", "request_id", requestID(c), "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (e *Env) internalError(c *gin.Context, message string, err error) {
	e.Logger.Errorw(message, "request_id", requestID(c), "error", err)
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}
