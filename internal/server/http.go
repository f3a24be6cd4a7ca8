package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/msksk8cool/sk8school-bot/pkg/booking"
	"github.com/msksk8cool/sk8school-bot/pkg/progress"
	"github.com/sirupsen/logrus"
)

const maxLeaderboardLimit = 100

// BookingReader serves the booking endpoints.
type BookingReader interface {
	Statistics(ctx context.Context) booking.Stats
	Pending(ctx context.Context) []booking.Booking
	Upcoming(ctx context.Context, within time.Duration) []booking.Booking
}

// ProgressReader serves the progress endpoints.
type ProgressReader interface {
	UserProgress(ctx context.Context, userID int64) (*progress.Summary, bool)
	Leaderboard(ctx context.Context, limit int) []progress.Entry
}

// Checker reports storage health.
type Checker interface {
	Check(ctx context.Context) error
}

type progressResponse struct {
	UserID            int64              `json:"user_id"`
	UserName          string             `json:"user_name"`
	Username          string             `json:"username"`
	Level             string             `json:"level"`
	NextLevel         string             `json:"next_level,omitempty"`
	Percent           float64            `json:"percent"`
	TotalSessions     int                `json:"total_sessions"`
	Achievements      []string           `json:"achievements"`
	AchievementsTotal int                `json:"achievements_total"`
	FirstSession      string             `json:"first_session"`
	LastSession       string             `json:"last_session"`
	Recent            []progress.Session `json:"recent_sessions"`
}

func toProgressResponse(userID int64, s *progress.Summary) progressResponse {
	resp := progressResponse{
		UserID:            userID,
		UserName:          s.UserName,
		Username:          s.Username,
		Level:             s.Tier.Name,
		Percent:           s.Percent,
		TotalSessions:     s.Total,
		Achievements:      make([]string, 0, len(s.Achievements)),
		AchievementsTotal: s.AchievementsTotal,
		FirstSession:      s.FirstSession,
		LastSession:       s.LastSession,
		Recent:            s.Recent,
	}
	if s.Next != nil {
		resp.NextLevel = s.Next.Name
	}
	for _, a := range s.Achievements {
		resp.Achievements = append(resp.Achievements, a.ID)
	}
	return resp
}

// NewRouter builds the read-only admin API.
func NewRouter(bookings BookingReader, tracker ProgressReader, health Checker) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		if err := health.Check(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	// GET /api/v1/bookings/stats
	api.GET("/bookings/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, bookings.Statistics(c.Request.Context()))
	})

	// GET /api/v1/bookings/pending
	api.GET("/bookings/pending", func(c *gin.Context) {
		pending := bookings.Pending(c.Request.Context())
		if pending == nil {
			pending = []booking.Booking{}
		}
		c.JSON(http.StatusOK, gin.H{"bookings": pending, "count": len(pending)})
	})

	// GET /api/v1/bookings/upcoming?within=24h
	api.GET("/bookings/upcoming", func(c *gin.Context) {
		within := 24 * time.Hour
		if raw := c.Query("within"); raw != "" {
			d, err := time.ParseDuration(raw)
			if err != nil || d <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "within must be a positive duration"})
				return
			}
			within = d
		}
		upcoming := bookings.Upcoming(c.Request.Context(), within)
		if upcoming == nil {
			upcoming = []booking.Booking{}
		}
		c.JSON(http.StatusOK, gin.H{"bookings": upcoming, "count": len(upcoming)})
	})

	// GET /api/v1/leaderboard?limit=5
	api.GET("/leaderboard", func(c *gin.Context) {
		limit := 5
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > maxLeaderboardLimit {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("limit must be 1-%d", maxLeaderboardLimit)})
				return
			}
			limit = n
		}
		entries := tracker.Leaderboard(c.Request.Context(), limit)
		if entries == nil {
			entries = []progress.Entry{}
		}
		c.JSON(http.StatusOK, gin.H{"leaders": entries})
	})

	// GET /api/v1/progress/:userID
	api.GET("/progress/:userID", func(c *gin.Context) {
		userID, err := strconv.ParseInt(c.Param("userID"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}
		summary, ok := tracker.UserProgress(c.Request.Context(), userID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no progress for user"})
			return
		}
		c.JSON(http.StatusOK, toProgressResponse(userID, summary))
	})

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		logrus.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(started).String(),
		}).Debug("admin api request")
	}
}

// HTTPServer serves the admin API.
type HTTPServer struct {
	server *http.Server
	port   int
}

// NewHTTPServer wraps handler in an http.Server on port.
func NewHTTPServer(port int, handler http.Handler) *HTTPServer {
	return &HTTPServer{
		port: port,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Serve blocks until the server is shut down.
func (h *HTTPServer) Serve() error {
	logrus.Infof("admin API listening on port %d", h.port)
	if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("admin API failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the admin API.
func (h *HTTPServer) Shutdown(ctx context.Context) error {
	logrus.Info("shutting down admin API...")
	if err := h.server.Shutdown(ctx); err != nil {
		return err
	}
	logrus.Info("admin API stopped")
	return nil
}
