// README: HTTP gateway; registers the planner routes on a gin engine.
package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tripcrew/internal/http/handlers"
	"tripcrew/internal/http/middleware"
	"tripcrew/internal/http/views"
	"tripcrew/internal/modules/aiusage"
	"tripcrew/internal/modules/session"
)

type ServerDeps struct {
	Planner    handlers.Planner
	Sessions   *session.Store
	Quota      *aiusage.Service
	Logger     *zap.Logger
	RunTimeout time.Duration
	SessionTTL time.Duration
	// TrustedProxies lists the proxies whose X-Forwarded-For is believed. The client IP keys
	// the run quota, so with none trusted it is always the connection's remote address.
	TrustedProxies []string
}

type Server struct {
	plans          *handlers.PlanHandler
	logger         *zap.Logger
	sessionTTL     time.Duration
	trustedProxies []string
}

func NewServer(deps ServerDeps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := deps.SessionTTL
	if ttl <= 0 {
		ttl = session.DefaultTTL
	}
	return &Server{
		plans:          handlers.NewPlanHandler(deps.Planner, deps.Sessions, deps.Quota, logger, deps.RunTimeout),
		logger:         logger,
		sessionTTL:     ttl,
		trustedProxies: deps.TrustedProxies,
	}
}

func (s *Server) Routes() (http.Handler, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(s.trustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(middleware.Recovery(s.logger), middleware.Logging(s.logger))
	r.SetHTMLTemplate(views.Templates())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/api/options", s.plans.Options)

	sess := r.Group("/", middleware.Session(int(s.sessionTTL/time.Second)))
	sess.GET("/", s.plans.Index)
	sess.POST("/plan", s.plans.Submit)
	sess.POST("/plan/reset", s.plans.Reset)
	sess.POST("/api/plans", s.plans.Create)
	sess.GET("/api/plans/latest", s.plans.Latest)
	return r, nil
}
