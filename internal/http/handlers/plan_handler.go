// README: Plan handlers; preference form, pipeline runs and result rendering.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tripcrew/internal/http/middleware"
	"tripcrew/internal/http/views"
	"tripcrew/internal/maps"
	"tripcrew/internal/modules/aiusage"
	"tripcrew/internal/modules/session"
	"tripcrew/internal/modules/trip"
	"tripcrew/internal/service"
)

const pageTitle = "AI Travel Planner"

// Planner runs one pipeline for a preference set.
type Planner interface {
	Run(ctx context.Context, prefs trip.Preferences) service.Outcome
}

type PlanHandler struct {
	planner    Planner
	sessions   *session.Store
	quota      *aiusage.Service
	logger     *zap.Logger
	runTimeout time.Duration
}

// NewPlanHandler wires the handler. quota may be nil to disable run limits.
func NewPlanHandler(planner Planner, sessions *session.Store, quota *aiusage.Service, logger *zap.Logger, runTimeout time.Duration) *PlanHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanHandler{
		planner:    planner,
		sessions:   sessions,
		quota:      quota,
		logger:     logger,
		runTimeout: runTimeout,
	}
}

// planForm binds both the HTML form and the JSON API body.
type planForm struct {
	TravelType string   `form:"travel_type" json:"travel_type"`
	Interests  []string `form:"interests" json:"interests"`
	Season     string   `form:"season" json:"season"`
	Duration   int      `form:"duration" json:"duration"`
	Budget     string   `form:"budget" json:"budget"`
}

func (f planForm) preferences() trip.Preferences {
	return trip.NewPreferences(f.TravelType, f.Interests, f.Season, f.Duration, f.Budget)
}

type planResponse struct {
	trip.Result
	City        string            `json:"city,omitempty"`
	Destination *maps.Destination `json:"destination,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// Index handles GET /: the form, prefilled from the session's last plan if any.
func (h *PlanHandler) Index(c *gin.Context) {
	page := views.Page{Title: pageTitle, Options: trip.Options(), Form: trip.DefaultPreferences()}
	if plan, ok := h.sessions.LastPlan(middleware.SessionID(c)); ok {
		page.Form = plan.Preferences
		page.Plan = &plan
		page.Panels = views.Panels(plan.Result)
	}
	c.HTML(http.StatusOK, "index.html", page)
}

// Submit handles POST /plan from the HTML form.
func (h *PlanHandler) Submit(c *gin.Context) {
	var form planForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderError(c, http.StatusBadRequest, trip.DefaultPreferences(), "Invalid form submission.")
		return
	}
	prefs := form.preferences()

	plan, err := h.runPlan(c, prefs)
	if err != nil {
		h.renderError(c, statusFor(err), prefs, "An error occurred: "+publicMessage(err))
		return
	}

	page := views.Page{
		Title:   pageTitle,
		Options: trip.Options(),
		Form:    prefs,
		Plan:    &plan,
		Panels:  views.Panels(plan.Result),
	}
	if plan.Failed() {
		page.Banner, page.BannerKind = "An error occurred: "+plan.Error, "error"
	} else {
		page.Banner, page.BannerKind = "Trip planning completed! Enjoy your journey! 🎉", "success"
	}
	c.HTML(http.StatusOK, "index.html", page)
}

// Reset handles POST /plan/reset.
func (h *PlanHandler) Reset(c *gin.Context) {
	h.sessions.ClearPlan(middleware.SessionID(c))
	c.Redirect(http.StatusSeeOther, "/")
}

// Create handles POST /api/plans.
func (h *PlanHandler) Create(c *gin.Context) {
	var form planForm
	if err := c.ShouldBindJSON(&form); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	plan, err := h.runPlan(c, form.preferences())
	if err != nil {
		writeError(c, statusFor(err), publicMessage(err))
		return
	}

	resp := planResponse{
		Result:      plan.Result,
		City:        plan.City,
		Destination: plan.Destination,
		Error:       plan.Error,
	}
	status := http.StatusOK
	if plan.Failed() {
		status = http.StatusBadGateway
	}
	writeJSON(c, status, resp)
}

// Latest handles GET /api/plans/latest.
func (h *PlanHandler) Latest(c *gin.Context) {
	plan, ok := h.sessions.LastPlan(middleware.SessionID(c))
	if !ok {
		writeError(c, http.StatusNotFound, "no plan for this session")
		return
	}
	writeJSON(c, http.StatusOK, plan)
}

// Options handles GET /api/options.
func (h *PlanHandler) Options(c *gin.Context) {
	writeJSON(c, http.StatusOK, trip.Options())
}

// runPlan validates, guards and executes one pipeline run, then stores the plan in the
// session. LLM failures are part of the returned plan, not of the error.
func (h *PlanHandler) runPlan(c *gin.Context, prefs trip.Preferences) (session.Plan, error) {
	if err := prefs.Validate(); err != nil {
		return session.Plan{}, err
	}

	sid := middleware.SessionID(c)
	release, err := h.sessions.BeginRun(sid)
	if err != nil {
		return session.Plan{}, err
	}
	defer release()

	ctx := c.Request.Context()
	if err := h.quota.UseRun(ctx, c.ClientIP()); err != nil {
		if errors.Is(err, aiusage.ErrQuotaExceeded) {
			return session.Plan{}, err
		}
		// The quota store being down must not take planning down with it.
		h.logger.Warn("quota check failed; allowing run", zap.Error(err))
	}

	if h.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.runTimeout)
		defer cancel()
	}

	out := h.planner.Run(ctx, prefs)
	plan := session.Plan{
		Preferences: prefs,
		Result:      out.Result,
		City:        out.City,
		Destination: out.Destination,
		CreatedAt:   time.Now(),
	}
	if out.Err != nil {
		plan.Error = out.Err.Error()
	}
	h.sessions.SavePlan(sid, plan)
	return plan, nil
}

func (h *PlanHandler) renderError(c *gin.Context, status int, form trip.Preferences, msg string) {
	c.HTML(status, "index.html", views.Page{
		Title:      pageTitle,
		Options:    trip.Options(),
		Form:       form,
		Banner:     msg,
		BannerKind: "error",
	})
}
