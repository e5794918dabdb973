// README: Plan handler tests (JSON API, HTML form, run guard and quota status codes).
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripcrew/internal/http/handlers"
	"tripcrew/internal/http/middleware"
	"tripcrew/internal/http/views"
	"tripcrew/internal/modules/aiusage"
	"tripcrew/internal/modules/session"
	"tripcrew/internal/modules/trip"
	"tripcrew/internal/service"
)

// stubPlanner is a test double for handlers.Planner.
type stubPlanner struct {
	out   service.Outcome
	calls int
	got   trip.Preferences
}

func (s *stubPlanner) Run(_ context.Context, prefs trip.Preferences) service.Outcome {
	s.calls++
	s.got = prefs
	return s.out
}

// countingStore is an in-memory aiusage.Counter.
type countingStore struct{ n map[string]int64 }

func (c *countingStore) Increment(_ context.Context, client string) (int64, error) {
	c.n[client]++
	return c.n[client], nil
}

func (c *countingStore) Decrement(_ context.Context, client string) error {
	c.n[client]--
	return nil
}

func (c *countingStore) Used(_ context.Context, client string) (int64, error) {
	return c.n[client], nil
}

func okOutcome() service.Outcome {
	return service.Outcome{
		Result: trip.Result{
			CitySelection: "- Rome, Italy",
			CityResearch:  "Colosseum",
			Itinerary:     "Day 1 Forum",
			Budget:        "Total 2000 EUR",
		},
		City: "Rome",
	}
}

func buildTestRouter(planner handlers.Planner, sessions *session.Store, quota *aiusage.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.SetHTMLTemplate(views.Templates())
	r.Use(middleware.Session(3600))
	h := handlers.NewPlanHandler(planner, sessions, quota, nil, time.Second)
	r.GET("/", h.Index)
	r.POST("/plan", h.Submit)
	r.POST("/plan/reset", h.Reset)
	r.POST("/api/plans", h.Create)
	r.GET("/api/plans/latest", h.Latest)
	r.GET("/api/options", h.Options)
	return r
}

func validBody() map[string]any {
	return map[string]any{
		"travel_type": "Cultural",
		"interests":   []string{"History", "Food"},
		"season":      "Spring",
		"duration":    5,
		"budget":      "Mid-range",
	}
}

func doJSON(r *gin.Engine, method, path string, body any, sid string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: sid})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doForm(r *gin.Engine, path string, form url.Values, sid string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: sid})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "raw=%s", w.Body.String())
	return resp
}

func TestCreatePlan(t *testing.T) {
	planner := &stubPlanner{out: okOutcome()}
	sessions := session.NewStore(time.Minute)
	r := buildTestRouter(planner, sessions, nil)
	sid := session.NewID()

	w := doJSON(r, http.MethodPost, "/api/plans", validBody(), sid)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w)
	for key, want := range map[string]string{
		"city_selection": "- Rome, Italy",
		"city_research":  "Colosseum",
		"itinerary":      "Day 1 Forum",
		"budget":         "Total 2000 EUR",
		"city":           "Rome",
	} {
		assert.Equal(t, want, resp[key], key)
	}
	assert.Equal(t, 5, planner.got.Duration)
	assert.Equal(t, []string{"History", "Food"}, planner.got.Interests)

	_, ok := sessions.LastPlan(sid)
	require.True(t, ok, "plan not stored in session")
	latest := doJSON(r, http.MethodGet, "/api/plans/latest", nil, sid)
	assert.Equal(t, http.StatusOK, latest.Code)
	assert.Contains(t, latest.Body.String(), "Colosseum")
}

func TestCreatePlanInvalidPreferences(t *testing.T) {
	planner := &stubPlanner{out: okOutcome()}
	r := buildTestRouter(planner, session.NewStore(time.Minute), nil)

	body := validBody()
	body["duration"] = 30
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/api/plans", body, "").Code)
	assert.Zero(t, planner.calls, "planner called for invalid preferences")

	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/api/plans", "not an object", "").Code)
}

func TestCreatePlanLLMFailure(t *testing.T) {
	err := errors.New("city_selection: rate limited")
	planner := &stubPlanner{out: service.Outcome{Result: trip.FailedResult(err), Err: err}}
	r := buildTestRouter(planner, session.NewStore(time.Minute), nil)

	w := doJSON(r, http.MethodPost, "/api/plans", validBody(), "")
	require.Equal(t, http.StatusBadGateway, w.Code)
	resp := decode(t, w)
	assert.True(t, strings.HasPrefix(resp["city_selection"].(string), "Error:"), "got %v", resp["city_selection"])
	for _, key := range []string{"city_research", "itinerary", "budget"} {
		v, ok := resp[key]
		assert.True(t, ok, "%s missing", key)
		assert.Equal(t, "", v, key)
	}
}

func TestCreatePlanRunInFlight(t *testing.T) {
	planner := &stubPlanner{out: okOutcome()}
	sessions := session.NewStore(time.Minute)
	r := buildTestRouter(planner, sessions, nil)
	sid := session.NewID()

	release, err := sessions.BeginRun(sid)
	require.NoError(t, err)
	defer release()

	assert.Equal(t, http.StatusConflict, doJSON(r, http.MethodPost, "/api/plans", validBody(), sid).Code)
	assert.Zero(t, planner.calls, "planner ran while another run was in flight")
}

func TestCreatePlanQuota(t *testing.T) {
	planner := &stubPlanner{out: okOutcome()}
	quota := aiusage.NewService(&countingStore{n: map[string]int64{}}, 1)
	r := buildTestRouter(planner, session.NewStore(time.Minute), quota)

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, "/api/plans", validBody(), "").Code)
	assert.Equal(t, http.StatusTooManyRequests, doJSON(r, http.MethodPost, "/api/plans", validBody(), "").Code)
	assert.Equal(t, 1, planner.calls)
}

func TestSubmitForm(t *testing.T) {
	planner := &stubPlanner{out: okOutcome()}
	sessions := session.NewStore(time.Minute)
	r := buildTestRouter(planner, sessions, nil)
	sid := session.NewID()

	form := url.Values{
		"travel_type": {"Romantic"},
		"interests":   {"Art", "Food"},
		"season":      {"Winter"},
		"duration":    {"3"},
		"budget":      {"Luxury"},
	}
	w := doForm(r, "/plan", form, sid)
	require.Equal(t, http.StatusOK, w.Code)
	for _, want := range []string{"Trip planning completed!", "Recommended Cities", "Colosseum", "Budget Breakdown", "Total 2000 EUR"} {
		assert.Contains(t, w.Body.String(), want)
	}
	assert.Equal(t, "Romantic", planner.got.TravelType)
	assert.Equal(t, []string{"Art", "Food"}, planner.got.Interests)

	// The index page shows the session's last plan until it is reset.
	idx := doJSON(r, http.MethodGet, "/", nil, sid)
	assert.Contains(t, idx.Body.String(), "Day 1 Forum")

	reset := doForm(r, "/plan/reset", url.Values{}, sid)
	assert.Equal(t, http.StatusSeeOther, reset.Code)
	_, ok := sessions.LastPlan(sid)
	assert.False(t, ok, "plan survived reset")
}

func TestSubmitFormInvalid(t *testing.T) {
	planner := &stubPlanner{out: okOutcome()}
	r := buildTestRouter(planner, session.NewStore(time.Minute), nil)

	w := doForm(r, "/plan", url.Values{"travel_type": {"Space"}, "season": {"Winter"}, "duration": {"3"}, "budget": {"Luxury"}}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "An error occurred")
}

func TestSubmitFormShowsLLMError(t *testing.T) {
	err := errors.New("itinerary: upstream timeout")
	planner := &stubPlanner{out: service.Outcome{Result: trip.FailedResult(err), Err: err}}
	r := buildTestRouter(planner, session.NewStore(time.Minute), nil)

	form := url.Values{"travel_type": {"Leisure"}, "season": {"Summer"}, "duration": {"7"}, "budget": {"Budget"}}
	w := doForm(r, "/plan", form, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "An error occurred: itinerary: upstream timeout")
	// Empty panels fall back to their placeholder text.
	assert.Contains(t, w.Body.String(), trip.NoItinerary)
}

func TestOptions(t *testing.T) {
	r := buildTestRouter(&stubPlanner{}, session.NewStore(time.Minute), nil)
	w := doJSON(r, http.MethodGet, "/api/options", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var opts trip.FormOptions
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opts))
	assert.Len(t, opts.TravelTypes, 6)
	assert.Equal(t, 14, opts.MaxDuration)
}

func TestLatestWithoutPlan(t *testing.T) {
	r := buildTestRouter(&stubPlanner{}, session.NewStore(time.Minute), nil)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/api/plans/latest", nil, "").Code)
}
