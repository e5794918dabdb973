package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripcrew/internal/ai"
	"tripcrew/internal/maps"
	"tripcrew/internal/modules/trip"
)

// scriptedLLM answers calls in order and records every prompt it sees.
type scriptedLLM struct {
	mu      sync.Mutex
	replies []string
	failAt  int // 1-based call that fails; 0 never fails
	prompts []ai.Prompt
}

func (s *scriptedLLM) Complete(_ context.Context, p ai.Prompt) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, p)
	n := len(s.prompts)
	if n == s.failAt {
		return "", errors.New("rate limited")
	}
	if n > len(s.replies) {
		return "", errors.New("unexpected call")
	}
	return s.replies[n-1], nil
}

type stubResolver struct {
	dest *maps.Destination
	err  error
	got  string
}

func (r *stubResolver) ResolveCity(_ context.Context, city string) (*maps.Destination, error) {
	r.got = city
	return r.dest, r.err
}

func prefs() trip.Preferences {
	return trip.NewPreferences("Adventure", []string{"Nature", "Food"}, "Summer", 4, "Mid-range")
}

func fullReplies() []string {
	return []string{
		"- Queenstown, New Zealand\n- Reykjavik, Iceland\n- Cusco, Peru",
		"Research text",
		"Day 1: bungee",
		"Budget table",
	}
}

func TestRunSuccess(t *testing.T) {
	llm := &scriptedLLM{replies: fullReplies()}
	planner := NewTripPlanner(llm, nil, nil, PlannerOptions{})

	out := planner.Run(context.Background(), prefs())
	require.NoError(t, out.Err)
	assert.Equal(t, "Queenstown", out.City)
	assert.Nil(t, out.Destination)
	assert.Equal(t, trip.Result{
		CitySelection: fullReplies()[0],
		CityResearch:  "Research text",
		Itinerary:     "Day 1: bungee",
		Budget:        "Budget table",
	}, out.Result)

	require.Len(t, llm.prompts, 4)
	assert.Contains(t, llm.prompts[1].User, "insights about Queenstown")
	assert.Contains(t, llm.prompts[2].User, "4-day itinerary for Queenstown")
}

func TestRunBudgetChainsItineraryDescription(t *testing.T) {
	llm := &scriptedLLM{replies: fullReplies()}
	NewTripPlanner(llm, nil, nil, PlannerOptions{}).Run(context.Background(), prefs())

	require.Len(t, llm.prompts, 4)
	budget := llm.prompts[3].User
	assert.Contains(t, budget, "Planned itinerary:\nCreate a 4-day itinerary for Queenstown")
	assert.NotContains(t, budget, "Day 1: bungee")
}

func TestRunBudgetFromItinerary(t *testing.T) {
	llm := &scriptedLLM{replies: fullReplies()}
	NewTripPlanner(llm, nil, nil, PlannerOptions{BudgetFromItinerary: true}).Run(context.Background(), prefs())

	require.Len(t, llm.prompts, 4)
	assert.Contains(t, llm.prompts[3].User, "Planned itinerary:\nDay 1: bungee")
}

func TestRunFailsOnFirstCall(t *testing.T) {
	llm := &scriptedLLM{failAt: 1}
	out := NewTripPlanner(llm, nil, nil, PlannerOptions{}).Run(context.Background(), prefs())

	require.Error(t, out.Err)
	assert.True(t, strings.HasPrefix(out.Result.CitySelection, "Error:"))
	assert.Empty(t, out.Result.CityResearch)
	assert.Empty(t, out.Result.Itinerary)
	assert.Empty(t, out.Result.Budget)
	assert.Len(t, llm.prompts, 1)
}

func TestRunFailureDiscardsPartialResults(t *testing.T) {
	llm := &scriptedLLM{replies: fullReplies(), failAt: 3}
	out := NewTripPlanner(llm, nil, nil, PlannerOptions{}).Run(context.Background(), prefs())

	require.Error(t, out.Err)
	assert.Contains(t, out.Result.CitySelection, "itinerary: rate limited")
	assert.Empty(t, out.Result.CityResearch)
	assert.Empty(t, out.City)
	assert.Len(t, llm.prompts, 3)
}

func TestRunBlankSelectionShortCircuits(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"  "}}
	out := NewTripPlanner(llm, nil, nil, PlannerOptions{}).Run(context.Background(), prefs())

	require.NoError(t, out.Err)
	assert.Equal(t, trip.NoCityDetermined, out.Result.CityResearch)
	assert.Equal(t, trip.NoItinerary, out.Result.Itinerary)
	assert.Equal(t, trip.NoBudget, out.Result.Budget)
	assert.Len(t, llm.prompts, 1)
}

func TestRunFallsBackToParis(t *testing.T) {
	replies := fullReplies()
	replies[0] = "sorry, i cannot help with that"
	llm := &scriptedLLM{replies: replies}
	out := NewTripPlanner(llm, nil, nil, PlannerOptions{}).Run(context.Background(), prefs())

	require.NoError(t, out.Err)
	assert.Equal(t, trip.FallbackCity, out.City)
	assert.Contains(t, llm.prompts[1].User, "insights about Paris")
}

func TestRunInvalidPreferences(t *testing.T) {
	llm := &scriptedLLM{replies: fullReplies()}
	bad := trip.NewPreferences("Space", nil, "Summer", 4, "Budget")
	out := NewTripPlanner(llm, nil, nil, PlannerOptions{}).Run(context.Background(), bad)

	assert.ErrorIs(t, out.Err, trip.ErrInvalidPreferences)
	assert.Empty(t, llm.prompts)
}

func TestRunResolvesDestination(t *testing.T) {
	resolver := &stubResolver{dest: &maps.Destination{Name: "Queenstown", Country: "New Zealand"}}
	out := NewTripPlanner(&scriptedLLM{replies: fullReplies()}, resolver, nil, PlannerOptions{}).
		Run(context.Background(), prefs())

	require.NoError(t, out.Err)
	assert.Equal(t, "Queenstown", resolver.got)
	require.NotNil(t, out.Destination)
	assert.Equal(t, "New Zealand", out.Destination.Country)
}

func TestRunIgnoresGeocodingFailure(t *testing.T) {
	resolver := &stubResolver{err: maps.ErrNoResult}
	out := NewTripPlanner(&scriptedLLM{replies: fullReplies()}, resolver, nil, PlannerOptions{}).
		Run(context.Background(), prefs())

	require.NoError(t, out.Err)
	assert.Nil(t, out.Destination)
	assert.Equal(t, "Budget table", out.Result.Budget)
}
