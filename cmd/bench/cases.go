// README: Smoke cases for the planner API; reachability, validation, run guard and throughput checks.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

func validPlan() map[string]any {
	return map[string]any{
		"travel_type": "Cultural",
		"interests":   []string{"History", "Art"},
		"season":      "Spring",
		"duration":    3,
		"budget":      "Mid-range",
	}
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{
			Name: "Env: Redis connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "SKIP", Note: "quota redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				keys, _ := r.redis.Keys(ctx, "aiusage:"+time.Now().UTC().Format("2006-01-02")+":*").Result()
				return Result{Status: "PASS", Note: fmt.Sprintf("clients today=%d", len(keys))}
			},
		},
		httpCase("API: health", http.MethodGet, base+"/health", nil, []int{200}),
		httpCase("API: form options", http.MethodGet, base+"/api/options", nil, []int{200}),
		httpCase("API: index page", http.MethodGet, base+"/", nil, []int{200}),

		// Validation never reaches the model.
		httpCase("Plan: duration out of range -> 400", http.MethodPost, base+"/api/plans", withField("duration", 30), []int{400}),
		httpCase("Plan: unknown travel type -> 400", http.MethodPost, base+"/api/plans", withField("travel_type", "Space"), []int{400}),
		httpCase("Plan: unknown interest -> 400", http.MethodPost, base+"/api/plans", withField("interests", []string{"Skydiving"}), []int{400}),
		httpCase("Plan: malformed body -> 400", http.MethodPost, base+"/api/plans", "nope", []int{400}),

		{
			Name: "Plan: full pipeline (optional)",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.LivePlan {
					return Result{Status: "SKIP", Note: "set -live-plan to spend LLM credits"}
				}
				return livePlan(ctx, r, base+"/api/plans")
			},
		},
		{
			Name: "Concurrency: duplicate run in one session",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.LivePlan {
					return Result{Status: "SKIP", Note: "needs -live-plan"}
				}
				return duplicateRun(ctx, r, base)
			},
		},
		{
			Name: "Perf: options throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/options")
			},
		},
	}
}

func withField(key string, v any) map[string]any {
	body := validPlan()
	body[key] = v
	return body
}

func httpCase(name, method, url string, body any, okStatuses []int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			status, latency, err := r.do(ctx, r.httpc, method, url, body)
			if err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			if contains(okStatuses, status) {
				return Result{Status: "PASS", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
			}
			return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
		},
	}
}

func (r *Runner) do(ctx context.Context, client *http.Client, method, url string, body any) (int, time.Duration, error) {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode, time.Since(start), nil
}

// livePlan runs one pipeline; a run takes four sequential model calls.
func livePlan(ctx context.Context, r *Runner, url string) Result {
	client := &http.Client{Timeout: r.cfg.Timeout}
	status, latency, err := r.do(ctx, client, http.MethodPost, url, validPlan())
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	if status != http.StatusOK {
		return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
	}
	return Result{Status: "PASS", Latency: latency}
}

// duplicateRun fires concurrent plans sharing one session cookie; all but one must get 409.
func duplicateRun(ctx context.Context, r *Runner, base string) Result {
	jar, _ := cookiejar.New(nil)
	client := &http.Client{Timeout: r.cfg.Timeout, Jar: jar}
	// Obtain the session cookie first.
	if _, _, err := r.do(ctx, client, http.MethodGet, base+"/", nil); err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}

	const n = 3
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, conflict := 0, 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, _, err := r.do(ctx, client, http.MethodPost, base+"/api/plans", validPlan())
			if err != nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			switch status {
			case http.StatusOK, http.StatusBadGateway:
				ok++
			case http.StatusConflict:
				conflict++
			}
		}()
	}
	wg.Wait()

	note := fmt.Sprintf("completed=%d conflicts=%d", ok, conflict)
	if ok == 1 && conflict == n-1 {
		return Result{Status: "PASS", Note: note}
	}
	return Result{Status: "FAIL", Note: note}
}

func perfLoad(ctx context.Context, r *Runner, url string) Result {
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount int64
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				_, _, err := r.do(ctx, r.httpc, http.MethodGet, url, nil)
				mu.Lock()
				if err != nil {
					errCount++
				} else {
					count++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: "FAIL", Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: "PASS", Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}
