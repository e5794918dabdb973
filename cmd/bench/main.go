// README: Smoke and load runner for a deployed planner; executes HTTP/Redis checks and prints results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func main() {
	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	bench := NewRunner(cfg)
	results := bench.RunAll(ctx)

	fmt.Println("\n== Summary ==")
	pass, fail, skipped := 0, 0, 0
	for _, r := range results {
		switch r.Status {
		case "PASS":
			pass++
		case "FAIL":
			fail++
		case "SKIP":
			skipped++
		}
	}
	fmt.Printf("PASS=%d FAIL=%d SKIP=%d\n", pass, fail, skipped)

	if fail > 0 || (cfg.Strict && skipped > 0) {
		os.Exit(1)
	}
}

type Config struct {
	BaseURL     string
	RedisAddr   string
	LivePlan    bool
	Strict      bool
	Timeout     time.Duration
	Concurrency int
	Duration    time.Duration
}

const defaultConcurrency = 20

// benchEnv maps viper keys to the environment variables that seed the flag defaults.
var benchEnv = []struct {
	key, env string
	def      any
}{
	{"base_url", "TRIPCREW_BENCH_BASE_URL", "http://localhost:8501"},
	{"redis_addr", "TRIPCREW_REDIS_ADDR", ""},
	{"live_plan", "TRIPCREW_BENCH_LIVE_PLAN", false},
	{"strict", "TRIPCREW_BENCH_STRICT", false},
	{"timeout", "TRIPCREW_BENCH_TIMEOUT", 5 * time.Minute},
	{"concurrency", "TRIPCREW_BENCH_CONCURRENCY", defaultConcurrency},
	{"duration", "TRIPCREW_BENCH_DURATION", 10 * time.Second},
}

func newBenchViper() *viper.Viper {
	v := viper.New()
	for _, b := range benchEnv {
		v.SetDefault(b.key, b.def)
		_ = v.BindEnv(b.key, b.env)
	}
	return v
}

func loadConfig() Config {
	cfg, err := parseConfig(newBenchViper(), flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return cfg
}

// parseConfig reads flags whose defaults come from the environment through v.
func parseConfig(v *viper.Viper, fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	fs.StringVar(&cfg.BaseURL, "base-url", v.GetString("base_url"), "API base URL")
	fs.StringVar(&cfg.RedisAddr, "redis", v.GetString("redis_addr"), "Redis address of the run quota (empty skips)")
	fs.BoolVar(&cfg.LivePlan, "live-plan", v.GetBool("live_plan"), "Run one full pipeline (spends LLM credits)")
	fs.BoolVar(&cfg.Strict, "strict", v.GetBool("strict"), "Fail on skipped checks")
	fs.DurationVar(&cfg.Timeout, "timeout", v.GetDuration("timeout"), "Total timeout")
	fs.IntVar(&cfg.Concurrency, "concurrency", v.GetInt("concurrency"), "Concurrency for perf tests")
	fs.DurationVar(&cfg.Duration, "duration", v.GetDuration("duration"), "Duration for perf tests")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return cfg, nil
}
