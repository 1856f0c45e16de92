// Command loadgen replays map viewport traffic against /api/markers and
// reports latency percentiles.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/mohammed-shakir/uk-projects-map/internal/core/model"
)

type Config struct {
	TargetURL      string
	Concurrency    int
	Duration       time.Duration
	ZipfS          float64
	ZipfV          float64
	Viewports      int
	RequestTimeout time.Duration
	Seed           int64
}

func loadConfig(args []string) (Config, error) {
	var cfg Config
	fs := flag.NewFlagSet("loadgen", flag.ContinueOnError)
	fs.StringVar(&cfg.TargetURL, "target", "http://localhost:8090/api/markers", "dashboard /api/markers URL")
	fs.IntVar(&cfg.Concurrency, "concurrency", 16, "concurrent workers")
	fs.DurationVar(&cfg.Duration, "duration", 30*time.Second, "test duration")
	fs.Float64Var(&cfg.ZipfS, "zipf-s", 1.3, "Zipf parameter s (>1)")
	fs.Float64Var(&cfg.ZipfV, "zipf-v", 1.0, "Zipf parameter v (>=1)")
	fs.IntVar(&cfg.Viewports, "viewports", 128, "distinct viewports in pool")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", 5*time.Second, "per-request timeout")
	fs.Int64Var(&cfg.Seed, "seed", 0, "workload seed (0 = time based)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.Concurrency <= 0 || cfg.Viewports <= 0 || cfg.ZipfS <= 1 || cfg.ZipfV < 1 {
		return Config{}, fmt.Errorf("invalid workload: concurrency=%d viewports=%d zipf(s=%.2f,v=%.2f)",
			cfg.Concurrency, cfg.Viewports, cfg.ZipfS, cfg.ZipfV)
	}
	return cfg, nil
}

type viewport struct {
	BBox model.BBox
	Zoom float64
}

// hubs the traffic concentrates on
var hubs = [][2]float64{
	{-1.4590, 54.9188}, // Sunderland
	{-1.4746, 52.9225}, // Derby
	{-2.8400, 53.3530}, // Halewood
	{-3.1791, 51.4816}, // Cardiff
	{-4.2518, 55.8642}, // Glasgow
	{-5.9301, 54.5973}, // Belfast
}

// makeViewports builds a pool whose head is the whole-UK view followed by
// zoomed views around the hubs, so a Zipf draw favours what users look at
// most. The tail is random views inside the UK.
func makeViewports(count int, r *rand.Rand) []viewport {
	b := model.UKBounds
	out := make([]viewport, 0, count)
	out = append(out, viewport{
		BBox: model.BBox{X1: b.West, Y1: b.South, X2: b.East, Y2: b.North, SRID: "EPSG:4326"},
		Zoom: model.UKDefaultViewport.Zoom,
	})

	hot := max(len(hubs), count/4)
	for i := 0; len(out) < count && i < hot; i++ {
		c := hubs[i%len(hubs)]
		zoom := 6 + r.Float64()*5
		out = append(out, around(c[0]+(r.Float64()-0.5)*0.2, c[1]+(r.Float64()-0.5)*0.2, zoom))
	}
	for len(out) < count {
		lon := b.West + r.Float64()*(b.East-b.West)
		lat := b.South + r.Float64()*(b.North-b.South)
		out = append(out, around(lon, lat, 4+r.Float64()*8))
	}
	return out
}

// viewport of a 1024x768 map centred on lon,lat at zoom
func around(lon, lat, zoom float64) viewport {
	w := 360 / math.Pow(2, zoom) * 4
	h := w * 0.75
	return viewport{
		BBox: model.BBox{
			X1:   math.Max(lon-w/2, -180),
			Y1:   math.Max(lat-h/2, -90),
			X2:   math.Min(lon+w/2, 180),
			Y2:   math.Min(lat+h/2, 90),
			SRID: "EPSG:4326",
		},
		Zoom: math.Round(zoom*10) / 10,
	}
}

type summary struct {
	StartTime     time.Time `json:"start"`
	DurationSec   float64   `json:"duration_sec"`
	TotalRequests int64     `json:"total"`
	SuccessCount  int64     `json:"success"`
	ErrorCount    int64     `json:"errors"`
	ThroughputRPS float64   `json:"throughput_rps"`
	P50Ms         float64   `json:"p50_ms"`
	P95Ms         float64   `json:"p95_ms"`
	P99Ms         float64   `json:"p99_ms"`
	Concurrency   int       `json:"concurrency"`
	Viewports     int       `json:"viewports"`
	TargetURL     string    `json:"target"`
}

type sample struct {
	latency time.Duration
	ok      bool
}

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	s, err := runLoad(context.Background(), cfg)
	if err != nil {
		log.Fatal(err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(s)
	log.Printf("done: total=%d succ=%d err=%d thr=%.2f rps p50=%.1fms p95=%.1fms p99=%.1fms",
		s.TotalRequests, s.SuccessCount, s.ErrorCount, s.ThroughputRPS, s.P50Ms, s.P95Ms, s.P99Ms)
}

func runLoad(parent context.Context, cfg Config) (summary, error) {
	target, err := url.Parse(cfg.TargetURL)
	if err != nil {
		return summary{}, fmt.Errorf("bad target: %w", err)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return summary{}, fmt.Errorf("unsupported scheme: %s", target.Scheme)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	pool := makeViewports(cfg.Viewports, rand.New(rand.NewSource(seed)))
	imax := uint64(len(pool)) - 1

	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         (&net.Dialer{Timeout: 4 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
			MaxIdleConns:        256,
			MaxIdleConnsPerHost: 256,
			IdleConnTimeout:     90 * time.Second,
		},
		Timeout: cfg.RequestTimeout,
	}

	ctx, cancel := context.WithTimeout(parent, cfg.Duration)
	defer cancel()

	samples := make(chan sample, 4096)
	var wg sync.WaitGroup
	start := time.Now()
	for id := range cfg.Concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			zipf := rand.NewZipf(rand.New(rand.NewSource(seed+int64(id)+1)), cfg.ZipfS, cfg.ZipfV, imax)
			for ctx.Err() == nil {
				vp := pool[zipf.Uint64()]
				u := *target
				q := u.Query()
				q.Set("zoom", fmt.Sprint(vp.Zoom))
				q.Set("bbox", vp.BBox.String())
				u.RawQuery = q.Encode()

				t0 := time.Now()
				req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
				resp, err := httpClient.Do(req)
				s := sample{latency: time.Since(t0)}
				if err == nil {
					_, _ = io.Copy(io.Discard, resp.Body)
					_ = resp.Body.Close()
					s.ok = resp.StatusCode >= 200 && resp.StatusCode < 300
				} else if ctx.Err() != nil {
					// cut off by the end of the run
					return
				}
				select {
				case samples <- s:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(samples)
	}()

	out := summary{StartTime: start.UTC(), Concurrency: cfg.Concurrency, Viewports: len(pool), TargetURL: cfg.TargetURL}
	latMs := make([]float64, 0, 1<<14)
	for s := range samples {
		out.TotalRequests++
		if !s.ok {
			out.ErrorCount++
			continue
		}
		out.SuccessCount++
		latMs = append(latMs, float64(s.latency.Microseconds())/1000.0)
	}
	out.DurationSec = time.Since(start).Seconds()
	if out.DurationSec > 0 {
		out.ThroughputRPS = float64(out.TotalRequests) / out.DurationSec
	}
	sort.Float64s(latMs)
	out.P50Ms = percentile(latMs, 50)
	out.P95Ms = percentile(latMs, 95)
	out.P99Ms = percentile(latMs, 99)
	return out, nil
}

func percentile(sortedValues []float64, p float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if p <= 0 {
		return sortedValues[0]
	}
	if p >= 100 {
		return sortedValues[len(sortedValues)-1]
	}
	k := (p / 100.0) * float64(len(sortedValues)-1)
	f := math.Floor(k)
	i := int(f)
	if i >= len(sortedValues)-1 {
		return sortedValues[len(sortedValues)-1]
	}
	d := k - f
	return sortedValues[i]*(1-d) + sortedValues[i+1]*d
}
