// Command markers prints the aggregated map markers of a dataset for one
// zoom level as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/mohammed-shakir/uk-projects-map/internal/cluster"
	"github.com/mohammed-shakir/uk-projects-map/internal/core/router"
	"github.com/mohammed-shakir/uk-projects-map/internal/dataset"
	"github.com/mohammed-shakir/uk-projects-map/internal/logger"
	"github.com/mohammed-shakir/uk-projects-map/internal/markers"
	"github.com/mohammed-shakir/uk-projects-map/internal/spatial"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("markers", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		zoom     = fs.Float64("zoom", 5.5, "map zoom level")
		bbox     = fs.String("bbox", "", "viewport x1,y1,x2,y2[,EPSG:4326]")
		path     = fs.String("dataset", "", "dataset JSON file (default: bundled)")
		strategy = fs.String("strategy", cluster.StrategyGreedy, "cluster strategy ("+strings.Join(cluster.Strategies(), "|")+")")
		search   = fs.String("q", "", "search term")
		industry = fs.String("industry", "", "comma-separated industries")
		status   = fs.String("status", "", "comma-separated statuses")
		region   = fs.String("region", "", "comma-separated regions")
		indexRes = fs.Int("index-res", 7, "H3 resolution of the project index")
		pretty   = fs.Bool("pretty", false, "indent output")
		level    = fs.String("log-level", "warn", "log level")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	zl := logger.Build(logger.Config{Level: *level, Console: true, Component: "markers"}, stderr)
	appLog := logger.NewSlog(&zl)

	// reuse the API's parameter parsing so both surfaces accept the same input
	q := url.Values{}
	q.Set("zoom", fmt.Sprint(*zoom))
	for k, v := range map[string]string{"bbox": *bbox, "q": *search, "industry": *industry, "status": *status, "region": *region} {
		if v != "" {
			q.Set(k, v)
		}
	}
	req, err := router.ParseMarkersRequest(&http.Request{URL: &url.URL{RawQuery: q.Encode()}})
	if err != nil {
		fmt.Fprintf(stderr, "markers: %v\n", err)
		return 2
	}

	store, err := dataset.Open(*path)
	if err != nil {
		fmt.Fprintf(stderr, "markers: %v\n", err)
		return 1
	}
	idx, err := spatial.Build(store.All(), *indexRes, nil)
	if err != nil {
		fmt.Fprintf(stderr, "markers: %v\n", err)
		return 1
	}

	svc := markers.New(store, idx, cluster.New(*strategy, appLog), markers.Options{Logger: appLog})
	resp, err := svc.Markers(context.Background(), req)
	if err != nil {
		fmt.Fprintf(stderr, "markers: %v\n", err)
		if errors.Is(err, cluster.ErrInvalidInput) {
			return 2
		}
		return 1
	}

	enc := json.NewEncoder(stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(resp); err != nil {
		fmt.Fprintf(stderr, "markers: write: %v\n", err)
		return 1
	}
	return 0
}
