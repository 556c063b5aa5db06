// README: Device simulator; asks navd for a route, then replays it as location and compass updates.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"googlemaps.github.io/maps"

	"wayfarer/internal/device"
	"wayfarer/internal/modules/routing"
	"wayfarer/internal/types"
)

type Config struct {
	BaseURL    string
	Token      string
	From       string
	To         string
	Mode       string
	Polyline   string
	Speed      float64
	Interval   time.Duration
	Navigate   bool
	StatusEach int
}

func main() {
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg Config) error {
	c := newClient(cfg.BaseURL, cfg.Token)

	path, err := resolvePath(ctx, c, cfg)
	if err != nil {
		return err
	}
	replay, err := device.NewReplay(path, cfg.Speed, cfg.Interval)
	if err != nil {
		return err
	}

	if err := c.setAuthorization(ctx, "when_in_use"); err != nil {
		return err
	}
	if err := c.post(ctx, "/api/heading/enable", nil, nil); err != nil {
		return err
	}
	// Seed the first fix so navigation starts with a known position.
	first, _, _ := replay.At(0)
	if err := c.pushLocation(ctx, types.Position{Point: first, Timestamp: time.Now()}); err != nil {
		return err
	}
	if cfg.Navigate {
		if err := c.post(ctx, "/api/navigation/start", nil, nil); err != nil {
			return err
		}
	}

	n := 0
	return replay.Run(ctx, func(ctx context.Context, f device.Fix) error {
		if err := c.pushLocation(ctx, f.Position); err != nil {
			return err
		}
		if err := c.pushHeading(ctx, f.Heading); err != nil {
			return err
		}
		n++
		if f.Done || (cfg.StatusEach > 0 && n%cfg.StatusEach == 0) {
			printStatus(ctx, c)
		}
		return nil
	})
}

// resolvePath prefers an encoded polyline; otherwise navd computes the route.
func resolvePath(ctx context.Context, c *client, cfg Config) ([]types.Point, error) {
	if cfg.Polyline != "" {
		lls, err := maps.DecodePolyline(cfg.Polyline)
		if err != nil {
			return nil, fmt.Errorf("decode polyline: %w", err)
		}
		path := make([]types.Point, 0, len(lls))
		for _, ll := range lls {
			path = append(path, types.Point{Lat: ll.Lat, Lng: ll.Lng})
		}
		return path, nil
	}
	from, err := parsePoint(cfg.From)
	if err != nil {
		return nil, fmt.Errorf("-from: %w", err)
	}
	to, err := parsePoint(cfg.To)
	if err != nil {
		return nil, fmt.Errorf("-to: %w", err)
	}
	mode, err := routing.ParseTravelMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	route, err := c.requestRoute(ctx, routing.Request{
		Origin:      types.Place{Name: "Simulator start", Point: from},
		Destination: types.Place{Name: "Simulator destination", Point: to},
		Mode:        mode,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("navsim: route %q, %.0f m, %d steps", route.Summary, route.Distance, len(route.Steps))
	return route.Polyline, nil
}

func printStatus(ctx context.Context, c *client) {
	st, err := c.status(ctx)
	if err != nil {
		log.Printf("navsim: status: %v", err)
		return
	}
	g := st.Guidance
	log.Printf("navsim: [%s] step %d/%d %q, %.0f m left, eta %s %s",
		g.State, g.StepIndex, g.StepCount, g.CurrentInstruction, g.RemainingDistance,
		g.EstimatedArrival.Format(time.Kitchen), g.ArrivalMessage)
}

func parsePoint(s string) (types.Point, error) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return types.Point{}, fmt.Errorf("want lat,lng, got %q", s)
	}
	la, err1 := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	ln, err2 := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	p := types.Point{Lat: la, Lng: ln}
	if err1 != nil || err2 != nil || !p.Valid() {
		return types.Point{}, fmt.Errorf("invalid coordinate %q", s)
	}
	return p, nil
}

func loadConfig() Config {
	var cfg Config
	flag.StringVar(&cfg.BaseURL, "base-url", envOrDefault("WAYFARER_SIM_BASE_URL", "http://localhost:8080"), "navd base URL")
	flag.StringVar(&cfg.Token, "token", envOrDefault("WAYFARER_SIM_TOKEN", ""), "Firebase ID token")
	flag.StringVar(&cfg.From, "from", envOrDefault("WAYFARER_SIM_FROM", "25.0478,121.5170"), "origin lat,lng")
	flag.StringVar(&cfg.To, "to", envOrDefault("WAYFARER_SIM_TO", "25.0330,121.5654"), "destination lat,lng")
	flag.StringVar(&cfg.Mode, "mode", envOrDefault("WAYFARER_SIM_MODE", "drive"), "drive, walk or transit")
	flag.StringVar(&cfg.Polyline, "polyline", "", "encoded polyline to replay instead of requesting a route")
	flag.Float64Var(&cfg.Speed, "speed", envOrDefaultFloat("WAYFARER_SIM_SPEED", 12), "metres per second")
	flag.DurationVar(&cfg.Interval, "interval", envOrDefaultDuration("WAYFARER_SIM_INTERVAL", time.Second), "time between fixes")
	flag.BoolVar(&cfg.Navigate, "navigate", true, "start navigation before replaying")
	flag.IntVar(&cfg.StatusEach, "status-every", 5, "print guidance every N fixes")
	flag.Parse()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
