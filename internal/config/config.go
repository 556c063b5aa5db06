// README: Config loader; optional TOML file overlaid by WAYFARER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

type NavigationConfig struct {
	TickInterval        time.Duration `toml:"tick_interval"`
	ArrivalRadiusMeters float64       `toml:"arrival_radius_m"`
	CameraEntryDelay    time.Duration `toml:"camera_entry_delay"`
	ArrivalMessageDelay time.Duration `toml:"arrival_message_delay"`
}

type CameraConfig struct {
	LookAhead            int           `toml:"look_ahead"`
	FirstPersonLookAhead int           `toml:"first_person_look_ahead"`
	EntryDistance        float64       `toml:"entry_distance_m"`
	EntryPitch           float64       `toml:"entry_pitch"`
	TrackingDistance     float64       `toml:"tracking_distance_m"`
	TrackingPitch        float64       `toml:"tracking_pitch"`
	FirstPersonDistance  float64       `toml:"first_person_distance_m"`
	FirstPersonPitch     float64       `toml:"first_person_pitch"`
	OverviewDistance     float64       `toml:"overview_distance_m"`
	RecenterRadius       float64       `toml:"recenter_radius_m"`
	RoutePadding         float64       `toml:"route_padding_m"`
	Cooldown             time.Duration `toml:"cooldown"`
	ManualMoveThreshold  time.Duration `toml:"manual_move_threshold"`
}

type HeadingConfig struct {
	MinInterval    time.Duration `toml:"min_interval"`
	FastInterval   time.Duration `toml:"fast_interval"`
	AngleThreshold float64       `toml:"angle_threshold"`
}

type RoutingConfig struct {
	Attempts int           `toml:"attempts"`
	Backoff  time.Duration `toml:"backoff"`
	Timeout  time.Duration `toml:"timeout"`
}

type Config struct {
	HTTP struct {
		Addr string `toml:"addr"`
	} `toml:"http"`
	DB struct {
		DSN string `toml:"dsn"`
	} `toml:"db"`
	Redis struct {
		Addr string `toml:"addr"`
	} `toml:"redis"`
	Maps struct {
		APIKey   string `toml:"api_key"`
		Language string `toml:"language"`
		Region   string `toml:"region"`
	} `toml:"maps"`
	Firebase struct {
		ProjectID       string `toml:"project_id"`
		CredentialsFile string `toml:"credentials_file"`
		CheckRevoked    bool   `toml:"check_revoked"`
	} `toml:"firebase"`
	Device struct {
		ID string `toml:"id"`
	} `toml:"device"`
	Navigation NavigationConfig `toml:"navigation"`
	Camera     CameraConfig     `toml:"camera"`
	Heading    HeadingConfig    `toml:"heading"`
	Routing    RoutingConfig    `toml:"routing"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	var cfg Config
	cfg.HTTP.Addr = ":8080"
	cfg.Maps.Language = "en"
	cfg.Device.ID = "default"
	cfg.Navigation = NavigationConfig{
		TickInterval:        5 * time.Second,
		ArrivalRadiusMeters: 50,
		CameraEntryDelay:    500 * time.Millisecond,
		ArrivalMessageDelay: 2 * time.Second,
	}
	cfg.Camera = CameraConfig{
		LookAhead:            10,
		FirstPersonLookAhead: 5,
		EntryDistance:        300,
		EntryPitch:           65,
		TrackingDistance:     250,
		TrackingPitch:        60,
		FirstPersonDistance:  400,
		FirstPersonPitch:     45,
		OverviewDistance:     1000,
		RecenterRadius:       1000,
		RoutePadding:         50,
		Cooldown:             2 * time.Second,
		ManualMoveThreshold:  2 * time.Second,
	}
	cfg.Heading = HeadingConfig{
		MinInterval:    2 * time.Second,
		FastInterval:   500 * time.Millisecond,
		AngleThreshold: 3,
	}
	cfg.Routing = RoutingConfig{
		Attempts: 3,
		Backoff:  time.Second,
		Timeout:  15 * time.Second,
	}
	return cfg
}

func Load() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("WAYFARER_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
	}
	cfg.HTTP.Addr = envOrDefault("WAYFARER_HTTP_ADDR", cfg.HTTP.Addr)
	// an empty value disables the store, even one set in the file
	cfg.DB.DSN = envOrUnset("WAYFARER_DB_DSN", cfg.DB.DSN)
	cfg.Redis.Addr = envOrUnset("WAYFARER_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Maps.APIKey = envOrDefault("WAYFARER_MAPS_API_KEY", cfg.Maps.APIKey)
	cfg.Maps.Language = envOrDefault("WAYFARER_MAPS_LANGUAGE", cfg.Maps.Language)
	cfg.Maps.Region = envOrDefault("WAYFARER_MAPS_REGION", cfg.Maps.Region)
	cfg.Firebase.ProjectID = envOrDefault("WAYFARER_FIREBASE_PROJECT_ID", cfg.Firebase.ProjectID)
	cfg.Firebase.CredentialsFile = envOrDefault("WAYFARER_FIREBASE_CREDENTIALS", cfg.Firebase.CredentialsFile)
	cfg.Firebase.CheckRevoked = envOrDefaultBool("WAYFARER_FIREBASE_CHECK_REVOKED", cfg.Firebase.CheckRevoked)
	cfg.Device.ID = envOrDefault("WAYFARER_DEVICE_ID", cfg.Device.ID)
	cfg.Navigation.TickInterval = envOrDefaultDuration("WAYFARER_NAV_TICK", cfg.Navigation.TickInterval)
	cfg.Navigation.ArrivalRadiusMeters = envOrDefaultFloat("WAYFARER_NAV_ARRIVAL_RADIUS_M", cfg.Navigation.ArrivalRadiusMeters)
	cfg.Camera.LookAhead = envOrDefaultInt("WAYFARER_CAMERA_LOOK_AHEAD", cfg.Camera.LookAhead)
	cfg.Camera.Cooldown = envOrDefaultDuration("WAYFARER_CAMERA_COOLDOWN", cfg.Camera.Cooldown)
	cfg.Routing.Attempts = envOrDefaultInt("WAYFARER_ROUTING_ATTEMPTS", cfg.Routing.Attempts)
	cfg.Routing.Backoff = envOrDefaultDuration("WAYFARER_ROUTING_BACKOFF", cfg.Routing.Backoff)
	cfg.Routing.Timeout = envOrDefaultDuration("WAYFARER_ROUTING_TIMEOUT", cfg.Routing.Timeout)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Navigation.TickInterval <= 0 {
		errs = append(errs, errors.New("navigation.tick_interval must be positive"))
	}
	if c.Navigation.ArrivalRadiusMeters <= 0 {
		errs = append(errs, errors.New("navigation.arrival_radius_m must be positive"))
	}
	if c.Heading.MinInterval <= 0 || c.Heading.FastInterval <= 0 {
		errs = append(errs, errors.New("heading intervals must be positive"))
	}
	if c.Camera.LookAhead < 1 {
		errs = append(errs, errors.New("camera.look_ahead must be at least 1"))
	}
	if c.Device.ID == "" {
		errs = append(errs, errors.New("device.id is required"))
	}
	if c.Routing.Attempts < 1 {
		errs = append(errs, errors.New("routing.attempts must be at least 1"))
	}
	return errors.Join(errs...)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrUnset(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
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
