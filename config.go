package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind    string
	port    int
	prefix  string
	profile bool
	tlsCert string
	tlsKey  string
	verbose bool
	version bool

	stateFile     string
	lanesPerSide  int
	laneStepPct   float64
	clampBand     float64
	tickInterval  time.Duration
	roundDuration time.Duration
	basePrice     float64
	baseSpread    float64
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.lanesPerSide < 1 {
		return fmt.Errorf("invalid lanes-per-side (must be at least 1): %d", c.lanesPerSide)
	}
	if c.laneStepPct <= 0 {
		return fmt.Errorf("invalid lane-step-pct (must be positive): %f", c.laneStepPct)
	}
	if c.clampBand <= 0 {
		return fmt.Errorf("invalid clamp-band (must be positive): %f", c.clampBand)
	}
	if c.tickInterval <= 0 {
		return errors.New("invalid tick-interval (must be positive)")
	}
	if c.roundDuration < c.tickInterval {
		return errors.New("invalid round-duration (must be at least one tick)")
	}
	if c.basePrice <= 0 {
		return fmt.Errorf("invalid base-price (must be positive): %f", c.basePrice)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("LANERUSH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "lanerush",
		Short:         "A timed multiplayer guess-the-price-move party game, served from a single binary.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: LANERUSH_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: LANERUSH_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: LANERUSH_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: LANERUSH_PROFILE)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: LANERUSH_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: LANERUSH_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: LANERUSH_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: LANERUSH_VERSION)")

	fs.StringVar(&cfg.stateFile, "state-file", "state.json", "path to round state file, empty for in-memory only (env: LANERUSH_STATE_FILE)")
	fs.IntVar(&cfg.lanesPerSide, "lanes-per-side", 9, "graduated lanes per side of the axis (env: LANERUSH_LANES_PER_SIDE)")
	fs.Float64Var(&cfg.laneStepPct, "lane-step-pct", 0.001, "fractional price change per lane step (env: LANERUSH_LANE_STEP_PCT)")
	fs.Float64Var(&cfg.clampBand, "clamp-band", 0.015, "max fractional excursion from the anchor price (env: LANERUSH_CLAMP_BAND)")
	fs.DurationVar(&cfg.tickInterval, "tick-interval", 100*time.Millisecond, "length of one simulation tick (env: LANERUSH_TICK_INTERVAL)")
	fs.DurationVar(&cfg.roundDuration, "round-duration", 30*time.Second, "length of the live phase (env: LANERUSH_ROUND_DURATION)")
	fs.Float64Var(&cfg.basePrice, "base-price", 114568.00, "center of the anchor price draw (env: LANERUSH_BASE_PRICE)")
	fs.Float64Var(&cfg.baseSpread, "base-spread", 1000.0, "symmetric jitter around the anchor center (env: LANERUSH_BASE_SPREAD)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("lanerush v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
