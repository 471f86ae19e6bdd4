// Package config loads and validates the simulator's configuration from a
// YAML file, with MARKETSIM_* environment variable overrides, the way the
// rest of the corpus wires viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full, closed set of simulator options.
type Config struct {
	Sim       SimParams       `mapstructure:"sim_params"`
	Orderflow OrderflowParams `mapstructure:"orderflow_params"`
	Strategy  StrategyParams  `mapstructure:"strategy_params"`
}

// SimParams controls the simulation clock, tick size, and logging sinks.
type SimParams struct {
	Horizon         float64 `mapstructure:"horizon"`
	Dt              float64 `mapstructure:"dt"`
	TickSize        float64 `mapstructure:"tick_size"`
	InitialPrice    float64 `mapstructure:"initial_price"`
	RecordInterval  float64 `mapstructure:"record_interval"`
	RandomSeed      *uint64 `mapstructure:"random_seed"`
	LogFile         bool    `mapstructure:"log_file"`
	LogFilename     string  `mapstructure:"log_filename"`
	LogLevel        string  `mapstructure:"log_level"`
	ConsoleLogLevel string  `mapstructure:"console_log_level"`
}

// OrderBernoulli holds the action-type mixture weights. Keys are fixed:
// limit_buy, limit_sell, market_buy, market_sell, cancel.
type OrderBernoulli struct {
	LimitBuy   float64 `mapstructure:"limit_buy"`
	LimitSell  float64 `mapstructure:"limit_sell"`
	MarketBuy  float64 `mapstructure:"market_buy"`
	MarketSell float64 `mapstructure:"market_sell"`
	Cancel     float64 `mapstructure:"cancel"`
}

// Weights returns the five mixture weights in the generator's fixed action
// order: limit_buy, limit_sell, market_buy, market_sell, cancel.
func (b OrderBernoulli) Weights() []float64 {
	return []float64{b.LimitBuy, b.LimitSell, b.MarketBuy, b.MarketSell, b.Cancel}
}

// SizeDistribution is the lognormal order-size sampler's parameters.
type SizeDistribution struct {
	Mu      float64 `mapstructure:"mu"`
	Sigma   float64 `mapstructure:"sigma"`
	MinSize uint64  `mapstructure:"min_size"`
	MaxSize uint64  `mapstructure:"max_size"`
}

// PlacementDistribution is the limit-price displacement sampler's parameters.
type PlacementDistribution struct {
	PGeom       float64 `mapstructure:"p_geom"`
	MaxDistance int     `mapstructure:"max_distance"`
	RPointmass  float64 `mapstructure:"r_pointmass"`
	AlphaZipf   float64 `mapstructure:"alpha_zipf"`
}

// OrderflowParams configures the synthetic order-flow generator.
type OrderflowParams struct {
	OrderBernoulli        OrderBernoulli        `mapstructure:"order_bernoulli"`
	SizeDistribution      SizeDistribution      `mapstructure:"size_distribution"`
	PlacementDistribution PlacementDistribution `mapstructure:"placement_distribution"`
}

// MarketMakerParams tunes the symmetric market-making agent.
type MarketMakerParams struct {
	BaseSpread          float64 `mapstructure:"base_spread"`
	InventoryLimit      uint64  `mapstructure:"inventory_limit"`
	Gamma               float64 `mapstructure:"gamma"`
	QuoteSize           uint64  `mapstructure:"quote_size"`
	QuoteUpdateInterval float64 `mapstructure:"quote_update_interval"`
}

// TWAPParams tunes the TWAP execution strategy.
type TWAPParams struct {
	Intervals int     `mapstructure:"intervals"`
	Duration  float64 `mapstructure:"duration"`
}

// TakerParams groups execution-strategy tuning shared by taker agents.
type TakerParams struct {
	TWAP TWAPParams `mapstructure:"twap"`
}

// StrategyParams groups every concrete strategy's tuning knobs.
type StrategyParams struct {
	MarketMaker MarketMakerParams `mapstructure:"market_maker"`
	Taker       TakerParams       `mapstructure:"taker"`
}

// Load reads config from a YAML file, applying MARKETSIM_* environment
// overrides (e.g. MARKETSIM_SIM_PARAMS_RANDOM_SEED), and validates it.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("MARKETSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks every numeric bound and closed-set constraint named in
// the external configuration contract.
func (c *Config) Validate() error {
	s := c.Sim
	switch {
	case s.Horizon <= 0:
		return fmt.Errorf("sim_params.horizon must be > 0")
	case s.Dt <= 0:
		return fmt.Errorf("sim_params.dt must be > 0")
	case s.TickSize <= 0:
		return fmt.Errorf("sim_params.tick_size must be > 0")
	case s.InitialPrice <= 0:
		return fmt.Errorf("sim_params.initial_price must be > 0")
	case s.RecordInterval < s.Dt:
		return fmt.Errorf("sim_params.record_interval must be >= dt")
	}

	weights := c.Orderflow.OrderBernoulli.Weights()
	var sum float64
	for _, w := range weights {
		if w < 0 {
			return fmt.Errorf("orderflow_params.order_bernoulli: weights must be nonnegative")
		}
		sum += w
	}
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("orderflow_params.order_bernoulli: weights must sum to 1, got %f", sum)
	}

	sz := c.Orderflow.SizeDistribution
	if sz.MinSize < 1 {
		return fmt.Errorf("orderflow_params.size_distribution.min_size must be >= 1")
	}
	if sz.MaxSize < sz.MinSize {
		return fmt.Errorf("orderflow_params.size_distribution.max_size must be >= min_size")
	}

	pl := c.Orderflow.PlacementDistribution
	if pl.PGeom <= 0 || pl.PGeom > 1 {
		return fmt.Errorf("orderflow_params.placement_distribution.p_geom must be in (0,1]")
	}
	if pl.MaxDistance < 1 {
		return fmt.Errorf("orderflow_params.placement_distribution.max_distance must be >= 1")
	}
	if pl.RPointmass < 0 || pl.RPointmass > 1 {
		return fmt.Errorf("orderflow_params.placement_distribution.r_pointmass must be in [0,1]")
	}
	if pl.AlphaZipf <= 1 {
		return fmt.Errorf("orderflow_params.placement_distribution.alpha_zipf must be > 1")
	}

	if c.Strategy.Taker.TWAP.Intervals < 1 {
		return fmt.Errorf("strategy_params.taker.twap.intervals must be >= 1")
	}
	if c.Strategy.Taker.TWAP.Duration <= 0 {
		return fmt.Errorf("strategy_params.taker.twap.duration must be > 0")
	}

	return nil
}
