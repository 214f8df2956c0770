package main

import (
	"fmt"
	"runtime"
	"slices"
)

const (
	modeEphemeral = "ephemeral"
	modePooled    = "pooled"
	modeBoth      = "both"
)

var operations = []string{"mapreduce", "reduce", "maximum", "count", "map"}

// Config is the resolved benchmark configuration. Keys match the flag names
// and the YAML config file.
type Config struct {
	Elements   int    `yaml:"elements"`
	Threads    []int  `yaml:"threads"`
	Workers    int    `yaml:"workers"`
	Iterations int    `yaml:"iterations"`
	Warmup     int    `yaml:"warmup"`
	Operation  string `yaml:"operation"`
	Mode       string `yaml:"mode"`
	Work       int    `yaml:"work"`
	RateLimit  int    `yaml:"rate-limit"`
	Affinity   bool   `yaml:"affinity"`
	LogLevel   string `yaml:"log-level"`
	Metrics    bool   `yaml:"metrics"`
}

// validate checks c and fills in derived defaults.
func (c *Config) validate() error {
	if c.Elements < 0 {
		return fmt.Errorf("elements must not be negative, got %d", c.Elements)
	}
	if len(c.Threads) == 0 {
		return fmt.Errorf("at least one thread count is required")
	}
	for _, t := range c.Threads {
		if t < 1 {
			return fmt.Errorf("thread counts must be at least 1, got %d", t)
		}
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Iterations < 1 {
		return fmt.Errorf("iterations must be at least 1, got %d", c.Iterations)
	}
	if c.Warmup < 0 {
		return fmt.Errorf("warmup must not be negative, got %d", c.Warmup)
	}
	if !slices.Contains(operations, c.Operation) {
		return fmt.Errorf("unknown operation %q, want one of %v", c.Operation, operations)
	}
	switch c.Mode {
	case modeEphemeral, modePooled, modeBoth:
	default:
		return fmt.Errorf("unknown mode %q, want %s, %s or %s", c.Mode, modeEphemeral, modePooled, modeBoth)
	}
	if c.Work < 0 {
		return fmt.Errorf("work must not be negative, got %d", c.Work)
	}
	return nil
}

// modes lists the execution modes selected by c.Mode.
func (c *Config) modes() []string {
	if c.Mode == modeBoth {
		return []string{modeEphemeral, modePooled}
	}
	return []string{c.Mode}
}
