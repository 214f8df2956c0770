package main

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "SHARDBENCH"

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "shardbench [flags]",
		Short: "Compare ephemeral and pooled shard execution",
		Long: `shardbench runs one of the parallel operations over a generated input
for every requested thread count, once with a fresh goroutine per shard and
once on a shared worker pool, and prints the median time and speedup of each.

Every flag can also be set with a SHARDBENCH_<FLAG> environment variable
(dashes become underscores) or in a YAML file passed with --config-file.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v, cfgFile)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "YAML config file; flags and environment override its values")
	bindFlags(cmd.Flags())
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		panic(fmt.Errorf("binding flags: %w", err))
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return cmd
}

func bindFlags(fs *flag.FlagSet) {
	fs.Int("elements", 2_000_000, "number of input elements")
	fs.IntSlice("threads", []int{1, 2, 4, 8}, "thread counts to benchmark")
	fs.Int("workers", 0, "worker pool size for pooled mode (0 = number of CPUs)")
	fs.Int("iterations", 5, "measured runs per configuration; the median is reported")
	fs.Int("warmup", 1, "unmeasured runs before each configuration")
	fs.String("operation", "mapreduce", fmt.Sprintf("operation to run (%s)", strings.Join(operations, ", ")))
	fs.String("mode", modeBoth, "execution mode: ephemeral, pooled or both")
	fs.Int("work", 64, "busy-loop rounds per element, simulating CPU-bound work")
	fs.Int("rate-limit", 0, "pooled mode only: max shards started per second (0 = unlimited)")
	fs.Bool("affinity", false, "pooled mode only: pin workers to CPU cores")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.Bool("metrics", false, "print the worker pool's Prometheus metrics after the run")
}

// loadConfig reads the optional YAML file into v and decodes the merged
// flag, environment and file values.
func loadConfig(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error while reading the config file: %w", err)
		}
	}

	var cfg Config
	err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	})
	if err != nil {
		return nil, fmt.Errorf("error while unmarshaling the config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
