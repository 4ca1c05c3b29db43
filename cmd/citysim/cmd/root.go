package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// flexBool is a pflag.Value that accepts the boolean spellings §6.6
// requires every tool to parse: 0|1|true|false|yes|no|on|off,
// case-insensitively — a superset of strconv.ParseBool's vocabulary.
type flexBool struct{ v bool }

func (b *flexBool) String() string { return strconv.FormatBool(b.v) }
func (b *flexBool) Type() string   { return "bool" }
func (b *flexBool) Set(s string) error {
	parsed, err := parseFlexBool(s)
	if err != nil {
		return err
	}
	b.v = parsed
	return nil
}

func parseFlexBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on", "t":
		return true, nil
	case "0", "false", "no", "off", "f":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q (want 0|1|true|false|yes|no|on|off)", s)
	}
}

var (
	cfgFile        string
	seedFlag       uint64
	sizeFlag       string
	loadFlag       string
	outFlag        string
	daysFlag       int
	autobuildDays  int
	requireOutside = flexBool{v: true}
	verboseFlag    bool
)

var rootCmd = &cobra.Command{
	Use:          "citysim",
	Short:        "Deterministic procedural city simulator",
	SilenceUsage: true,
	Long: `citysim drives the procicity engine from the command line: generate a
world, advance it, run the autonomous builder, transform it, hash it for
determinism checks, and export per-tile or per-day CSV reports.

Global Flags:
  --seed <u64>                deterministic world seed
  --size <WxH>                world dimensions, e.g. 80x60
  --load <path>                load a save instead of generating
  --days <N>                  simulated days to advance
  --autobuild-days <N>        days to run the autonomous builder
  --require-outside <0|1>     require outside road connection
  --out <path>                output file`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file to read (none is read when unset)")
	flags.Uint64Var(&seedFlag, "seed", 1, "deterministic world seed")
	flags.StringVar(&sizeFlag, "size", "64x64", "world dimensions WxH")
	flags.StringVar(&loadFlag, "load", "", "load a save file instead of generating")
	flags.StringVar(&outFlag, "out", "", "output file path")
	flags.IntVar(&daysFlag, "days", 0, "simulated days to advance")
	flags.IntVar(&autobuildDays, "autobuild-days", 0, "days to run the autonomous builder")
	flags.Var(&requireOutside, "require-outside", "require outside road connection (0|1|true|false|yes|no|on|off)")
	flags.BoolVar(&verboseFlag, "verbose", false, "print progress to stderr")

	for _, name := range []string{"seed", "size", "load", "out", "days", "autobuild-days", "require-outside", "verbose"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		_ = viper.ReadInConfig()
	}
	viper.SetEnvPrefix("CITYSIM")
	viper.AutomaticEnv()
}

// parseSize parses a "WxH" string (§6.6's --size contract).
func parseSize(s string) (int, int, error) {
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid --size %q, want WxH (e.g. 80x60)", s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("invalid --size width in %q", s)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("invalid --size height in %q", s)
	}
	return w, h, nil
}

// logger is the single slog.Logger attached at startup (§5: the simulation
// path itself performs no logging; only the CLI driver does). Verbosity
// gates the handler level rather than skipping calls, so callers can log
// unconditionally.
var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

func initLogger() {
	level := slog.LevelWarn
	if verboseFlag {
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func logf(format string, args ...interface{}) {
	logger.Info(fmt.Sprintf(format, args...))
}
