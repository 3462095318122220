package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/assets/internal/capability"
	"github.com/conduit-lang/assets/internal/cli/config"
	"github.com/conduit-lang/assets/internal/codec"
	"github.com/conduit-lang/assets/internal/logging"
	"github.com/conduit-lang/assets/internal/setup"
)

var (
	configPath string
	sourceKind string
	sourceRoot string
	logLevel   string
)

func addGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Config file (default: assets.yml in the current or a parent directory)")
	flags.StringVar(&sourceKind, "source", "", "Source kind: file or archive")
	flags.StringVarP(&sourceRoot, "root", "r", "", "Asset directory for the file source")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if changed(cmd, "source") {
		cfg.Source.Kind = sourceKind
	}
	if changed(cmd, "root") {
		cfg.Source.Root = sourceRoot
	}
	if changed(cmd, "log-level") {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStack builds the asset stack described by the configuration.
func openStack(cmd *cobra.Command) (*setup.Stack, *zap.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	return buildStack(cfg)
}

func buildStack(cfg *config.Config) (*setup.Stack, *zap.Logger, error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}

	stack, err := setup.Build(cfg, logger)
	if err != nil {
		logger.Sync()
		return nil, nil, err
	}
	return stack, logger, nil
}

func changed(cmd *cobra.Command, name string) bool {
	f := cmd.Flag(name)
	return f != nil && f.Changed
}

func kindTag(kind string) (capability.Tag, error) {
	tag, ok := codec.KindTag(kind)
	if !ok {
		return capability.Tag{}, fmt.Errorf("unknown type %q (want one of %s)", kind, strings.Join(codec.Kinds(), ", "))
	}
	return tag, nil
}
