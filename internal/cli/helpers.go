package cli

import (
	"fmt"
	"path/filepath"

	"github.com/glorpus-work/woezel/internal/logger"
	"github.com/glorpus-work/woezel/pkg/archive"
	"github.com/glorpus-work/woezel/pkg/config"
	"github.com/glorpus-work/woezel/pkg/hooks"
	"github.com/glorpus-work/woezel/pkg/index"
	"github.com/glorpus-work/woezel/pkg/orchestrator"
	"github.com/glorpus-work/woezel/pkg/transport"
)

// These variables will be set by the main package
var (
	ConfigPath *string
	Verbose    *bool
	LogFormat  *string
)

// transportOptions are applied to every transport client the commands build.
var transportOptions []transport.Option

// loadConfig loads the configuration, applies the global flags and
// initializes the logger from the result.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}
	if LogFormat != nil && *LogFormat != "" {
		cfg.Settings.LogFormat = *LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	initLogger(cfg)
	return cfg, nil
}

func initLogger(cfg *config.Config) {
	format, err := logger.ParseFormat(cfg.Settings.LogFormat)
	if err != nil {
		format = logger.FormatText
	}
	logger.InitLogger(cfg.Settings.LogLevel, format)
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		// An empty path makes LoadConfig fail with a descriptive error.
		logger.Warn("Failed to get default config path, using empty path", logger.Fields{"error": err})
		return ""
	}
	return defaultPath
}

// hooksDir is the directory next to the config file holding <hook-type>.tengo scripts.
func hooksDir() string {
	path := getConfigPath()
	if path == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(path), "hooks")
}

func loadTransport(cfg *config.Config) *transport.Client {
	opts := append([]transport.Option{transport.WithUserAgent(userAgent())}, transportOptions...)
	return transport.NewClient(cfg.Settings.DialTimeout, opts...)
}

func loadIndexClient(cfg *config.Config, tr index.Opener) *index.Client {
	return index.NewClient(tr, cfg.Settings.IndexHost, cfg.Settings.Basket)
}

// loadHookExecutor registers hooks from the config file first, then from the
// hooks directory; a script file replaces an inline hook of the same type.
// It returns nil when no hook is configured.
func loadHookExecutor(cfg *config.Config) (*hooks.TengoExecutor, error) {
	executor := hooks.NewTengoExecutor()
	if cfg.Hooks.PreInstall != "" {
		executor.AddScript(hooks.PreInstall, cfg.Hooks.PreInstall)
	}
	if cfg.Hooks.PostInstall != "" {
		executor.AddScript(hooks.PostInstall, cfg.Hooks.PostInstall)
	}
	if dir := hooksDir(); dir != "" {
		if err := hooks.LoadHooksFromDir(executor, dir); err != nil {
			return nil, err
		}
	}

	if !executor.HasScript(hooks.PreInstall) && !executor.HasScript(hooks.PostInstall) {
		return nil, nil
	}
	return executor, nil
}

func loadOrchestrator(cfg *config.Config, events orchestrator.Hooks) (*orchestrator.Orchestrator, error) {
	tr := loadTransport(cfg)

	bits := cfg.EffectiveWindowBits()
	logger.Debug("archive installer", logger.Fields{"window_bits": bits, "chunk_size": cfg.Settings.ChunkSize})

	orch := &orchestrator.Orchestrator{
		Index:     loadIndexClient(cfg, tr),
		Transport: tr,
		Archive:   archive.NewInstaller(bits, cfg.Settings.ChunkSize),
		Hooks:     events,
	}

	executor, err := loadHookExecutor(cfg)
	if err != nil {
		return nil, err
	}
	if executor != nil {
		orch.Scripts = executor
	}
	return orch, nil
}

func userAgent() string {
	return "woezel/" + Version
}
