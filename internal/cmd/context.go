package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dagucloud/txtwriter/internal/cmn/config"
	"github.com/dagucloud/txtwriter/internal/cmn/fileutil"
	"github.com/dagucloud/txtwriter/internal/cmn/logger"
	"github.com/dagucloud/txtwriter/internal/cmn/logger/tag"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Context holds the configuration for a command.
type Context struct {
	context.Context

	Command *cobra.Command
	Flags   []commandLineFlag
	Config  *config.Config
	Quiet   bool

	logFile *os.File
}

// NewContext loads the application config, sets up the logger and logs any
// warnings collected while loading.
func NewContext(cmd *cobra.Command, flags []commandLineFlag) (*Context, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	v := viper.New()
	if err := bindFlags(v, cmd, flags...); err != nil {
		return nil, err
	}

	var loaderOpts []config.ConfigLoaderOption
	if cfgPath, _ := cmd.Flags().GetString("config"); cfgPath != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(cfgPath))
	}

	cfg, err := config.NewConfigLoader(v, loaderOpts...).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var opts []logger.Option
	if cfg.Core.Debug || os.Getenv("DEBUG") != "" {
		opts = append(opts, logger.WithDebug())
	}
	if cfg.Core.Quiet {
		opts = append(opts, logger.WithQuiet())
	}
	if cfg.Core.LogFormat != "" {
		opts = append(opts, logger.WithFormat(cfg.Core.LogFormat))
	}
	opts = append(opts, logger.WithConsole(cmd.ErrOrStderr()))

	var logFile *os.File
	if cfg.Paths.LogFile != "" {
		logFile, err = fileutil.OpenOrCreateFile(cfg.Paths.LogFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", cfg.Paths.LogFile, err)
		}
		opts = append(opts, logger.WithWriter(logFile))
	}
	ctx = logger.WithLogger(ctx, logger.NewLogger(opts...))

	for _, w := range cfg.Warnings {
		logger.Warn(ctx, w)
	}
	if cfg.Paths.ConfigFileUsed != "" {
		logger.Debug(ctx, "Config loaded", tag.File(cfg.Paths.ConfigFileUsed))
	}

	return &Context{
		Context: ctx,
		Command: cmd,
		Flags:   flags,
		Config:  cfg,
		Quiet:   cfg.Core.Quiet,
		logFile: logFile,
	}, nil
}

// Close releases the log file, if any.
func (c *Context) Close() error {
	if c.logFile == nil {
		return nil
	}
	err := c.logFile.Close()
	c.logFile = nil
	return err
}

// StringParam retrieves a string flag value with surrounding quotes removed.
func (c *Context) StringParam(name string) (string, error) {
	val, err := c.Command.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to get flag %s: %w", name, err)
	}
	return strings.Trim(strings.TrimSpace(val), `"'`), nil
}

// ListParam splits a comma separated flag value, dropping blank items.
func (c *Context) ListParam(name string) ([]string, error) {
	val, err := c.StringParam(name)
	if err != nil {
		return nil, err
	}
	var items []string
	for item := range strings.SplitSeq(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items, nil
}

// NewCommand wires flags and the shared setup into cmd and runs runFunc.
func NewCommand(cmd *cobra.Command, flags []commandLineFlag, runFunc func(cmd *Context, args []string) error) *cobra.Command {
	initFlags(cmd, flags...)
	cmd.SilenceUsage = true

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx, err := NewContext(cmd, flags)
		if err != nil {
			return fmt.Errorf("initialization error: %w", err)
		}
		defer func() {
			_ = ctx.Close()
		}()

		if err := runFunc(ctx, args); err != nil {
			logger.Error(ctx, "Command failed", tag.Error(err))
			return err
		}
		return nil
	}

	return cmd
}
