package spec

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/dagucloud/txtwriter/internal/cmn/logger"
	"github.com/dagucloud/txtwriter/internal/cmn/logger/tag"
	"github.com/dagucloud/txtwriter/internal/core"
	"github.com/dagucloud/txtwriter/internal/runtime/pipeline"
	"github.com/dagucloud/txtwriter/internal/runtime/stream"
)

// Build decodes a raw definition and validates it. Defaults are applied for
// every optional key.
func Build(ctx context.Context, raw map[string]any) (*core.WriterConfig, error) {
	def, err := decode(raw)
	if err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, err, "invalid job definition")
	}
	return build(ctx, def)
}

type builderFunc func(ctx context.Context, def *definition, cfg *core.WriterConfig) error

// builders run in order; the first failure stops the build.
var builders = []struct {
	name string
	fn   builderFunc
}{
	{"required", buildRequired},
	{"writeMode", buildWriteMode},
	{"encoding", buildEncoding},
	{"compress", buildCompress},
	{"fieldDelimiter", buildDelimiter},
	{"fileFormat", buildFileFormat},
	{"dateFormat", buildDateFormat},
	{"misc", buildMisc},
}

func build(ctx context.Context, def *definition) (*core.WriterConfig, error) {
	cfg := new(core.WriterConfig)
	for _, b := range builders {
		if err := b.fn(ctx, def, cfg); err != nil {
			logger.Debug(ctx, "Job definition rejected", tag.Key(b.name), tag.Error(err))
			return nil, err
		}
	}
	return cfg, nil
}

func required(value *string, key string) (string, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return "", core.NewError(core.ErrRequiredValue, "%s is required", key)
	}
	return *value, nil
}

func buildRequired(_ context.Context, def *definition, cfg *core.WriterConfig) error {
	var err error
	if cfg.FileName, err = required(def.FileName, "fileName"); err != nil {
		return err
	}
	if cfg.Path, err = required(def.Path, "path"); err != nil {
		return err
	}
	_, err = required(def.WriteMode, "writeMode")
	return err
}

func buildWriteMode(_ context.Context, def *definition, cfg *core.WriterConfig) error {
	mode, err := core.ParseWriteMode(*def.WriteMode)
	if err != nil {
		return err
	}
	cfg.WriteMode = mode
	return nil
}

func buildEncoding(ctx context.Context, def *definition, cfg *core.WriterConfig) error {
	name := strings.TrimSpace(def.Encoding)
	if name == "" {
		logger.Warn(ctx, "Encoding is blank, using the default", tag.Encoding(core.DefaultEncoding))
		cfg.Encoding = core.DefaultEncoding
		return nil
	}
	if _, err := stream.LookupEncoding(name); err != nil {
		return core.WrapError(core.ErrIllegalValue, err, "unsupported encoding %q", name)
	}
	cfg.Encoding = name
	return nil
}

func buildCompress(_ context.Context, def *definition, cfg *core.WriterConfig) error {
	c, err := stream.ParseCodec(def.Compress)
	if err != nil {
		return err
	}
	cfg.Compress = c
	return nil
}

func buildDelimiter(ctx context.Context, def *definition, cfg *core.WriterConfig) error {
	if def.FieldDelimiter == nil {
		logger.Warn(ctx, "No field delimiter configured, using the default", tag.Delimiter(core.DefaultFieldDelimiter))
		cfg.FieldDelimiter = core.DefaultFieldDelimiter
		return nil
	}
	d := *def.FieldDelimiter
	if d == "" {
		return core.NewError(core.ErrIllegalValue, "fieldDelimiter must not be empty")
	}
	if utf8.RuneCountInString(d) > 1 {
		logger.Warn(ctx, "Field delimiter is not a single character", tag.Delimiter(d))
	}
	cfg.FieldDelimiter = d
	return nil
}

func buildFileFormat(_ context.Context, def *definition, cfg *core.WriterConfig) error {
	f, err := core.ParseFileFormat(strings.TrimSpace(def.FileFormat))
	if err != nil {
		return err
	}
	cfg.FileFormat = f
	return core.ValidateDelimiter(cfg.FileFormat, cfg.FieldDelimiter)
}

func buildDateFormat(ctx context.Context, def *definition, cfg *core.WriterConfig) error {
	pattern := def.DateFormat
	if def.Format != nil {
		logger.Warn(ctx, "The format key is deprecated, use dateFormat; dateFormat wins when both are set")
		if pattern == nil {
			pattern = def.Format
		}
	}
	if pattern == nil || strings.TrimSpace(*pattern) == "" {
		return nil
	}
	if _, err := pipeline.CompileDateFormat(*pattern); err != nil {
		return err
	}
	cfg.DateFormat = *pattern
	return nil
}

func buildMisc(_ context.Context, def *definition, cfg *core.WriterConfig) error {
	if def.NullFormat != nil {
		nf := *def.NullFormat
		cfg.NullFormat = &nf
	}
	cfg.Header = def.Header
	cfg.Suffix = def.Suffix
	cfg.MaxFileSize = core.DefaultMaxFileSize
	if def.MaxFileSize != nil {
		cfg.MaxFileSize = *def.MaxFileSize
	}
	return cfg.Validate()
}
