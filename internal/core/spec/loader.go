// Package spec loads writer job definitions and turns them into validated
// core.WriterConfig values.
package spec

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"

	"dario.cat/mergo"
	"github.com/dagucloud/txtwriter/internal/cmn/fileutil"
	"github.com/dagucloud/txtwriter/internal/cmn/logger"
	"github.com/dagucloud/txtwriter/internal/cmn/logger/tag"
	"github.com/dagucloud/txtwriter/internal/core"
	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// parameterKey nests the writer options in plugin style job files.
const parameterKey = "parameter"

// LoadOptions contains options for loading a job definition.
type LoadOptions struct {
	baseConfig string   // Path to a base definition merged beneath the job.
	dotenv     []string // Env files consulted when expanding ${VAR} references.
}

// LoadOption is a function type for setting LoadOptions.
type LoadOption func(*LoadOptions)

// WithBaseConfig sets a base definition. Keys in the job override it.
func WithBaseConfig(file string) LoadOption {
	return func(o *LoadOptions) {
		o.baseConfig = file
	}
}

// WithDotEnv sets env files whose values take precedence over the process
// environment when expanding string values.
func WithDotEnv(files ...string) LoadOption {
	return func(o *LoadOptions) {
		o.dotenv = append(o.dotenv, files...)
	}
}

// Load reads and validates the job definition in file.
func Load(ctx context.Context, file string, opts ...LoadOption) (*core.WriterConfig, error) {
	raw, err := readYAMLFile(file)
	if err != nil {
		return nil, err
	}
	return load(ctx, raw, opts...)
}

// LoadYAML validates a job definition held in memory.
func LoadYAML(ctx context.Context, data []byte, opts ...LoadOption) (*core.WriterConfig, error) {
	raw, err := unmarshalData(data)
	if err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, err, "failed to parse job definition")
	}
	return load(ctx, raw, opts...)
}

func load(ctx context.Context, raw map[string]any, opts ...LoadOption) (*core.WriterConfig, error) {
	var options LoadOptions
	for _, opt := range opts {
		opt(&options)
	}

	raw = unwrapParameter(raw)

	if options.baseConfig != "" {
		base, err := readYAMLFile(options.baseConfig)
		if err != nil {
			return nil, err
		}
		base = unwrapParameter(base)
		if err := merge(base, raw); err != nil {
			return nil, core.WrapError(core.ErrConfigInvalid, err, "failed to merge base config %s", options.baseConfig)
		}
		raw = base
		logger.Debug(ctx, "Merged base config", tag.File(options.baseConfig))
	}

	if len(options.dotenv) > 0 {
		env, err := godotenv.Read(options.dotenv...)
		if err != nil {
			return nil, core.WrapError(core.ErrConfigInvalid, err, "failed to read dotenv files")
		}
		raw = expandMap(raw, func(key string) string {
			if v, ok := env[key]; ok {
				return v
			}
			return os.Getenv(key)
		})
	}

	return Build(ctx, raw)
}

// readYAMLFile reads the contents of the file into a map.
func readYAMLFile(file string) (map[string]any, error) {
	if !fileutil.IsYAMLFile(file) {
		return nil, core.NewError(core.ErrConfigInvalid, "job file %q must have a .yaml or .yml extension", file)
	}
	data, err := os.ReadFile(file) //nolint:gosec
	if err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, err, "failed to read file %q", file)
	}
	raw, err := unmarshalData(data)
	if err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, err, "failed to parse file %q", file)
	}
	return raw, nil
}

// unmarshalData unmarshals the data into a map. Empty input yields an
// empty map.
func unmarshalData(data []byte) (map[string]any, error) {
	var cm map[string]any
	err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&cm)
	if errors.Is(err, io.EOF) {
		err = nil
	}
	if cm == nil {
		cm = map[string]any{}
	}
	return cm, err
}

// unwrapParameter returns the "parameter" block when the job is written in
// the plugin layout ({name: ..., parameter: {...}}).
func unwrapParameter(raw map[string]any) map[string]any {
	if p, ok := raw[parameterKey].(map[string]any); ok {
		return p
	}
	return raw
}

// decode decodes the configuration map into a definition. Unknown keys are
// rejected.
func decode(cm map[string]any) (*definition, error) {
	d := new(definition)
	md, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           d,
	})
	if err != nil {
		return nil, err
	}
	return d, md.Decode(cm)
}

// merge overlays src onto dst; values present in src win.
func merge(dst, src map[string]any) error {
	return mergo.Merge(&dst, src, mergo.WithOverride)
}

func expandMap(m map[string]any, mapping func(string) string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = expandValue(v, mapping)
	}
	return out
}

func expandValue(v any, mapping func(string) string) any {
	switch v := v.(type) {
	case string:
		return os.Expand(v, mapping)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = expandValue(e, mapping)
		}
		return out
	case map[string]any:
		return expandMap(v, mapping)
	default:
		return v
	}
}
