package core

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Defaults applied when a job definition leaves an option unset.
const (
	DefaultEncoding       = "UTF-8"
	DefaultFieldDelimiter = ","
	DefaultNullFormat     = "null"
	DefaultSuffix         = ""
	DefaultFileFormat     = FileFormatText
	// DefaultMaxFileSize is 10 MiB blocks × 10000. Reserved; nothing enforces it.
	DefaultMaxFileSize int64 = 1024 * 1024 * 10 * 10000
)

// WriteMode is the conflict policy applied to the target directory before
// any task runs.
type WriteMode string

const (
	WriteModeTruncate    WriteMode = "truncate"
	WriteModeAppend      WriteMode = "append"
	WriteModeNonConflict WriteMode = "nonConflict"
)

// SupportedWriteModes lists the accepted write modes.
var SupportedWriteModes = []WriteMode{WriteModeTruncate, WriteModeAppend, WriteModeNonConflict}

// ParseWriteMode trims s and matches it against the supported modes.
func ParseWriteMode(s string) (WriteMode, error) {
	m := WriteMode(strings.TrimSpace(s))
	if !slices.Contains(SupportedWriteModes, m) {
		return "", NewError(ErrIllegalValue,
			"only truncate, append, nonConflict are supported, got writeMode %q", s)
	}
	return m, nil
}

// FileFormat selects the serialization strategy.
type FileFormat string

const (
	FileFormatCSV  FileFormat = "csv"
	FileFormatText FileFormat = "text"
)

// ParseFileFormat returns the default format for an empty value.
func ParseFileFormat(s string) (FileFormat, error) {
	switch FileFormat(s) {
	case "":
		return DefaultFileFormat, nil
	case FileFormatCSV, FileFormatText:
		return FileFormat(s), nil
	default:
		return "", NewError(ErrIllegalValue, "fileFormat %q is not supported, use csv or text", s)
	}
}

// Compression names the optional codec wrapping the output file.
type Compression string

const (
	CompressionNone  Compression = ""
	CompressionGzip  Compression = "gzip"
	CompressionBzip2 Compression = "bzip2"
)

// ParseCompression matches case-insensitively; blank means no compression.
func ParseCompression(s string) (Compression, error) {
	c := Compression(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CompressionNone, CompressionGzip, CompressionBzip2:
		return c, nil
	default:
		return "", NewError(ErrIllegalValue,
			"only gzip, bzip2 compression is supported, got compress %q", s)
	}
}

// WriterConfig is the resolved configuration of one write task. Treat values
// as immutable: derive task configurations with WithFileName.
type WriterConfig struct {
	Path           string      `yaml:"path"`
	FileName       string      `yaml:"fileName"`
	WriteMode      WriteMode   `yaml:"writeMode"`
	FieldDelimiter string      `yaml:"fieldDelimiter"`
	Encoding       string      `yaml:"encoding"`
	Compress       Compression `yaml:"compress,omitempty"`
	NullFormat     *string     `yaml:"nullFormat,omitempty"`
	DateFormat     string      `yaml:"dateFormat,omitempty"`
	FileFormat     FileFormat  `yaml:"fileFormat"`
	Header         []string    `yaml:"header,omitempty"`
	Suffix         string      `yaml:"suffix,omitempty"`
	MaxFileSize    int64       `yaml:"maxFileSize,omitempty"`
}

// WithFileName returns a copy of c targeting the given file name.
func (c WriterConfig) WithFileName(name string) WriterConfig {
	out := c
	out.FileName = name
	out.Header = slices.Clone(c.Header)
	return out
}

// NullString returns the text written for null columns. An explicitly
// configured empty string is kept; an unset value means DefaultNullFormat.
func (c WriterConfig) NullString() string {
	if c.NullFormat == nil {
		return DefaultNullFormat
	}
	return *c.NullFormat
}

// DelimiterLen returns the delimiter length in characters.
func (c WriterConfig) DelimiterLen() int {
	return utf8.RuneCountInString(c.FieldDelimiter)
}

// Validate checks the cross-field rules of a resolved configuration.
func (c WriterConfig) Validate() error {
	if c.FileName == "" {
		return NewError(ErrRequiredValue, "fileName is required")
	}
	if c.Path == "" {
		return NewError(ErrRequiredValue, "path is required")
	}
	if !slices.Contains(SupportedWriteModes, c.WriteMode) {
		return NewError(ErrIllegalValue, "unsupported writeMode %q", c.WriteMode)
	}
	return ValidateDelimiter(c.FileFormat, c.FieldDelimiter)
}

// ValidateDelimiter enforces that csv takes exactly one delimiter character
// while text accepts one or more.
func ValidateDelimiter(format FileFormat, delimiter string) error {
	n := utf8.RuneCountInString(delimiter)
	if n == 0 {
		return NewError(ErrIllegalValue, "fieldDelimiter must not be empty")
	}
	if n > 1 && format != FileFormatText {
		return NewError(ErrIllegalValue,
			"multi-character fieldDelimiter is only supported by the text format, got %q with fileFormat %q",
			delimiter, format)
	}
	return nil
}
