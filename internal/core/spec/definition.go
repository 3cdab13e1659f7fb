package spec

// definition is the raw shape of a writer job as read from YAML. Pointer
// fields distinguish an absent key from an empty value.
type definition struct {
	// Path is the output directory.
	Path *string `mapstructure:"path"`
	// FileName is the file name prefix shared by all tasks.
	FileName *string `mapstructure:"fileName"`
	// WriteMode is one of truncate, append or nonConflict.
	WriteMode *string `mapstructure:"writeMode"`
	// FieldDelimiter separates fields; defaults to a comma when absent.
	FieldDelimiter *string `mapstructure:"fieldDelimiter"`
	// Encoding is the output charset.
	Encoding string `mapstructure:"encoding"`
	// Compress is gzip, bzip2 or blank.
	Compress string `mapstructure:"compress"`
	// NullFormat is written for null columns.
	NullFormat *string `mapstructure:"nullFormat"`
	// DateFormat is the pattern applied to date columns.
	DateFormat *string `mapstructure:"dateFormat"`
	// Format is the deprecated alias of DateFormat.
	Format *string `mapstructure:"format"`
	// FileFormat is csv or text.
	FileFormat string `mapstructure:"fileFormat"`
	// Header is written as the first line of every file.
	Header []string `mapstructure:"header"`
	// Suffix is appended to the file name.
	Suffix string `mapstructure:"suffix"`
	// MaxFileSize is accepted for compatibility and not enforced.
	MaxFileSize *int64 `mapstructure:"maxFileSize"`
}
