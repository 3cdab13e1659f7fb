package core_test

import (
	"testing"

	"github.com/dagucloud/txtwriter/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWriteMode(t *testing.T) {
	t.Parallel()

	m, err := core.ParseWriteMode("  nonConflict ")
	require.NoError(t, err)
	assert.Equal(t, core.WriteModeNonConflict, m)

	_, err = core.ParseWriteMode("overwrite")
	assert.True(t, core.IsCode(err, core.ErrIllegalValue))
}

func TestParseFileFormat(t *testing.T) {
	t.Parallel()

	f, err := core.ParseFileFormat("")
	require.NoError(t, err)
	assert.Equal(t, core.FileFormatText, f)

	f, err = core.ParseFileFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, core.FileFormatCSV, f)

	_, err = core.ParseFileFormat("parquet")
	assert.True(t, core.IsCode(err, core.ErrIllegalValue))
}

func TestParseCompression(t *testing.T) {
	t.Parallel()

	c, err := core.ParseCompression(" BZIP2 ")
	require.NoError(t, err)
	assert.Equal(t, core.CompressionBzip2, c)

	_, err = core.ParseCompression("lz4")
	assert.True(t, core.IsCode(err, core.ErrIllegalValue))
}

func TestWriterConfig(t *testing.T) {
	t.Parallel()

	base := core.WriterConfig{
		Path:           "/out",
		FileName:       "orders",
		WriteMode:      core.WriteModeAppend,
		FieldDelimiter: "::",
		FileFormat:     core.FileFormatText,
		Header:         []string{"a", "b"},
	}

	t.Run("WithFileNameCopies", func(t *testing.T) {
		t.Parallel()
		derived := base.WithFileName("orders__x")
		derived.Header[0] = "z"
		assert.Equal(t, "orders", base.FileName)
		assert.Equal(t, "a", base.Header[0])
		assert.Equal(t, "orders__x", derived.FileName)
	})

	t.Run("Validate", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, base.Validate())
		assert.Equal(t, 2, base.DelimiterLen())

		csv := base
		csv.FileFormat = core.FileFormatCSV
		assert.True(t, core.IsCode(csv.Validate(), core.ErrIllegalValue))

		noName := base
		noName.FileName = ""
		assert.True(t, core.IsCode(noName.Validate(), core.ErrRequiredValue))

		noPath := base
		noPath.Path = ""
		assert.True(t, core.IsCode(noPath.Validate(), core.ErrRequiredValue))

		badMode := base
		badMode.WriteMode = "x"
		assert.True(t, core.IsCode(badMode.Validate(), core.ErrIllegalValue))
	})

	t.Run("DelimiterCountsRunes", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, core.ValidateDelimiter(core.FileFormatCSV, "¦"))
		assert.Error(t, core.ValidateDelimiter(core.FileFormatText, ""))
	})
}
