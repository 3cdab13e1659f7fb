// Package planner reconciles the target directory with the configured write
// mode and assigns each task a unique file name. Both steps run once per job,
// before any task starts.
package planner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dagucloud/txtwriter/internal/cmn/fileutil"
	"github.com/dagucloud/txtwriter/internal/cmn/logger"
	"github.com/dagucloud/txtwriter/internal/cmn/logger/tag"
	"github.com/dagucloud/txtwriter/internal/core"
)

// dirPermission is applied to directories created for output.
const dirPermission = 0755

// Prepare applies cfg.WriteMode to cfg.Path. It is the only place outside a
// task that creates or deletes anything on disk, and it never touches
// entries outside cfg.Path.
func Prepare(ctx context.Context, cfg core.WriterConfig) error {
	dir, prefix := cfg.Path, cfg.FileName
	ctx = logger.WithValues(ctx, tag.Dir(dir), tag.Prefix(prefix), tag.Mode(string(cfg.WriteMode)))

	exists, err := checkDir(dir)
	if err != nil {
		return err
	}

	switch cfg.WriteMode {
	case core.WriteModeTruncate:
		logger.Info(ctx, "Removing existing files with the configured prefix")
		if exists {
			return removeWithPrefix(ctx, dir, prefix)
		}
	case core.WriteModeAppend:
		logger.Info(ctx, "Appending new files without cleanup")
	case core.WriteModeNonConflict:
		logger.Info(ctx, "Checking the directory for conflicting files")
		if exists {
			return checkNoConflict(ctx, dir, prefix)
		}
	default:
		return core.NewError(core.ErrIllegalValue,
			"only truncate, append, nonConflict are supported, got writeMode %q", cfg.WriteMode)
	}

	if exists {
		return nil
	}
	return createDir(ctx, dir)
}

// checkDir reports whether dir exists. An existing path that is not a
// directory is an illegal value for every write mode.
func checkDir(dir string) (bool, error) {
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case errors.Is(err, fs.ErrPermission):
		return false, core.WrapError(core.ErrSecurityNotEnough, err, "no permission to inspect path %s", dir)
	case err != nil:
		return false, core.WrapError(core.ErrRuntime, err, "failed to inspect path %s", dir)
	case !info.IsDir():
		return false, core.NewError(core.ErrIllegalValue,
			"path %s is not a valid directory, check for a file with the same name", dir)
	}
	return true, nil
}

func listWithPrefix(dir, prefix string) ([]string, error) {
	names, err := fileutil.ListNamesWithPrefix(dir, prefix)
	if errors.Is(err, fs.ErrPermission) {
		return nil, core.WrapError(core.ErrSecurityNotEnough, err, "no permission to list directory %s", dir)
	}
	if err != nil {
		return nil, core.WrapError(core.ErrWriteFile, err, "failed to list directory %s", dir)
	}
	return names, nil
}

func removeWithPrefix(ctx context.Context, dir, prefix string) error {
	names, err := listWithPrefix(dir, prefix)
	if err != nil {
		return err
	}
	for _, name := range names {
		logger.Info(ctx, "Removing file", tag.File(name))
		if err := os.RemoveAll(filepath.Join(dir, name)); err != nil {
			return core.WrapError(core.ErrWriteFile, err, "failed to remove %s from directory %s", name, dir)
		}
	}
	return nil
}

func checkNoConflict(ctx context.Context, dir, prefix string) error {
	names, err := listWithPrefix(dir, prefix)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}
	conflicts := strings.Join(names, ",")
	logger.Error(ctx, "Conflicting files found", tag.Count(len(names)), tag.Value(conflicts))
	return core.NewError(core.ErrIllegalValue,
		"directory %s already contains entries starting with %q: [%s]", dir, prefix, conflicts)
}

func createDir(ctx context.Context, dir string) error {
	logger.Info(ctx, "Creating output directory")
	if err := os.MkdirAll(dir, dirPermission); err != nil { // nolint:gosec
		return core.WrapError(core.ErrConfigInvalid, err, "failed to create directory %s", dir)
	}
	return nil
}
