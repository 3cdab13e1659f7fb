package planner

import (
	"context"
	"errors"
	"io/fs"

	"github.com/dagucloud/txtwriter/internal/cmn/fileutil"
	"github.com/dagucloud/txtwriter/internal/cmn/logger"
	"github.com/dagucloud/txtwriter/internal/cmn/logger/tag"
	"github.com/dagucloud/txtwriter/internal/core"
)

// Split derives one configuration per task from cfg, each with its own file
// name. The directory is listed once and names are allocated against that
// snapshot.
func Split(ctx context.Context, cfg core.WriterConfig, n int) ([]core.WriterConfig, error) {
	existing, err := fileutil.ListNames(cfg.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		existing = nil
	case errors.Is(err, fs.ErrPermission):
		return nil, core.WrapError(core.ErrSecurityNotEnough, err, "no permission to list directory %s", cfg.Path)
	case err != nil:
		return nil, core.WrapError(core.ErrRuntime, err, "failed to list directory %s", cfg.Path)
	}

	names := AllocateFileNames(cfg.FileName, existing, n)
	configs := make([]core.WriterConfig, 0, len(names))
	for _, name := range names {
		if name != cfg.FileName {
			logger.Warn(ctx, "File name already taken, renamed",
				tag.Prefix(cfg.FileName),
				tag.Name(name),
				tag.Reason("prefix in use by an existing file or an earlier task"),
			)
		}
		logger.Info(ctx, "Allocated task file name", tag.Name(name))
		configs = append(configs, cfg.WithFileName(name))
	}
	return configs, nil
}
