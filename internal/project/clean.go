package project

import (
	"context"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/dolly-hdl/dolly/internal/logging"
)

// Clean removes every build artifact. Failures are logged and otherwise
// ignored; a missing target directory is already clean.
func (p *Project) Clean(ctx context.Context, fsys billy.Filesystem) {
	dir := p.TargetDir()
	if err := util.RemoveAll(fsys, dir); err != nil {
		logging.FromContext(ctx).Debug("ignoring clean failure", "dir", dir, "error", err)
		return
	}
	logging.FromContext(ctx).Debug("removed artifacts", "dir", dir)
}
