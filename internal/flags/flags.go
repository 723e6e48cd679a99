// Package flags answers feature-flag questions for the directory.
package flags

import (
	"context"
	"os"
	"strconv"

	"github.com/letieu/agent-directory/config"
	"github.com/rotisserie/eris"
)

// EditEnv overrides flags.edit_enabled at request time, so editing can be
// switched off without a restart.
const EditEnv = "DIRECTORY_EDIT_ENABLED"

type Flags struct {
	editEnabled bool
	lookupEnv   func(string) (string, bool)
}

func New(cfg *config.Config) *Flags {
	return &Flags{editEnabled: cfg.Flags.EditEnabled, lookupEnv: os.LookupEnv}
}

// EditEnabled reports whether listings may be created, edited or
// autofilled. An unparsable override is an error, which callers treat as
// "not allowed".
func (f *Flags) EditEnabled(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if raw, ok := f.lookupEnv(EditEnv); ok && raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return false, eris.Wrapf(err, "flags: parse %s", EditEnv)
		}
		return v, nil
	}
	return f.editEnabled, nil
}
