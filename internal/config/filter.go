package config

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/moodmap/internal/timeutil"
)

// FilterConfig holds the options of the stats command.
type FilterConfig struct {
	Since time.Time
	Until time.Time
	Port  uint
	JSON  bool
}

// Filter reads the stats command flags. Relative times such as
// "1 hour ago" are resolved against now.
func Filter(ctx *cli.Context, now time.Time) (*FilterConfig, error) {
	since, err := timeutil.Since(ctx.String("since"), now)
	if err != nil {
		return nil, errInvalidTime.Fmt("since").Wrap(err)
	}

	until, err := timeutil.Until(ctx.String("until"), now)
	if err != nil {
		return nil, errInvalidTime.Fmt("until").Wrap(err)
	}

	return &FilterConfig{
		Since: since,
		Until: until,
		Port:  ctx.Uint("port"),
		JSON:  ctx.Bool("json"),
	}, nil
}
