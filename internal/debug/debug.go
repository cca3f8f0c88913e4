// Package debug prints wire-format traces when $WAYLAND_DEBUG is set
// to a positive value, mimicking the output of libwayland's own
// tracing.
package debug

import (
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
)

var logger = log.New(io.Discard)

func init() {
	debugLevel, err := strconv.ParseInt(os.Getenv("WAYLAND_DEBUG"), 10, 0)
	if err != nil {
		return
	}
	if debugLevel > 0 {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "wire"})
	}
}

func Printf(str string, args ...any) {
	logger.Printf(str, args...)
}
