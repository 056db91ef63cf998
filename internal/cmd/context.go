package cmd

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/jobsift/jobsift/internal/config"
	"github.com/jobsift/jobsift/internal/ui"
)

// Context carries the process-wide wiring into every command Run.
type Context struct {
	Out        io.Writer
	Err        io.Writer
	UI         *ui.UI
	Config     config.Config
	ConfigDir  string
	Logger     zerolog.Logger
	Verbose    bool
	JSONOutput bool
	PlainText  bool
	Version    string
	ColorMode  ui.ColorMode
}
