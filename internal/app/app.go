// Package app provides the application helpers shared by the entry points.
package app

import (
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/z80ios/internal/options"
)

// PrintBanner logs the program name and version.
func PrintBanner(logger *log.Logger, quiet bool, name, version, commit, date string) {
	if quiet {
		return
	}
	logger.Info(name, log.String("version", buildinfo.Version(version, commit, date)))
}

// PrintSessionInfo logs the target and the collaborators of a monitor session.
func PrintSessionInfo(logger *log.Logger, opts options.Program) {
	if opts.Quiet {
		return
	}

	target := "GPIO"
	if opts.Sim {
		target = "simulated"
	}
	console := opts.TTY
	if console == "" {
		console = "terminal"
	}

	logger.Info("Starting session",
		log.String("target", target),
		log.String("console", console),
		log.Int("diskset", opts.DiskSet))

	if opts.Image != "" {
		logger.Info("Image", log.String("file", opts.Image), log.Hex("org", opts.Org))
	}
	if opts.SDDir != "" {
		logger.Info("SD card", log.String("dir", opts.SDDir))
	}
}
