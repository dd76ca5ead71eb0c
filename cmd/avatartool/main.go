// avatartool is a headless CLI for inspecting avatars and dry-running lip sync.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/Mohammad-Afzal123/web-avatar/internal/config"
	"github.com/Mohammad-Afzal123/web-avatar/internal/logger"
)

const defaultFPS = 60

var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	// Viewer flags are left unparsed, so only the file and environment apply.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Logging.LogFile != "" {
		if err := logger.InitWithFileConfig(cfg.Logging.Level, logger.DefaultFileConfig(cfg.Logging.LogFile), false); err != nil {
			fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		err = cmdInfo(os.Stdout, cfg, args)
	case "envelope", "env":
		err = cmdEnvelope(os.Stdout, cfg, args)
	case "simulate", "sim":
		err = cmdSimulate(os.Stdout, cfg, args)
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if errors.Is(err, errUsage) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `avatartool - avatar model and lip sync utility

Usage:
  avatartool <command> [arguments]

Commands:
  info <model.glb>                     Show meshes, morph targets and clips
  envelope <audio> [fps]               Print the amplitude per frame
  simulate <model.glb> <audio> [fps]   Run playback headless and print influences

Settings come from the viewer config file and AVATAR_* variables.

Examples:
  avatartool info avatar.glb
  avatartool envelope voice.mp3 30
  AVATAR_LIPSYNC_DIVISOR=100 avatartool simulate avatar.glb voice.wav`)
}

// parseFPS reads the optional frame rate at args[i].
func parseFPS(args []string, i int) (float64, error) {
	if len(args) <= i {
		return defaultFPS, nil
	}
	fps, err := strconv.ParseFloat(args[i], 64)
	if err != nil || fps <= 0 {
		return 0, fmt.Errorf("invalid fps %q", args[i])
	}
	return fps, nil
}
