package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Viewer opens a chosen photo in an external image viewer
type Viewer struct {
	command string   // configured viewer command, empty for auto-detection
	args    []string // additional arguments for the viewer
	goos    string
	logger  *slog.Logger
}

// launchPath defines a single way to start a viewer
type launchPath struct {
	path      string   // Command path: "feh", "imv", or "open-a:AppName"
	openFlags []string // For "open-a:" paths only - flags for macOS open command
}

// viewers registry - launch paths per platform, tried in order
var viewers = map[string]map[string][]launchPath{
	"preview": {
		"darwin": {{path: "open-a:Preview"}},
	},
	"imv": {
		"linux": {{path: "imv"}},
	},
	"feh": {
		"linux": {{path: "feh"}},
	},
	"sxiv": {
		"linux": {{path: "sxiv"}},
	},
	"eog": {
		"linux": {{path: "eog"}},
	},
}

// candidateViewers defines the preferred viewer order for each platform
var candidateViewers = map[string][]string{
	"darwin": {"preview"},
	"linux":  {"imv", "feh", "sxiv", "eog"},
}

// Hooks replaced in tests
var (
	lookPath = exec.LookPath

	// startCommand launches without waiting
	startCommand = func(name string, args ...string) error {
		return exec.Command(name, args...).Start()
	}

	// runCommand waits so "open -a" reports a missing app
	runCommand = func(name string, args ...string) error {
		return exec.Command(name, args...).Run()
	}
)

// NewViewer creates a Viewer for the configured command
func NewViewer(cfg ViewerConfig, logger *slog.Logger) *Viewer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Viewer{
		command: strings.TrimSpace(cfg.Command),
		args:    cfg.Args,
		goos:    runtime.GOOS,
		logger:  logger,
	}
}

// openWithApp opens url with a macOS app using "open -a"
func openWithApp(appName, url string, viewerArgs, openFlags []string) error {
	cmdArgs := make([]string, len(openFlags))
	copy(cmdArgs, openFlags)

	cmdArgs = append(cmdArgs, "-a", appName)
	if len(viewerArgs) > 0 {
		cmdArgs = append(cmdArgs, "--args")
		cmdArgs = append(cmdArgs, viewerArgs...)
	}
	cmdArgs = append(cmdArgs, url)
	return runCommand("open", cmdArgs...)
}

// launchWithCommand starts command with url if it exists in PATH
func launchWithCommand(command, url string, args []string) error {
	if _, err := lookPath(command); err != nil {
		return err
	}
	cmdArgs := append(append([]string{}, args...), url)
	return startCommand(command, cmdArgs...)
}

// detectAndLaunch tries candidate viewers in order.
// Returns the viewer name that succeeded.
func (v *Viewer) detectAndLaunch(url string) (string, error) {
	for _, name := range candidateViewers[v.goos] {
		paths, ok := viewers[name][v.goos]
		if !ok {
			continue
		}
		for _, lp := range paths {
			var err error
			if app, ok := strings.CutPrefix(lp.path, "open-a:"); ok {
				err = openWithApp(app, url, nil, lp.openFlags)
			} else {
				err = launchWithCommand(lp.path, url, nil)
			}
			if err == nil {
				v.logger.Info("opened with detected viewer", "viewer", name, "path", lp.path)
				return name, nil
			}
			v.logger.Debug("launch path not available", "viewer", name, "path", lp.path, "error", err)
		}
	}
	return "", errors.New("no candidate viewers found")
}

// Open shows url in the configured viewer, a detected one, or the system default
func (v *Viewer) Open(url string) error {
	if url == "" {
		return errors.New("nothing to open")
	}

	// Tier 1: User configured a specific viewer
	if v.command != "" {
		return v.launchConfigured(url)
	}

	// Tier 2: Try candidate chain
	if _, err := v.detectAndLaunch(url); err == nil {
		return nil
	}

	// Tier 3: Fall back to system default (open/xdg-open/start)
	v.logger.Info("no candidate viewers found, using system default")
	return v.launchDefault(url)
}

// launchConfigured starts the configured viewer
func (v *Viewer) launchConfigured(url string) error {
	v.logger.Info("launching viewer", "command", v.command, "args", v.args, "url", url)

	// On macOS, GUI apps are usually not in PATH
	if v.goos == "darwin" {
		if _, err := lookPath(v.command); err != nil {
			app := strings.TrimSuffix(filepath.Base(v.command), ".app")
			return openWithApp(app, url, v.args, nil)
		}
	}

	if err := launchWithCommand(v.command, url, v.args); err != nil {
		return fmt.Errorf("failed to launch %s: %w", v.command, err)
	}
	return nil
}

// launchDefault opens url using the system default handler
func (v *Viewer) launchDefault(url string) error {
	v.logger.Info("launching with system default", "os", v.goos, "url", url)

	switch v.goos {
	case "darwin":
		return startCommand("open", url)
	case "windows":
		return startCommand("cmd", "/c", "start", "", url)
	default:
		return startCommand("xdg-open", url)
	}
}
