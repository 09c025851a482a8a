package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/mmcdole/shutter/internal/adapter"
	"github.com/mmcdole/shutter/internal/adapter/source"
	"github.com/mmcdole/shutter/internal/domain"
	"github.com/mmcdole/shutter/internal/picker"
	"github.com/mmcdole/shutter/internal/service"
	"github.com/mmcdole/shutter/internal/store"
	"github.com/mmcdole/shutter/internal/tui"
	"github.com/mmcdole/shutter/internal/tui/styles"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

// options holds command line overrides
type options struct {
	configFile   string
	query        string
	format       string
	modal        bool
	open         bool
	clearCache   bool
	clearHistory bool
}

func main() {
	var opts options
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&opts.configFile, "config", "", "config file (default ~/.config/shutter/config.yaml)")
	flag.StringVar(&opts.query, "q", "", "initial search query")
	flag.StringVar(&opts.format, "format", "", "output format: url, json or markdown")
	flag.BoolVar(&opts.modal, "modal", false, "render the picker in a centered frame")
	flag.BoolVar(&opts.open, "open", false, "open the chosen photo in an image viewer")
	flag.BoolVar(&opts.clearCache, "clear-cache", false, "remove cached search results and exit")
	flag.BoolVar(&opts.clearHistory, "clear-history", false, "forget recent queries and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("shutter %s\n", Version)
		return
	}

	if opts.query == "" && flag.NArg() > 0 {
		opts.query = strings.Join(flag.Args(), " ")
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	// A .env file may carry UNSPLASH_ACCESS_KEY
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: ignoring .env: %v\n", err)
	}

	// Load configuration
	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyOverrides(cfg, opts); err != nil {
		return err
	}

	// Setup logger
	logger, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting shutter", "version", Version)

	if opts.clearCache {
		if err := adapter.ClearCache(cfg); err != nil {
			return err
		}
		fmt.Println("✓ Cache cleared")
		return nil
	}

	// Check if configured
	if !cfg.IsConfigured() {
		if err := runSetupFlow(cfg, logger); err != nil {
			return err
		}
	}

	client, err := source.NewClientFromConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create unsplash client: %w", err)
	}

	st, err := store.NewPhotoStore(cfg.CachePath())
	if err != nil {
		// Another instance may hold the database lock
		logger.Warn("falling back to in-memory cache", "error", err)
		st, _ = store.NewPhotoStore("")
	}
	defer st.Close()

	ttl := cfg.Cache.TTL
	if !cfg.Cache.Enabled {
		ttl = 0
	}
	svc := service.NewPhotoService(client, st, cfg.SearchOptions(), ttl, logger)

	if opts.clearHistory {
		if err := svc.ClearHistory(); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Println("✓ History cleared")
		return nil
	}
	svc.PurgeExpired()

	ctrl := picker.NewController(cfg.ControllerConfig(), logger)
	pk := tui.NewPicker(ctrl, svc, tui.PickerOptions{
		Title:        cfg.Picker.Title,
		HeaderLeft:   cfg.Picker.HeaderLeft,
		HeaderRight:  cfg.Picker.HeaderRight,
		Placeholder:  cfg.Picker.Placeholder,
		PhotoMode:    cfg.PhotoMode(),
		EndThreshold: cfg.Picker.EndThreshold,
	}, logger)
	pk.SetSuggester(svc)

	model := tui.NewModel(pk, svc, cfg.Picker.Modal, logger)

	// The TUI draws on stderr so the selection can be piped from stdout
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithOutput(os.Stderr),
	)

	logger.Info("starting TUI")

	final, err := p.Run()
	if err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	m, ok := final.(tui.Model)
	if !ok {
		return nil
	}
	photo, url, ok := m.Selection()
	if !ok {
		logger.Info("no photo selected")
		return nil
	}

	if cfg.Viewer.Open {
		if err := adapter.NewViewer(cfg.Viewer, logger).Open(url); err != nil {
			logger.Warn("failed to open viewer", "error", err)
			fmt.Fprintln(os.Stderr, styles.WarningStyle.Render("Could not open an image viewer: "+err.Error()))
		}
	}

	logger.Info("shutting down", "photoID", photo.ID)
	return writeSelection(os.Stdout, cfg.Output.Format, photo, url)
}

func loadConfig(path string) (*adapter.Config, error) {
	if path != "" {
		return adapter.LoadConfigFile(path)
	}
	return adapter.LoadConfig()
}

// applyOverrides layers command line flags over the loaded configuration
func applyOverrides(cfg *adapter.Config, opts options) error {
	if opts.query != "" {
		cfg.Picker.InitialQuery = opts.query
	}
	if opts.format != "" {
		cfg.Output.Format = adapter.OutputFormat(strings.ToLower(opts.format))
	}
	if opts.modal {
		cfg.Picker.Modal = true
	}
	if opts.open {
		cfg.Viewer.Open = true
	}
	return cfg.Validate()
}

// runSetupFlow asks for an access key when none is configured
func runSetupFlow(cfg *adapter.Config, logger *slog.Logger) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("no Unsplash access key configured; set UNSPLASH_ACCESS_KEY or add unsplash.access_key to %s", adapter.ConfigFilePath())
	}

	fmt.Println()
	fmt.Println("Welcome to Shutter!")
	fmt.Println()
	fmt.Println("Create an application at https://unsplash.com/oauth/applications")
	fmt.Println("and paste its Access Key below.")
	fmt.Println()

	for {
		fmt.Print("Access Key: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		accessKey := strings.TrimSpace(string(raw))

		if accessKey == "" {
			fmt.Println("Access key cannot be empty. Please try again.")
			continue
		}

		cfg.Unsplash.AccessKey = accessKey
		client, err := source.NewClientFromConfig(cfg, logger)
		if err != nil {
			return err
		}

		if err := verifyKeyWithSpinner(client); err != nil {
			fmt.Printf("%s %v\n", styles.ErrorStyle.Render("✗"), err)
			if errors.Is(err, domain.ErrAuthFailed) {
				fmt.Println("Please check the key and try again.")
				fmt.Println()
				continue
			}
			// Keep a key we could not verify; the picker reports problems later
			fmt.Println(styles.WarningStyle.Render("Saving the key without verifying it."))
		}
		break
	}

	if err := adapter.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("%s Configuration saved to %s\n", styles.AccentStyle.Render("✓"), adapter.ConfigFilePath())
	fmt.Println()
	return nil
}

// verifyKeyWithSpinner runs a one-photo search with a visual spinner
func verifyKeyWithSpinner(client domain.PhotoSource) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	resultCh := make(chan error, 1)

	// Start verification in background
	go func() {
		_, err := client.SearchPhotos(ctx, "nature", 1, 1, domain.SearchOptions{})
		resultCh <- err
	}()

	// Spinner animation
	frame := 0
	fmt.Printf("\r%s Verifying access key...", styles.SpinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-resultCh:
			fmt.Print(clearSpinnerLine)
			if err != nil {
				return err
			}
			fmt.Printf("%s Access key verified\n", styles.AccentStyle.Render("✓"))
			return nil

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Verifying access key...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])

		case <-ctx.Done():
			fmt.Print(clearSpinnerLine)
			return fmt.Errorf("verification timed out")
		}
	}
}
