package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/lotas/tabsurf/internal/applog"
	"github.com/lotas/tabsurf/internal/appconfig"
	"github.com/lotas/tabsurf/internal/engine"
	"github.com/lotas/tabsurf/internal/engine/chrome"
	"github.com/lotas/tabsurf/internal/engine/extension"
	"github.com/lotas/tabsurf/internal/engine/fetch"
	"github.com/lotas/tabsurf/internal/firefox"
	"github.com/lotas/tabsurf/internal/server"
	"github.com/lotas/tabsurf/internal/session"
	"github.com/lotas/tabsurf/internal/tui"
	"github.com/lotas/tabsurf/internal/types"

	"pkt.systems/psi"
	"pkt.systems/pslog"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	root := newRootCmd()
	root.SetArgs(os.Args[1:])
	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("tabsurf failed")
		return 1
	}
	return 0
}

type browseFlags struct {
	config   string
	engine   string
	homepage string
	restore  string
	port     int
}

func newRootCmd() *cobra.Command {
	var f browseFlags
	root := &cobra.Command{
		Use:           "tabsurf",
		Short:         "Tabbed terminal browser",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(f)
			if err != nil {
				return err
			}
			return browse(cmd.Context(), cfg, f.restore)
		},
	}
	root.PersistentFlags().StringVarP(&f.config, "config", "c", "", "config file (default ~/.config/tabsurf/config.yaml)")
	root.Flags().StringVarP(&f.engine, "engine", "e", "", "rendering engine: fetch, chrome or extension")
	root.Flags().StringVar(&f.homepage, "homepage", "", "homepage URL")
	root.Flags().StringVar(&f.restore, "restore", "", "open the tabs of a Firefox profile (name or directory)")
	root.Flags().IntVar(&f.port, "port", 0, "WebSocket port for the extension engine")

	root.AddCommand(newProfilesCmd())
	root.AddCommand(newConfigCmd(&f))
	return root
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(f browseFlags) (appconfig.Config, error) {
	cfg, err := appconfig.Load(f.config)
	if err != nil {
		return appconfig.Config{}, err
	}
	if f.engine != "" {
		cfg.Engine = f.engine
	}
	if f.homepage != "" {
		cfg.Homepage = f.homepage
	}
	if f.port != 0 {
		cfg.Extension.Port = f.port
	}
	if err := cfg.Validate(); err != nil {
		return appconfig.Config{}, err
	}
	return cfg, nil
}

func browse(ctx context.Context, cfg appconfig.Config, restore string) error {
	logger := pslog.Ctx(ctx)
	if err := applog.Init(cfg.LogDir); err != nil {
		logger.Warn("file logging disabled", "dir", cfg.LogDir, "err", err)
	}
	defer applog.Close()
	applog.Info("startup", "engine", cfg.Engine, "homepage", cfg.Homepage)

	var restored []types.NavigationRecord
	if restore != "" {
		records, err := firefox.Restore(restore)
		if err != nil {
			return fmt.Errorf("restore: %w", err)
		}
		restored = records
	}

	eng, err := openEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	coord := session.New(eng, session.Options{
		AppName:        cfg.AppName,
		Homepage:       cfg.Homepage,
		SkipInitialTab: len(restored) > 0,
	})
	defer coord.Close()
	for _, r := range restored {
		coord.OpenTab(r.URL, r.Title)
	}
	coord.Activate(0)

	notice := ""
	if len(restored) > 0 {
		notice = fmt.Sprintf("Restored %d tabs from %s", len(restored), restore)
	}
	model := tui.New(coord, eng, tui.Options{EngineName: cfg.Engine, Notice: notice})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func openEngine(ctx context.Context, cfg appconfig.Config) (engine.Engine, error) {
	switch cfg.Engine {
	case appconfig.EngineChrome:
		return chrome.New(chrome.Options{
			Headless:  cfg.Chrome.Headless,
			ExecPath:  cfg.Chrome.ExecPath,
			UserAgent: cfg.Fetch.UserAgent,
		})
	case appconfig.EngineExtension:
		srv := server.New(cfg.Extension.Port)
		go func() {
			if err := srv.ListenAndServe(ctx); err != nil {
				applog.Error("server.listen", err, "port", cfg.Extension.Port)
				pslog.Ctx(ctx).Error("extension server stopped", "port", cfg.Extension.Port, "err", err)
			}
		}()
		if err := waitForExtension(ctx, srv); err != nil {
			return nil, err
		}
		return extension.New(srv), nil
	default:
		return fetch.New(fetch.Options{
			Timeout:   time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
			UserAgent: cfg.Fetch.UserAgent,
		}), nil
	}
}

// waitForExtension blocks until the browser extension connects.
func waitForExtension(ctx context.Context, srv *server.Server) error {
	pslog.Ctx(ctx).Info("waiting for browser extension", "port", srv.Port())
	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()
	for !srv.Connected() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
	return nil
}

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List Firefox profiles that have a saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := firefox.DiscoverProfiles()
			if err != nil {
				return fmt.Errorf("discover Firefox profiles: %w", err)
			}
			if len(profiles) == 0 {
				return errors.New("no Firefox profiles found")
			}
			out := cmd.OutOrStdout()
			for _, p := range profiles {
				suffix := ""
				if p.IsDefault {
					suffix = " [default]"
				}
				fmt.Fprintf(out, "%s (%s)%s\n", p.Name, p.Path, suffix)
			}
			return nil
		},
	}
}

func newConfigCmd(f *browseFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	var overwrite bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := appconfig.WriteDefault(f.config, overwrite)
			if err != nil {
				return err
			}
			pslog.Ctx(cmd.Context()).Info("config written", "path", path)
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&overwrite, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}
