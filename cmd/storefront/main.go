// Command storefront is a terminal client for the Kidigo backend: it
// drives the full API surface (auth, events, categories, bookmarks)
// against a live server, persisting the session between invocations.
package main

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kidigo/storefront/authapi"
	"github.com/kidigo/storefront/bookmarks"
	"github.com/kidigo/storefront/categories"
	"github.com/kidigo/storefront/events"
	"github.com/kidigo/storefront/gateway"
	"github.com/kidigo/storefront/internal/config"
	"github.com/kidigo/storefront/notify"
	"github.com/kidigo/storefront/session"
	"github.com/kidigo/storefront/storage"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Kidigo storefront client",
	Long:  "storefront — a terminal client for the Kidigo event discovery and booking backend.",
	// SilenceUsage prevents printing usage on every error
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (environment variables win)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newSignupCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newForgotCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newCategoriesCmd())
	rootCmd.AddCommand(newBookmarksCmd())
}

// app wires the whole client stack for one command invocation.
type app struct {
	cfg        config.Config
	log        zerolog.Logger
	store      storage.Store
	session    *session.Store
	relay      *notify.Relay
	auth       *authapi.Client
	events     *events.Client
	categories *categories.Client
	bookmarks  *bookmarks.Client
	saved      *bookmarks.Set
}

func newApp(cmd *cobra.Command) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	var cfg config.Config
	var err error
	if configPath != "" {
		cfg, err = config.NewFromFile(configPath)
		if err != nil {
			return nil, errors.Wrap(err, "loading config file")
		}
	} else {
		cfg = config.New()
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	tokens := storage.NewTokenStore(store)
	gw := gateway.New(cfg.GetAPIBaseURL(), tokens, gateway.WithLogger(log))

	authClient := authapi.New(gw)
	sess := session.New(store, tokens, authClient, session.WithLogger(log))
	if err := sess.Bootstrap(); err != nil {
		_ = store.Close()
		return nil, errors.Wrap(err, "restoring session")
	}

	relay := notify.NewRelay()

	bookmarkClient := bookmarks.NewClient(gw)
	a := &app{
		cfg:        cfg,
		log:        log,
		store:      store,
		session:    sess,
		relay:      relay,
		auth:       authClient,
		events:     events.New(gw),
		categories: categories.New(gw),
		bookmarks:  bookmarkClient,
		saved:      bookmarks.NewSet(bookmarkClient, bookmarks.WithLogger(log)),
	}
	a.relay.Subscribe(a.printNotifications())
	return a, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("closing store")
	}
}

// printNotifications renders each notification transition once, as it
// happens, rather than redrawing the whole active list.
func (a *app) printNotifications() notify.Listener {
	seen := map[string]notify.Kind{}
	return func(active []notify.Notification) {
		for _, n := range active {
			if seen[n.ID] == n.Kind {
				continue
			}
			seen[n.ID] = n.Kind
			switch n.Kind {
			case notify.KindLoading:
				fmt.Fprintf(os.Stderr, "... %s\n", n.Message)
			case notify.KindSuccess:
				fmt.Fprintf(os.Stderr, "ok  %s\n", n.Message)
			case notify.KindError:
				fmt.Fprintf(os.Stderr, "err %s\n", n.Message)
			}
		}
	}
}

func openStore(cfg config.Config) (storage.Store, error) {
	switch cfg.GetStorageBackend() {
	case "memory":
		return storage.NewMemStore(), nil
	case "sqlite":
		store, err := storage.NewSQLiteStore(cfg.GetStoragePath())
		return store, errors.Wrap(err, "opening sqlite store")
	case "file":
		store, err := storage.NewFileStore(cfg.GetStoragePath())
		return store, errors.Wrap(err, "opening file store")
	default:
		return nil, errors.Errorf("unknown storage backend %q", cfg.GetStorageBackend())
	}
}

func displayAppName(name string) {
	banner := figure.NewFigure(name, "cybermedium", true)
	banner.Print()
	fmt.Println()
}
