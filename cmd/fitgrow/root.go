package main

import (
	"os"
	"path/filepath"

	"github.com/fitgrow/fitgrow-backend/internal/client"
	"github.com/spf13/cobra"
)

type app struct {
	apiURL  string
	dataDir string

	store  *client.Store
	client *client.Client
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fitgrow",
		Short:         "Track calories, steps, water and sleep from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
	}

	root.PersistentFlags().StringVar(&a.apiURL, "api", envOr("FITGROW_API", "http://localhost:5000/api"), "API base URL")
	root.PersistentFlags().StringVar(&a.dataDir, "data", envOr("FITGROW_DATA", defaultDataDir()), "local cache directory")

	root.AddCommand(
		a.signupCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.statusCmd(),
		a.goalsCmd(),
		a.addCmd(),
		a.resetCmd(),
		a.logCmd(),
		a.syncCmd(),
		a.weeklyCmd(),
		a.mealCmd(),
		a.nutritionCmd(),
		a.scanCmd(),
		a.importCmd(),
	)
	return root
}

func (a *app) open() error {
	store, err := client.OpenStore(a.dataDir)
	if err != nil {
		return err
	}
	c, err := client.New(a.apiURL, store)
	if err != nil {
		store.Close()
		return err
	}
	a.store, a.client = store, c
	return nil
}

// close releases the cache. It runs after every command, failed or not.
func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store, a.client = nil, nil
	return err
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fitgrow"
	}
	return filepath.Join(home, ".fitgrow")
}
