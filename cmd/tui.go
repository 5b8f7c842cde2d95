package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/mandela/internal/app"
	"github.com/abhisek/mandela/internal/screens/home"
	"github.com/abhisek/mandela/internal/screens/question"
	"github.com/abhisek/mandela/internal/selfupdate"
	"github.com/abhisek/mandela/internal/tracker"
)

// runApp opens the store, builds dependencies and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	e, err := loadEnv(cmd, false)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.withStore(ctx); err != nil {
		return err
	}
	if err := e.withAssets(); err != nil {
		return err
	}
	if err := e.withEvents(); err != nil {
		warn("Event publishing disabled: %v", err)
	}
	if err := e.withInsight(ctx); err != nil {
		warn("Deep dives unavailable: %v", err)
	}

	return app.Run(app.Options{
		Home: home.Options{
			Catalog: e.catalog,
			Repo:    e.store.EventRepo(),
			Quiz: question.Deps{
				Tracker: e.tracker(tracker.SourceTUI),
				Assets:  e.assets,
				Insight: e.insight,
			},
		},
		Version: buildVersion(),
		Updates: selfupdate.NewChecker(),
	})
}
