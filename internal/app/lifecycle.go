package app

import (
	"context"
	"time"

	"github.com/PokeMichele/lumo/internal/project"
)

// storeTimeout bounds every project database operation.
const storeTimeout = 5 * time.Second

func storeContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}

// SaveProject writes the timeline and the source registry under the
// current project name, creating the project on first save.
func (app *Application) SaveProject() error {
	if app.store == nil {
		return ErrNoStore
	}
	ctx, cancel := storeContext()
	defer cancel()

	_, err := app.store.Save(ctx, app.projectName, app.editor.Snapshot(), app.library.All())
	if err != nil {
		return err
	}
	app.logger.Info("project saved", "name", app.projectName)
	return nil
}

// LoadProject replaces the timeline with a saved project and merges its
// sources into the library. History resets, playback stops and the
// playhead rewinds, the same as opening fresh.
func (app *Application) LoadProject(name string) error {
	if app.store == nil {
		return ErrNoStore
	}
	ctx, cancel := storeContext()
	defer cancel()

	p, err := app.store.Load(ctx, name)
	if err != nil {
		return err
	}
	for _, src := range p.Sources {
		if app.library.Has(src.ID) {
			continue
		}
		if err := app.library.Add(src); err != nil {
			return err
		}
	}
	if err := app.editor.LoadTimeline(p.Items, p.Tracks); err != nil {
		return err
	}
	app.projectName = p.Name
	app.logger.Info("project loaded", "name", p.Name, "items", len(p.Items))
	return nil
}

// Projects lists the saved projects.
func (app *Application) Projects() ([]project.Info, error) {
	if app.store == nil {
		return nil, ErrNoStore
	}
	ctx, cancel := storeContext()
	defer cancel()
	return app.store.List(ctx)
}
