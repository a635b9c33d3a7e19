// Package main is the entry point for the Lumo timeline editor.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/PokeMichele/lumo/internal/app"
	"github.com/PokeMichele/lumo/internal/project"
	"github.com/PokeMichele/lumo/internal/surface"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, list := parseFlags()

	if list {
		return listProjects(opts.ProjectDB)
	}

	term, err := surface.NewTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	application, err := app.New(term, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer application.Close()

	// Ctrl+C is consumed by the terminal as a key binding, but SIGTERM
	// and a SIGINT from outside the tty still land here.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		application.Shutdown()
	}()

	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() (app.Options, bool) {
	var opts app.Options
	var list, showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", defaultPath("lumo.toml"), "Path to the configuration file")
	flag.StringVar(&opts.ProjectDB, "db", defaultPath("projects.db"), "Path to the project database, empty disables persistence")
	flag.StringVar(&opts.ProjectName, "project", "", "Project to open, created on first save")
	flag.Func("script", "Lua script run at startup, repeatable", func(s string) error {
		opts.Scripts = append(opts.Scripts, s)
		return nil
	})
	flag.BoolVar(&opts.Watch, "watch", false, "Reload tunables when the config file changes")
	flag.BoolVar(&list, "list", false, "List saved projects and exit")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Lumo - terminal timeline editor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: lumo [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  lumo                          Open the default project\n")
		fmt.Fprintf(os.Stderr, "  lumo -project demo            Open or create the demo project\n")
		fmt.Fprintf(os.Stderr, "  lumo -script setup.lua        Run an edit script at startup\n")
		fmt.Fprintf(os.Stderr, "  lumo -list                    List saved projects\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("Lumo %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		os.Exit(0)
	}

	return opts, list
}

// defaultPath resolves a file under the user's lumo config directory,
// falling back to the working directory when none exists.
func defaultPath(name string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return name
	}
	return filepath.Join(dir, "lumo", name)
}

func listProjects(dbPath string) int {
	if dbPath == "" {
		fmt.Fprintln(os.Stderr, "Error: no project database configured")
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := project.Open(ctx, dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer store.Close()

	if err := project.ApplyMigrations(ctx, store.DB()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	infos, err := store.List(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if len(infos) == 0 {
		fmt.Println("no saved projects")
		return 0
	}
	for _, in := range infos {
		fmt.Printf("%-24s %4d items %9.1fs  %s\n",
			in.Name, in.Items, in.Duration, in.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return 0
}
