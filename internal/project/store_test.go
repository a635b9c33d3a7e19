package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PokeMichele/lumo/internal/timeline"
)

func openStore(t *testing.T) (*Store, context.Context) {
	t.Helper()
	ctx := context.Background()
	store, err := Open(ctx, filepath.Join(t.TempDir(), "projects.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := ApplyMigrations(ctx, store.DB()); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return store, ctx
}

func TestOpenFailsOnUnreachableFile(t *testing.T) {
	// A directory where the database file should be passes sql.Open, which
	// never touches the file, and fails the first real connection.
	path := filepath.Join(t.TempDir(), "projects.db")
	if err := os.Mkdir(path, 0700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	_, err := Open(context.Background(), path)
	if err == nil {
		t.Fatal("opening a directory as a database should fail")
	}
	if !strings.Contains(err.Error(), "ping sqlite") {
		t.Errorf("error = %v, want the ping failure", err)
	}
}

// sampleTimeline builds a two-item timeline: a video clip placed at 3s and a
// trimmed narration on the audio track. The image source stays unplaced, like
// a library import that has not been used yet.
func sampleTimeline(t *testing.T) (*timeline.Snapshot, []*timeline.MediaSource) {
	t.Helper()
	model := timeline.NewModel(timeline.WithEpsilon(0.01))

	video := timeline.NewSource(timeline.SourceVideo, "intro.mp4", "/media/intro.mp4", 10)
	audio := timeline.NewSource(timeline.SourceAudio, "voice.wav", "/media/voice.wav", 8)
	image := timeline.NewSource(timeline.SourceImage, "logo.png", "/media/logo.png", 0)

	clip := timeline.NewItem(video, 0, 3)
	narration := timeline.NewItem(audio, 1, 0)
	narration.Duration = 5
	narration.Offset = 2.5
	narration.Volume = 150

	if err := model.Commit([]timeline.Item{clip, narration}, nil); err != nil {
		t.Fatalf("commit fixture: %v", err)
	}
	return model.Snapshot(), []*timeline.MediaSource{video, audio, image}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, ctx := openStore(t)
	snap, sources := sampleTimeline(t)

	id, err := store.Save(ctx, "demo", snap, sources)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if id == "" {
		t.Fatal("save returned empty project id")
	}

	p, err := store.Load(ctx, "demo")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if p.ID != id {
		t.Errorf("loaded id = %s, want %s", p.ID, id)
	}
	if p.Epsilon != 0.01 {
		t.Errorf("epsilon = %v, want 0.01", p.Epsilon)
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Error("timestamps not populated")
	}

	if len(p.Tracks) != 2 {
		t.Fatalf("loaded %d tracks, want 2", len(p.Tracks))
	}
	for i, tr := range p.Tracks {
		if tr.Order != i {
			t.Errorf("track %d has order %d", i, tr.Order)
		}
	}
	if p.Tracks[0].Kind != timeline.MediaVideo || p.Tracks[1].Kind != timeline.MediaAudio {
		t.Errorf("track kinds = %v, %v, want video, audio", p.Tracks[0].Kind, p.Tracks[1].Kind)
	}

	want := snap.Items()
	if len(p.Items) != len(want) {
		t.Fatalf("loaded %d items, want %d", len(p.Items), len(want))
	}
	for i := range want {
		got := p.Items[i]
		got.Source = nil
		exp := want[i]
		exp.Source = nil
		if got != exp {
			t.Errorf("item %d = %+v, want %+v", i, got, exp)
		}
	}
	for _, it := range p.Items {
		if it.Source == nil {
			t.Errorf("item %s has no resolved source", it.ID)
		} else if it.Source.ID != it.SourceID {
			t.Errorf("item %s resolved to source %s", it.ID, it.Source.ID)
		}
	}

	if len(p.Sources) != 3 {
		t.Fatalf("loaded %d sources, want 3 including the unplaced image", len(p.Sources))
	}
	byName := make(map[string]*timeline.MediaSource)
	for _, src := range p.Sources {
		byName[src.Name] = src
	}
	logo, ok := byName["logo.png"]
	if !ok {
		t.Fatal("unplaced image source did not survive the round trip")
	}
	if logo.Kind != timeline.SourceImage || logo.Handle != "/media/logo.png" {
		t.Errorf("image source = %+v", logo)
	}
	voice := byName["voice.wav"]
	if voice == nil || voice.Duration != 8 {
		t.Errorf("audio source = %+v, want duration 8", voice)
	}
}

func TestSaveReplacesWholesale(t *testing.T) {
	store, ctx := openStore(t)
	snap, sources := sampleTimeline(t)

	id1, err := store.Save(ctx, "demo", snap, sources)
	if err != nil {
		t.Fatalf("first save failed: %v", err)
	}

	// Shrink the timeline to a single item and save under the same name.
	model := timeline.NewModel()
	img := timeline.NewSource(timeline.SourceImage, "slate.png", "/media/slate.png", 0)
	if err := model.Commit([]timeline.Item{timeline.NewItem(img, 0, 0)}, nil); err != nil {
		t.Fatalf("commit replacement: %v", err)
	}
	id2, err := store.Save(ctx, "demo", model.Snapshot(), []*timeline.MediaSource{img})
	if err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	if id2 != id1 {
		t.Errorf("resave changed project id from %s to %s", id1, id2)
	}

	p, err := store.Load(ctx, "demo")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(p.Items) != 1 {
		t.Errorf("loaded %d items after replace, want 1", len(p.Items))
	}
	if len(p.Sources) != 1 || p.Sources[0].Name != "slate.png" {
		t.Errorf("old sources survived the replace: %+v", p.Sources)
	}

	infos, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(infos) != 1 {
		t.Errorf("resave duplicated the project: %d rows", len(infos))
	}
}

func TestSaveValidatesInput(t *testing.T) {
	store, ctx := openStore(t)
	snap, sources := sampleTimeline(t)

	if _, err := store.Save(ctx, "   ", snap, sources); !errors.Is(err, ErrEmptyName) {
		t.Errorf("blank name error = %v, want ErrEmptyName", err)
	}
	if _, err := store.Save(ctx, "demo", nil, sources); !errors.Is(err, ErrNilSnapshot) {
		t.Errorf("nil snapshot error = %v, want ErrNilSnapshot", err)
	}
}

func TestSaveCollectsItemSources(t *testing.T) {
	store, ctx := openStore(t)
	snap, _ := sampleTimeline(t)

	// No library sources passed at all. The items carry resolved pointers,
	// which is enough to load the project back intact.
	if _, err := store.Save(ctx, "demo", snap, nil); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	p, err := store.Load(ctx, "demo")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(p.Sources) != 2 {
		t.Errorf("loaded %d sources, want the 2 referenced by items", len(p.Sources))
	}
	for _, it := range p.Items {
		if it.Source == nil {
			t.Errorf("item %s has no resolved source", it.ID)
		}
	}
}

func TestLoadMissingProject(t *testing.T) {
	store, ctx := openStore(t)

	if _, err := store.Load(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("load missing error = %v, want ErrNotFound", err)
	}
}

func TestListAggregates(t *testing.T) {
	store, ctx := openStore(t)
	snap, sources := sampleTimeline(t)

	if _, err := store.Save(ctx, "filled", snap, sources); err != nil {
		t.Fatalf("save filled: %v", err)
	}
	empty := timeline.NewModel()
	if _, err := store.Save(ctx, "empty", empty.Snapshot(), nil); err != nil {
		t.Fatalf("save empty: %v", err)
	}

	infos, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("listed %d projects, want 2", len(infos))
	}

	byName := make(map[string]Info)
	for _, info := range infos {
		byName[info.Name] = info
	}
	filled := byName["filled"]
	if filled.Items != 2 {
		t.Errorf("filled items = %d, want 2", filled.Items)
	}
	// The video clip spans [3, 13), the rightmost edge on the timeline.
	if filled.Duration != 13 {
		t.Errorf("filled duration = %v, want 13", filled.Duration)
	}
	if got := byName["empty"]; got.Items != 0 || got.Duration != 0 {
		t.Errorf("empty project listed as %+v", got)
	}
}

func TestDeleteCascades(t *testing.T) {
	store, ctx := openStore(t)
	snap, sources := sampleTimeline(t)

	if _, err := store.Save(ctx, "demo", snap, sources); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Delete(ctx, "demo"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Load(ctx, "demo"); !errors.Is(err, ErrNotFound) {
		t.Errorf("load after delete error = %v, want ErrNotFound", err)
	}

	var orphans int
	err := store.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&orphans)
	if err != nil {
		t.Fatalf("count items: %v", err)
	}
	if orphans != 0 {
		t.Errorf("%d item rows survived the cascade", orphans)
	}

	if err := store.Delete(ctx, "demo"); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete error = %v, want ErrNotFound", err)
	}
}

func TestRename(t *testing.T) {
	store, ctx := openStore(t)
	snap, sources := sampleTimeline(t)

	if _, err := store.Save(ctx, "draft", snap, sources); err != nil {
		t.Fatalf("save draft: %v", err)
	}
	if err := store.Rename(ctx, "draft", "final"); err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if _, err := store.Load(ctx, "final"); err != nil {
		t.Errorf("load renamed project: %v", err)
	}
	if _, err := store.Load(ctx, "draft"); !errors.Is(err, ErrNotFound) {
		t.Errorf("old name still loads: %v", err)
	}

	if err := store.Rename(ctx, "ghost", "anything"); !errors.Is(err, ErrNotFound) {
		t.Errorf("rename missing error = %v, want ErrNotFound", err)
	}
	if err := store.Rename(ctx, "final", ""); !errors.Is(err, ErrEmptyName) {
		t.Errorf("rename to blank error = %v, want ErrEmptyName", err)
	}

	empty := timeline.NewModel()
	if _, err := store.Save(ctx, "other", empty.Snapshot(), nil); err != nil {
		t.Fatalf("save other: %v", err)
	}
	if err := store.Rename(ctx, "final", "other"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("rename onto taken name error = %v, want ErrDuplicate", err)
	}
}
