package library

import (
	"errors"
	"testing"

	"github.com/PokeMichele/lumo/internal/timeline"
)

func TestImportAndGet(t *testing.T) {
	l := New()

	src, err := l.Import(timeline.SourceVideo, "clip.mp4", "/media/clip.mp4", 42)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if src.ID == "" {
		t.Fatal("imported source should get an id")
	}

	got, ok := l.Get(src.ID)
	if !ok {
		t.Fatal("Get should find the imported source")
	}
	if got.Name != "clip.mp4" || got.Handle != "/media/clip.mp4" || got.Duration != 42 {
		t.Errorf("source = %q %q %v, want clip.mp4 path 42", got.Name, got.Handle, got.Duration)
	}
}

func TestAddRejectsDuplicates(t *testing.T) {
	l := New()
	src := timeline.NewSource(timeline.SourceAudio, "song.mp3", "/media/song.mp3", 180)

	if err := l.Add(src); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := l.Add(src); !errors.Is(err, ErrSourceExists) {
		t.Errorf("second Add = %v, want ErrSourceExists", err)
	}
	if err := l.Add(nil); !errors.Is(err, ErrNilSource) {
		t.Errorf("Add nil = %v, want ErrNilSource", err)
	}
}

func TestRemove(t *testing.T) {
	l := New()
	src, _ := l.Import(timeline.SourceImage, "title.png", "/media/title.png", 0)

	if err := l.Remove(src.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if l.Has(src.ID) {
		t.Error("removed source should be gone")
	}
	if err := l.Remove(src.ID); !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("second Remove = %v, want ErrSourceNotFound", err)
	}
}

func TestRename(t *testing.T) {
	l := New()
	src, _ := l.Import(timeline.SourceVideo, "untitled.mp4", "/media/u.mp4", 5)

	if err := l.Rename(src.ID, "intro.mp4"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	got, _ := l.Get(src.ID)
	if got.Name != "intro.mp4" {
		t.Errorf("Name = %q, want intro.mp4", got.Name)
	}

	if err := l.Rename("missing", "x"); !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("Rename unknown = %v, want ErrSourceNotFound", err)
	}
}

func TestAllSortedByName(t *testing.T) {
	l := New()
	l.Import(timeline.SourceVideo, "c.mp4", "/m/c", 1)
	l.Import(timeline.SourceVideo, "a.mp4", "/m/a", 1)
	l.Import(timeline.SourceAudio, "b.mp3", "/m/b", 1)

	all := l.All()
	if len(all) != 3 {
		t.Fatalf("All = %d sources, want 3", len(all))
	}
	for i, want := range []string{"a.mp4", "b.mp3", "c.mp4"} {
		if all[i].Name != want {
			t.Errorf("All[%d].Name = %q, want %q", i, all[i].Name, want)
		}
	}
}

func TestOfKind(t *testing.T) {
	l := New()
	l.Import(timeline.SourceVideo, "a.mp4", "/m/a", 1)
	l.Import(timeline.SourceVideo, "b.mp4", "/m/b", 1)
	l.Import(timeline.SourceAudio, "c.mp3", "/m/c", 1)

	if got := len(l.OfKind(timeline.SourceVideo)); got != 2 {
		t.Errorf("OfKind(video) = %d, want 2", got)
	}
	if got := len(l.OfKind(timeline.SourceEffect)); got != 0 {
		t.Errorf("OfKind(effect) = %d, want 0", got)
	}
}
