package editor

import (
	"errors"
	"testing"
	"time"

	"github.com/PokeMichele/lumo/internal/history"
	"github.com/PokeMichele/lumo/internal/playback"
	"github.com/PokeMichele/lumo/internal/timeline"
)

// stubHandle is a minimal ready media handle for facade tests.
type stubHandle struct {
	playing bool
	pos     float64
	gain    float64
}

func (h *stubHandle) Play() error             { h.playing = true; return nil }
func (h *stubHandle) Pause()                  { h.playing = false }
func (h *stubHandle) Seek(seconds float64)    { h.pos = seconds }
func (h *stubHandle) Position() float64       { return h.pos }
func (h *stubHandle) SetGain(g float64) error { h.gain = g; return nil }
func (h *stubHandle) State() playback.HandleState {
	return playback.HandleReady
}
func (h *stubHandle) Close() error { return nil }

func stubOpener() playback.Opener {
	return playback.OpenerFunc(func(*timeline.MediaSource) (playback.MediaHandle, error) {
		return &stubHandle{}, nil
	})
}

func videoSrc(dur float64) *timeline.MediaSource {
	return timeline.NewSource(timeline.SourceVideo, "clip.mp4", "/media/clip.mp4", dur)
}

func audioSrc(dur float64) *timeline.MediaSource {
	return timeline.NewSource(timeline.SourceAudio, "song.mp3", "/media/song.mp3", dur)
}

func TestNewEditorDefaults(t *testing.T) {
	ed := New()

	if got := ed.Snapshot().TrackCount(); got != 2 {
		t.Errorf("TrackCount = %d, want default video and audio pair", got)
	}
	if ed.Time() != 0 || ed.Playing() {
		t.Error("fresh editor should sit paused at time zero")
	}
	if ed.CanUndo() {
		t.Error("fresh editor should have no history")
	}
	if ed.Frame() != nil {
		t.Error("no frame should exist before the first tick")
	}
}

func TestPlaceSource(t *testing.T) {
	ed := New()

	id, err := ed.PlaceSource(videoSrc(10), 0, 3)
	if err != nil {
		t.Fatalf("PlaceSource failed: %v", err)
	}

	it, ok := ed.Snapshot().Item(id)
	if !ok {
		t.Fatal("placed item should be in the snapshot")
	}
	if it.Start != 3 || it.Track != 0 || it.Duration != 10 {
		t.Errorf("item = start %v track %d dur %v, want 3/0/10", it.Start, it.Track, it.Duration)
	}
	if !ed.CanUndo() {
		t.Error("placing should push history")
	}
}

func TestPlaceSourceKindMismatch(t *testing.T) {
	ed := New()

	if _, err := ed.PlaceSource(audioSrc(10), 0, 0); !errors.Is(err, timeline.ErrKindMismatch) {
		t.Errorf("audio onto video track = %v, want ErrKindMismatch", err)
	}
	if _, err := ed.PlaceSource(videoSrc(10), 9, 0); !errors.Is(err, timeline.ErrTrackNotFound) {
		t.Errorf("unknown track = %v, want ErrTrackNotFound", err)
	}
	if _, err := ed.PlaceSource(nil, 0, 0); !errors.Is(err, ErrNilSource) {
		t.Errorf("nil source = %v, want ErrNilSource", err)
	}
}

func TestPlaceSourceResolvesCollision(t *testing.T) {
	ed := New()

	if _, err := ed.PlaceSource(videoSrc(5), 0, 0); err != nil {
		t.Fatalf("PlaceSource failed: %v", err)
	}
	id, err := ed.PlaceSource(videoSrc(5), 0, 0)
	if err != nil {
		t.Fatalf("second PlaceSource failed: %v", err)
	}

	it, _ := ed.Snapshot().Item(id)
	if it.Start != 5 {
		t.Errorf("Start = %v, want nearest legal 5", it.Start)
	}
}

func TestSetItemVolume(t *testing.T) {
	ed := New()
	id, err := ed.PlaceSource(audioSrc(10), 1, 0)
	if err != nil {
		t.Fatalf("PlaceSource failed: %v", err)
	}

	if err := ed.SetItemVolume(id, 350); err != nil {
		t.Fatalf("SetItemVolume failed: %v", err)
	}
	it, _ := ed.Snapshot().Item(id)
	if it.Volume != 200 {
		t.Errorf("Volume = %v, want clamped 200", it.Volume)
	}

	if err := ed.SetItemVolume("missing", 50); !errors.Is(err, timeline.ErrItemNotFound) {
		t.Errorf("unknown item = %v, want ErrItemNotFound", err)
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	ed := New()
	id, err := ed.PlaceSource(videoSrc(10), 0, 0)
	if err != nil {
		t.Fatalf("PlaceSource failed: %v", err)
	}

	if err := ed.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if _, ok := ed.Snapshot().Item(id); ok {
		t.Error("undo should remove the placed item")
	}
	if !ed.CanRedo() {
		t.Fatal("redo should be available after undo")
	}

	if err := ed.Redo(); err != nil {
		t.Fatalf("Redo failed: %v", err)
	}
	if _, ok := ed.Snapshot().Item(id); !ok {
		t.Error("redo should bring the item back")
	}

	if err := ed.Redo(); !errors.Is(err, history.ErrNothingToRedo) {
		t.Errorf("exhausted Redo = %v, want ErrNothingToRedo", err)
	}
}

func TestTrackManagement(t *testing.T) {
	ed := New()

	order, err := ed.AddTrack(timeline.MediaVideo)
	if err != nil {
		t.Fatalf("AddTrack failed: %v", err)
	}
	if order != 1 {
		t.Errorf("new video track order = %d, want 1 below the first video track", order)
	}
	if got := ed.Snapshot().TrackCount(); got != 3 {
		t.Errorf("TrackCount = %d, want 3", got)
	}

	if err := ed.RemoveTrack(order); err != nil {
		t.Fatalf("RemoveTrack failed: %v", err)
	}
	if got := ed.Snapshot().TrackCount(); got != 2 {
		t.Errorf("TrackCount = %d after removal, want 2", got)
	}

	if err := ed.RemoveTrack(0); !errors.Is(err, timeline.ErrLastTrackOfKind) {
		t.Errorf("removing the last video track = %v, want ErrLastTrackOfKind", err)
	}

	if err := ed.RenameTrack(0, "Main"); err != nil {
		t.Fatalf("RenameTrack failed: %v", err)
	}
	if trk, ok := ed.Snapshot().Track(0); !ok || trk.Label != "Main" {
		t.Errorf("track 0 = %+v, want the Main label", trk)
	}
	if err := ed.RenameTrack(9, "x"); !errors.Is(err, timeline.ErrTrackNotFound) {
		t.Errorf("renaming a missing track = %v, want ErrTrackNotFound", err)
	}
}

func TestSplitAtPlayhead(t *testing.T) {
	ed := New()
	id, err := ed.PlaceSource(videoSrc(10), 0, 0)
	if err != nil {
		t.Fatalf("PlaceSource failed: %v", err)
	}

	ed.SetTime(4)
	ed.Select(id, false)
	if got := ed.Split(); got != 1 {
		t.Fatalf("Split = %d, want 1", got)
	}
	if got := ed.Snapshot().ItemCount(); got != 2 {
		t.Errorf("ItemCount = %d after split, want 2", got)
	}
}

func TestCopyPasteAtPlayhead(t *testing.T) {
	ed := New()
	id, err := ed.PlaceSource(videoSrc(5), 0, 0)
	if err != nil {
		t.Fatalf("PlaceSource failed: %v", err)
	}

	ed.Select(id, false)
	if got := ed.Copy(); got != 1 {
		t.Fatalf("Copy = %d, want 1", got)
	}
	ed.SetTime(20)
	ids := ed.Paste()
	if len(ids) != 1 {
		t.Fatalf("Paste = %v, want one id", ids)
	}
	it, _ := ed.Snapshot().Item(ids[0])
	if it.Start != 20 {
		t.Errorf("pasted Start = %v, want the playhead 20", it.Start)
	}
}

func TestTransport(t *testing.T) {
	ed := New()

	ed.SetTime(-5)
	if got := ed.Time(); got != 0 {
		t.Errorf("Time = %v after negative seek, want clamped 0", got)
	}
	ed.SetTime(12.5)
	if got := ed.Time(); got != 12.5 {
		t.Errorf("Time = %v, want 12.5", got)
	}

	if !ed.TogglePlayback() {
		t.Error("first toggle should start playback")
	}
	if ed.TogglePlayback() {
		t.Error("second toggle should stop playback")
	}
}

func TestTickAdvancesAndComposes(t *testing.T) {
	ed := New(WithOpener(stubOpener()))
	if _, err := ed.PlaceSource(videoSrc(30), 0, 0); err != nil {
		t.Fatalf("PlaceSource failed: %v", err)
	}

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ed.SetPlaying(true)

	frame := ed.Tick(t0)
	if frame == nil {
		t.Fatal("first tick should compose a frame")
	}
	if frame.Time != 0 {
		t.Errorf("frame Time = %v, want baseline 0", frame.Time)
	}

	frame = ed.Tick(t0.Add(time.Second))
	if got := ed.Time(); got != 1 {
		t.Errorf("Time = %v after 1s tick, want 1", got)
	}
	if frame.Time != 1 {
		t.Errorf("frame Time = %v, want 1", frame.Time)
	}
	if len(frame.Layers) != 1 {
		t.Errorf("frame Layers = %d, want the active clip", len(frame.Layers))
	}
}

func TestTickThrottlesCompose(t *testing.T) {
	ed := New(WithOpener(stubOpener()))
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	first := ed.Tick(t0)
	gated := ed.Tick(t0.Add(5 * time.Millisecond))
	if gated != first {
		t.Error("a tick inside the throttle window should return the previous frame")
	}

	fresh := ed.Tick(t0.Add(50 * time.Millisecond))
	if fresh == first {
		t.Error("a tick past the throttle window should compose a fresh frame")
	}
}

func TestSeekReopensThrottle(t *testing.T) {
	ed := New(WithOpener(stubOpener()))
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if frame := ed.Tick(t0); frame.Time != 0 {
		t.Fatalf("frame Time = %v before the scrub, want 0", frame.Time)
	}

	ed.SetTime(5)
	frame := ed.Tick(t0.Add(5 * time.Millisecond))
	if frame.Time != 5 {
		t.Errorf("frame Time = %v right after the scrub, want 5", frame.Time)
	}
}

func TestLoadTimelineReopensThrottle(t *testing.T) {
	ed := New(WithOpener(stubOpener()))
	if _, err := ed.PlaceSource(videoSrc(10), 0, 0); err != nil {
		t.Fatalf("PlaceSource failed: %v", err)
	}
	ed.SetTime(5)

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if frame := ed.Tick(t0); frame.Time != 5 {
		t.Fatalf("frame Time = %v before the load, want 5", frame.Time)
	}

	items := []timeline.Item{timeline.NewItem(videoSrc(4), 0, 2)}
	if err := ed.LoadTimeline(items, nil); err != nil {
		t.Fatalf("LoadTimeline failed: %v", err)
	}
	frame := ed.Tick(t0.Add(5 * time.Millisecond))
	if frame.Time != 0 {
		t.Errorf("frame Time = %v right after the load, want the rewound playhead 0", frame.Time)
	}
}

func TestLoadTimelineReplacesState(t *testing.T) {
	ed := New(WithOpener(stubOpener()))

	if _, err := ed.PlaceSource(videoSrc(10), 0, 0); err != nil {
		t.Fatalf("PlaceSource failed: %v", err)
	}
	ed.SetTime(7)
	ed.SetPlaying(true)

	// A three track project with one clip on the second video track.
	tracks := []timeline.Track{
		timeline.NewTrack(timeline.MediaVideo, "Video 1"),
		timeline.NewTrack(timeline.MediaVideo, "Video 2"),
		timeline.NewTrack(timeline.MediaAudio, "Audio 1"),
	}
	for i := range tracks {
		tracks[i].Order = i
	}
	items := []timeline.Item{timeline.NewItem(videoSrc(4), 1, 2)}

	if err := ed.LoadTimeline(items, tracks); err != nil {
		t.Fatalf("LoadTimeline failed: %v", err)
	}

	snap := ed.Snapshot()
	if snap.TrackCount() != 3 || snap.ItemCount() != 1 {
		t.Errorf("loaded %d tracks %d items, want 3 and 1", snap.TrackCount(), snap.ItemCount())
	}
	if ed.Time() != 0 || ed.Playing() {
		t.Error("loading should stop playback and rewind to zero")
	}
	if ed.CanUndo() || ed.CanRedo() {
		t.Error("loading should reset the history")
	}
	if got := ed.Selection(); len(got) != 0 {
		t.Errorf("selection survived the load: %v", got)
	}
}

func TestLoadTimelineRejectsInvalidState(t *testing.T) {
	ed := New()

	id, err := ed.PlaceSource(videoSrc(10), 0, 0)
	if err != nil {
		t.Fatalf("PlaceSource failed: %v", err)
	}

	// The item references track 5, which the track set does not have.
	bad := []timeline.Item{timeline.NewItem(videoSrc(4), 5, 0)}
	if err := ed.LoadTimeline(bad, nil); err == nil {
		t.Fatal("loading an invalid timeline should fail")
	}

	if _, ok := ed.Snapshot().Item(id); !ok {
		t.Error("failed load should leave the previous timeline in place")
	}
	if !ed.CanUndo() {
		t.Error("failed load should leave the history alone")
	}
}
