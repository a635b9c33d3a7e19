package gesture

import (
	"testing"

	"github.com/PokeMichele/lumo/internal/history"
	"github.com/PokeMichele/lumo/internal/timeline"
	"github.com/PokeMichele/lumo/internal/timeline/snap"
)

// fixture wires a controller to a fresh model with the default video and
// audio tracks. Items are placed directly on the model, then seed resets
// history so gesture pushes are counted from a clean slate.
type fixture struct {
	model *timeline.Model
	hist  *history.History
	ctrl  *Controller
}

func newFixture() *fixture {
	m := timeline.NewModel()
	h := history.NewHistory(m.Snapshot(), 0)
	return &fixture{model: m, hist: h, ctrl: NewController(m, snap.NewResolver(), h)}
}

func (f *fixture) place(t *testing.T, src *timeline.MediaSource, track int, start float64) timeline.Item {
	t.Helper()
	it := timeline.NewItem(src, track, start)
	items := append(f.model.Snapshot().Items(), it)
	if err := f.model.Commit(items, nil); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	return it
}

func (f *fixture) seed() {
	f.hist.Clear(f.model.Snapshot())
}

func (f *fixture) item(t *testing.T, id string) timeline.Item {
	t.Helper()
	it, ok := f.model.Snapshot().Item(id)
	if !ok {
		t.Fatalf("item %s not in model", id)
	}
	return it
}

// xAt maps a time to the pixel column, yAt maps a track to a pixel row
// through the middle of its lane.
func (f *fixture) xAt(tm float64) int {
	return f.ctrl.Layout().XAt(tm)
}

func (f *fixture) yAt(track int) int {
	return f.ctrl.Layout().YAt(track) + DefaultTrackHeight/2
}

func videoClip(dur float64) *timeline.MediaSource {
	return timeline.NewSource(timeline.SourceVideo, "clip.mp4", "/media/clip.mp4", dur)
}

func audioClip(dur float64) *timeline.MediaSource {
	return timeline.NewSource(timeline.SourceAudio, "song.mp3", "/media/song.mp3", dur)
}

func imageStill() *timeline.MediaSource {
	return timeline.NewSource(timeline.SourceImage, "photo.png", "/media/photo.png", 0)
}

func TestClickSelectsItem(t *testing.T) {
	f := newFixture()
	a := f.place(t, videoClip(5), 0, 0)
	b := f.place(t, videoClip(5), 0, 10)
	f.seed()

	f.ctrl.Select(b.ID, false)
	f.ctrl.PointerDown(f.xAt(2.5), f.yAt(0), ModNone)
	f.ctrl.PointerUp(f.xAt(2.5), f.yAt(0), ModNone)

	if got := f.ctrl.Selection(); len(got) != 1 || got[0] != a.ID {
		t.Errorf("Selection = %v, want just the clicked item", got)
	}
	if f.ctrl.State() != StateIdle {
		t.Errorf("State = %v, want idle after release", f.ctrl.State())
	}
	if f.hist.CanUndo() {
		t.Error("a bare click should not push history")
	}
}

func TestModifierClickExtendsSelection(t *testing.T) {
	f := newFixture()
	a := f.place(t, videoClip(5), 0, 0)
	b := f.place(t, videoClip(5), 0, 10)
	f.seed()

	f.ctrl.Select(b.ID, false)
	f.ctrl.PointerDown(f.xAt(2.5), f.yAt(0), ModShift)
	f.ctrl.PointerUp(f.xAt(2.5), f.yAt(0), ModShift)

	sel := f.ctrl.Selection()
	if len(sel) != 2 || !f.ctrl.Selected(a.ID) || !f.ctrl.Selected(b.ID) {
		t.Errorf("Selection = %v, want both items", sel)
	}
}

func TestDragMovesItem(t *testing.T) {
	f := newFixture()
	a := f.place(t, videoClip(5), 0, 0)
	f.seed()

	f.ctrl.PointerDown(f.xAt(2.5), f.yAt(0), ModNone)
	f.ctrl.PointerMove(f.xAt(22.5), f.yAt(0), ModNone)
	f.ctrl.PointerUp(f.xAt(22.5), f.yAt(0), ModNone)

	got := f.item(t, a.ID)
	if got.Start != 20 {
		t.Errorf("Start = %v, want 20", got.Start)
	}
	if got.Track != 0 {
		t.Errorf("Track = %v, want 0", got.Track)
	}
	if !f.hist.CanUndo() {
		t.Error("a committed drag should push history")
	}
}

func TestDragSnapsFlushToNeighbor(t *testing.T) {
	f := newFixture()
	a := f.place(t, videoClip(5), 0, 0)
	f.place(t, videoClip(5), 0, 10)
	f.seed()

	// Release with the trailing edge 0.04s shy of the neighbor's start.
	f.ctrl.PointerDown(f.xAt(2.5), f.yAt(0), ModNone)
	f.ctrl.PointerUp(f.xAt(2.5)+248, f.yAt(0), ModNone)

	got := f.item(t, a.ID)
	if got.Start != 5 {
		t.Errorf("Start = %v, want flush at 5", got.Start)
	}
}

func TestDragGhostsReportSnap(t *testing.T) {
	f := newFixture()
	a := f.place(t, videoClip(5), 0, 0)
	f.place(t, videoClip(5), 0, 10)
	f.seed()

	f.ctrl.PointerDown(f.xAt(2.5), f.yAt(0), ModNone)
	f.ctrl.PointerMove(f.xAt(2.5)+248, f.yAt(0), ModNone)

	ghosts := f.ctrl.Ghosts()
	if len(ghosts) != 1 {
		t.Fatalf("Ghosts = %d entries, want 1", len(ghosts))
	}
	g := ghosts[0]
	if g.ItemID != a.ID || g.Start != 5 || !g.Snapped || g.SnapPoint != 10 {
		t.Errorf("ghost = %+v, want snapped start 5 at point 10", g)
	}
	if !g.Legal {
		t.Error("flush placement should be legal")
	}

	cur := f.item(t, a.ID)
	if cur.Start != 0 {
		t.Errorf("model Start = %v during drag, want untouched 0", cur.Start)
	}
	f.ctrl.Cancel()
}

func TestDragToIncompatibleTrackReverts(t *testing.T) {
	f := newFixture()
	a := f.place(t, videoClip(5), 0, 0)
	f.seed()

	f.ctrl.PointerDown(f.xAt(2.5), f.yAt(0), ModNone)
	f.ctrl.PointerMove(f.xAt(2.5), f.yAt(1), ModNone)

	ghosts := f.ctrl.Ghosts()
	if len(ghosts) != 1 || ghosts[0].Legal {
		t.Errorf("ghost on an audio track = %+v, want illegal", ghosts)
	}

	f.ctrl.PointerUp(f.xAt(2.5), f.yAt(1), ModNone)
	got := f.item(t, a.ID)
	if got.Track != 0 || got.Start != 0 {
		t.Errorf("item = track %d start %v, want reverted to track 0 start 0", got.Track, got.Start)
	}
	if f.hist.CanUndo() {
		t.Error("a fully reverted drag should not push history")
	}
}

func TestMultiDragPartialFailure(t *testing.T) {
	f := newFixture()
	a := f.place(t, videoClip(3), 0, 0)
	b := f.place(t, videoClip(3), 0, 10)
	f.place(t, videoClip(2), 0, 14)
	f.seed()

	f.ctrl.Select(a.ID, false)
	f.ctrl.Select(b.ID, true)

	// Drag the pair 2s right: a lands free, b would overlap the
	// stationary clip at 14 and must revert alone.
	f.ctrl.PointerDown(f.xAt(1.5), f.yAt(0), ModNone)
	f.ctrl.PointerUp(f.xAt(3.5), f.yAt(0), ModNone)

	if got := f.item(t, a.ID); got.Start != 2 {
		t.Errorf("moved member Start = %v, want 2", got.Start)
	}
	if got := f.item(t, b.ID); got.Start != 10 {
		t.Errorf("offending member Start = %v, want reverted 10", got.Start)
	}
	if got := f.hist.UndoCount(); got != 1 {
		t.Errorf("UndoCount = %d, want 1 push for the partial commit", got)
	}
}

func TestMultiDragPropagatesOneDelta(t *testing.T) {
	f := newFixture()
	a := f.place(t, videoClip(3), 0, 0)
	b := f.place(t, audioClip(3), 1, 5)
	f.seed()

	f.ctrl.Select(a.ID, false)
	f.ctrl.Select(b.ID, true)

	f.ctrl.PointerDown(f.xAt(1.5), f.yAt(0), ModNone)
	f.ctrl.PointerUp(f.xAt(8.5), f.yAt(0), ModNone)

	if got := f.item(t, a.ID); got.Start != 7 {
		t.Errorf("primary Start = %v, want 7", got.Start)
	}
	if got := f.item(t, b.ID); got.Start != 12 || got.Track != 1 {
		t.Errorf("member = start %v track %d, want start 12 track 1", got.Start, got.Track)
	}
}

func TestCancelAbandonsDrag(t *testing.T) {
	f := newFixture()
	a := f.place(t, videoClip(5), 0, 0)
	f.seed()

	f.ctrl.PointerDown(f.xAt(2.5), f.yAt(0), ModNone)
	f.ctrl.PointerMove(f.xAt(22.5), f.yAt(0), ModNone)
	f.ctrl.Cancel()

	if f.ctrl.State() != StateIdle {
		t.Errorf("State = %v, want idle after cancel", f.ctrl.State())
	}
	if got := f.ctrl.Ghosts(); len(got) != 0 {
		t.Errorf("Ghosts = %v after cancel, want none", got)
	}
	if got := f.item(t, a.ID); got.Start != 0 {
		t.Errorf("Start = %v, want untouched 0", got.Start)
	}
}

func TestResizeExtendsImage(t *testing.T) {
	f := newFixture()
	img := f.place(t, imageStill(), 0, 0)
	f.seed()

	edge := f.xAt(img.End())
	f.ctrl.PointerDown(edge-2, f.yAt(0), ModNone)
	if f.ctrl.State() != StateResizing {
		t.Fatalf("State = %v, want resizing on the edge grab zone", f.ctrl.State())
	}
	f.ctrl.PointerUp(f.xAt(8), f.yAt(0), ModNone)

	if got := f.item(t, img.ID); got.Duration != 8 {
		t.Errorf("Duration = %v, want 8", got.Duration)
	}
	if !f.hist.CanUndo() {
		t.Error("a committed resize should push history")
	}
}

func TestResizeSnapsToNextItem(t *testing.T) {
	f := newFixture()
	img := f.place(t, imageStill(), 0, 0)
	f.place(t, videoClip(2), 0, 10)
	f.seed()

	edge := f.xAt(img.End())
	f.ctrl.PointerDown(edge-2, f.yAt(0), ModNone)
	f.ctrl.PointerUp(f.xAt(9.9), f.yAt(0), ModNone)

	if got := f.item(t, img.ID); got.Duration != 10 {
		t.Errorf("Duration = %v, want snapped flush at 10", got.Duration)
	}
}

func TestResizeIgnoredForVideo(t *testing.T) {
	f := newFixture()
	v := f.place(t, videoClip(5), 0, 0)
	f.seed()

	edge := f.xAt(v.End())
	f.ctrl.PointerDown(edge-2, f.yAt(0), ModNone)

	if f.ctrl.State() != StateDragging {
		t.Errorf("State = %v, want dragging, video clips do not trim", f.ctrl.State())
	}
	f.ctrl.Cancel()
}

func TestRectSelectAccumulates(t *testing.T) {
	f := newFixture()
	a := f.place(t, videoClip(5), 0, 0)
	b := f.place(t, audioClip(5), 1, 0)
	f.seed()

	f.ctrl.PointerDown(f.xAt(8), f.yAt(0), ModNone)
	if f.ctrl.State() != StateRectSelecting {
		t.Fatalf("State = %v, want rect-selecting on empty area", f.ctrl.State())
	}
	f.ctrl.PointerMove(f.xAt(2), f.yAt(1), ModNone)

	if band, ok := f.ctrl.Band(); !ok || band.W == 0 || band.H == 0 {
		t.Errorf("Band = %+v %v, want an active rectangle", band, ok)
	}

	f.ctrl.PointerUp(f.xAt(2), f.yAt(1), ModNone)
	if !f.ctrl.Selected(a.ID) || !f.ctrl.Selected(b.ID) {
		t.Errorf("Selection = %v, want both intersected items", f.ctrl.Selection())
	}
	if _, ok := f.ctrl.Band(); ok {
		t.Error("Band should be gone after release")
	}
}

func TestRectSelectModifierToggles(t *testing.T) {
	f := newFixture()
	a := f.place(t, videoClip(5), 0, 0)
	b := f.place(t, audioClip(5), 1, 0)
	f.seed()

	f.ctrl.Select(a.ID, false)

	f.ctrl.PointerDown(f.xAt(8), f.yAt(0), ModShift)
	f.ctrl.PointerUp(f.xAt(2), f.yAt(1), ModShift)

	if f.ctrl.Selected(a.ID) {
		t.Error("previously selected item inside the rect should toggle off")
	}
	if !f.ctrl.Selected(b.ID) {
		t.Error("unselected item inside the rect should toggle on")
	}
}

func TestRectSelectWithoutModifierReplaces(t *testing.T) {
	f := newFixture()
	a := f.place(t, videoClip(5), 0, 0)
	f.place(t, videoClip(5), 0, 20)
	f.seed()

	f.ctrl.Select(a.ID, false)

	// Rect over empty space only.
	f.ctrl.PointerDown(f.xAt(10), f.yAt(0), ModNone)
	f.ctrl.PointerUp(f.xAt(12), f.yAt(0), ModNone)

	if got := f.ctrl.Selection(); len(got) != 0 {
		t.Errorf("Selection = %v, want cleared by a plain rect on empty space", got)
	}
}
