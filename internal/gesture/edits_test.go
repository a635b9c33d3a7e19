package gesture

import (
	"testing"

	"github.com/PokeMichele/lumo/internal/timeline"
)

func TestSplitSelectedItem(t *testing.T) {
	f := newFixture()
	a := f.place(t, videoClip(10), 0, 0)
	f.seed()

	f.ctrl.Select(a.ID, false)
	if got := f.ctrl.Split(4); got != 1 {
		t.Fatalf("Split = %d, want 1", got)
	}

	cur := f.model.Snapshot()
	halves := cur.ItemsOnTrack(0)
	if len(halves) != 2 {
		t.Fatalf("ItemsOnTrack = %d items, want 2 halves", len(halves))
	}
	left, right := halves[0], halves[1]
	if left.ID != a.ID {
		t.Error("left half should keep the original id")
	}
	if left.Duration != 4 || right.Start != 4 || right.Duration != 6 {
		t.Errorf("halves = [%v,%v) and [%v,%v), want [0,4) and [4,10)",
			left.Start, left.End(), right.Start, right.End())
	}
	if right.Offset != 4 {
		t.Errorf("right Offset = %v, want 4 so playback resumes mid-source", right.Offset)
	}
	if !f.hist.CanUndo() {
		t.Error("split should push history")
	}
}

func TestSplitOutsideSelectedItems(t *testing.T) {
	f := newFixture()
	a := f.place(t, videoClip(10), 0, 0)
	f.seed()

	f.ctrl.Select(a.ID, false)
	if got := f.ctrl.Split(20); got != 0 {
		t.Errorf("Split outside the item = %d, want 0", got)
	}
	if f.hist.CanUndo() {
		t.Error("a no-op split should not push history")
	}
}

func TestSplitRequiresSelection(t *testing.T) {
	f := newFixture()
	f.place(t, videoClip(10), 0, 0)
	f.seed()

	if got := f.ctrl.Split(5); got != 0 {
		t.Errorf("Split with nothing selected = %d, want 0", got)
	}
}

func TestDeleteRemovesSelection(t *testing.T) {
	f := newFixture()
	a := f.place(t, videoClip(5), 0, 0)
	b := f.place(t, videoClip(5), 0, 10)
	f.seed()

	f.ctrl.Select(a.ID, false)
	if got := f.ctrl.Delete(); got != 1 {
		t.Fatalf("Delete = %d, want 1", got)
	}

	cur := f.model.Snapshot()
	if _, ok := cur.Item(a.ID); ok {
		t.Error("deleted item should be gone from the model")
	}
	if _, ok := cur.Item(b.ID); !ok {
		t.Error("unselected item should survive")
	}
	if got := f.ctrl.Selection(); len(got) != 0 {
		t.Errorf("Selection = %v after delete, want empty", got)
	}
	if !f.hist.CanUndo() {
		t.Error("delete should push history")
	}
}

func TestCopyPasteAtPlayhead(t *testing.T) {
	f := newFixture()
	a := f.place(t, videoClip(5), 0, 0)
	f.seed()

	f.ctrl.Select(a.ID, false)
	if got := f.ctrl.Copy(); got != 1 {
		t.Fatalf("Copy = %d, want 1", got)
	}

	ids := f.ctrl.Paste(20)
	if len(ids) != 1 {
		t.Fatalf("Paste = %v, want one new id", ids)
	}
	if ids[0] == a.ID {
		t.Error("pasted item should get a fresh id")
	}

	got := f.item(t, ids[0])
	if got.Start != 20 || got.Track != 0 {
		t.Errorf("pasted item = start %v track %d, want start 20 track 0", got.Start, got.Track)
	}
	if got.SourceID != a.SourceID || got.Duration != a.Duration {
		t.Error("pasted item should reuse the copied source and duration")
	}
	if orig := f.item(t, a.ID); orig.Start != 0 {
		t.Error("copy should leave the original in place")
	}
	if sel := f.ctrl.Selection(); len(sel) != 1 || sel[0] != ids[0] {
		t.Errorf("Selection = %v, want the pasted item", sel)
	}
}

func TestPastePreservesRelativeLayout(t *testing.T) {
	f := newFixture()
	a := f.place(t, videoClip(5), 0, 2)
	b := f.place(t, videoClip(5), 0, 10)
	f.seed()

	f.ctrl.Select(a.ID, false)
	f.ctrl.Select(b.ID, true)
	f.ctrl.Copy()

	ids := f.ctrl.Paste(20)
	if len(ids) != 2 {
		t.Fatalf("Paste = %v, want two new ids", ids)
	}

	starts := make(map[float64]bool)
	for _, id := range ids {
		starts[f.item(t, id).Start] = true
	}
	if !starts[20] || !starts[28] {
		t.Errorf("pasted starts = %v, want 20 and 28 keeping the 8s gap", starts)
	}
}

func TestPasteRoutesToFirstCompatibleTrack(t *testing.T) {
	f := newFixture()

	// Grow a second audio track, place the clip there, and check paste
	// lands on the first audio track instead.
	cur := f.model.Snapshot()
	tracks, items := timeline.InsertTrack(cur.Tracks(), cur.Items(), timeline.MediaAudio, "Audio 2")
	if err := f.model.Commit(items, tracks); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	a := f.place(t, audioClip(5), 2, 0)
	f.seed()

	f.ctrl.Select(a.ID, false)
	f.ctrl.Copy()
	ids := f.ctrl.Paste(10)
	if len(ids) != 1 {
		t.Fatalf("Paste = %v, want one new id", ids)
	}
	if got := f.item(t, ids[0]); got.Track != 1 {
		t.Errorf("pasted Track = %d, want first audio track 1", got.Track)
	}
}

func TestPasteResolvesOverlapToNearestLegal(t *testing.T) {
	f := newFixture()
	a := f.place(t, videoClip(5), 0, 0)
	f.seed()

	f.ctrl.Select(a.ID, false)
	f.ctrl.Copy()

	ids := f.ctrl.Paste(0)
	if len(ids) != 1 {
		t.Fatalf("Paste = %v, want one new id", ids)
	}
	if got := f.item(t, ids[0]); got.Start != 5 {
		t.Errorf("pasted Start = %v, want nearest legal 5 flush after the original", got.Start)
	}
}

func TestCutRemovesOriginals(t *testing.T) {
	f := newFixture()
	a := f.place(t, videoClip(5), 0, 0)
	f.seed()

	f.ctrl.Select(a.ID, false)
	if got := f.ctrl.Cut(); got != 1 {
		t.Fatalf("Cut = %d, want 1", got)
	}
	if _, ok := f.model.Snapshot().Item(a.ID); ok {
		t.Error("cut should remove the original immediately")
	}
	if got := f.ctrl.ClipboardCount(); got != 1 {
		t.Errorf("ClipboardCount = %d, want 1", got)
	}

	ids := f.ctrl.Paste(0)
	if len(ids) != 1 {
		t.Fatalf("Paste after cut = %v, want one new id", ids)
	}
	if got := f.item(t, ids[0]); got.Start != 0 {
		t.Errorf("pasted Start = %v, want 0 on the now-empty track", got.Start)
	}
	if got := f.hist.UndoCount(); got != 2 {
		t.Errorf("UndoCount = %d, want cut and paste pushes", got)
	}
}

func TestPasteEmptyClipboard(t *testing.T) {
	f := newFixture()
	f.seed()

	if ids := f.ctrl.Paste(0); ids != nil {
		t.Errorf("Paste with empty clipboard = %v, want nil", ids)
	}
}
