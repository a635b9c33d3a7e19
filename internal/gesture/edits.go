package gesture

import (
	"math"

	"github.com/google/uuid"

	"github.com/PokeMichele/lumo/internal/timeline"
)

// clipEntry is one clipboard item, stored relative to the earliest start
// in the copied set so a paste keeps the selection's internal layout.
type clipEntry struct {
	item     timeline.Item
	relStart float64
}

// Split cuts every selected item that strictly contains the given time in
// two, each pair playing back exactly what the whole item did. Selected
// items not containing the time are left alone. Returns the number of
// items split.
func (c *Controller) Split(t float64) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle || c.selection.Len() == 0 {
		return 0
	}

	cur := c.model.Snapshot()
	items := cur.Items()
	out := make([]timeline.Item, 0, len(items)+c.selection.Len())
	split := 0
	for _, it := range items {
		if !c.selection.Has(it.ID) {
			out = append(out, it)
			continue
		}
		left, right, err := it.SplitAt(t)
		if err != nil {
			out = append(out, it)
			continue
		}
		out = append(out, left, right)
		split++
	}
	if split == 0 {
		return 0
	}

	if err := c.model.Commit(out, nil); err != nil {
		c.logger.Error("split commit failed", "error", err)
		return 0
	}
	c.history.Push(c.model.Snapshot(), "split")
	return split
}

// Delete removes all selected items and clears the selection. Returns the
// number of items removed.
func (c *Controller) Delete() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		return 0
	}
	return c.deleteSelection("delete")
}

// Copy snapshots the selected items into the clipboard. Copied items keep
// their track and their layout relative to the earliest selected start.
// Returns the number of items copied.
func (c *Controller) Copy() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copySelection()
}

// Cut copies the selected items and removes the originals immediately.
// Returns the number of items cut.
func (c *Controller) Cut() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		return 0
	}
	n := c.copySelection()
	if n == 0 {
		return 0
	}
	return c.deleteSelection("cut")
}

// Paste inserts the clipboard at the given time. Each item goes to the
// first track hosting its kind, or back to its original track when none
// matches. Placements that would overlap resolve to the nearest legal
// position, items with no legal home within the search radius are skipped
// with a warning. Pasted items get fresh ids and become the new
// selection. Returns the ids of the inserted items in insertion order.
func (c *Controller) Paste(t float64) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle || len(c.clipboard) == 0 {
		return nil
	}

	cur := c.model.Snapshot()
	tracks := cur.Tracks()
	working := cur.Items()

	// Placements go through a scratch model so each pasted item sees the
	// ones before it, the real model commits once at the end.
	scratch := timeline.NewModel(timeline.WithEpsilon(cur.Epsilon()))
	if err := scratch.Commit(working, tracks); err != nil {
		c.logger.Error("paste staging failed", "error", err)
		return nil
	}

	var pasted []string
	for _, entry := range c.clipboard {
		it := entry.item
		it.ID = uuid.NewString()
		it.Start = t + entry.relStart
		it.Track = routeTrack(cur, it)

		move := c.resolver.ResolvePlace(scratch.Snapshot(), it, it.Start, it.Track)
		if !move.Legal {
			c.logger.Warn("paste found no legal position, skipping item", "source", it.SourceID)
			continue
		}
		it.Start = move.Start

		working = append(working, it)
		if err := scratch.Commit(working, tracks); err != nil {
			c.logger.Error("paste placement rejected", "error", err)
			working = working[:len(working)-1]
			continue
		}
		pasted = append(pasted, it.ID)
	}
	if len(pasted) == 0 {
		return nil
	}

	if err := c.model.Commit(working, nil); err != nil {
		c.logger.Error("paste commit failed", "error", err)
		return nil
	}
	c.selection.Clear()
	for _, id := range pasted {
		c.selection.Add(id)
	}
	c.history.Push(c.model.Snapshot(), "paste")
	return pasted
}

// ClipboardCount returns the number of items in the clipboard.
func (c *Controller) ClipboardCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clipboard)
}

func (c *Controller) copySelection() int {
	if c.selection.Len() == 0 {
		return 0
	}
	cur := c.model.Snapshot()

	picked := make([]timeline.Item, 0, c.selection.Len())
	anchor := math.MaxFloat64
	for _, id := range c.selection.IDs() {
		it, ok := cur.Item(id)
		if !ok {
			continue
		}
		picked = append(picked, it)
		if it.Start < anchor {
			anchor = it.Start
		}
	}
	if len(picked) == 0 {
		return 0
	}

	c.clipboard = make([]clipEntry, 0, len(picked))
	for _, it := range picked {
		c.clipboard = append(c.clipboard, clipEntry{item: it, relStart: it.Start - anchor})
	}
	return len(c.clipboard)
}

func (c *Controller) deleteSelection(label string) int {
	cur := c.model.Snapshot()
	items := cur.Items()
	out := items[:0]
	removed := 0
	for _, it := range items {
		if c.selection.Has(it.ID) {
			removed++
			continue
		}
		out = append(out, it)
	}
	if removed == 0 {
		c.selection.Clear()
		return 0
	}

	if err := c.model.Commit(out, nil); err != nil {
		c.logger.Error("commit failed", "op", label, "error", err)
		return 0
	}
	c.selection.Clear()
	c.history.Push(c.model.Snapshot(), label)
	return removed
}

// routeTrack picks the destination track for a pasted item: the first
// track hosting the item's kind, falling back to the item's original
// track when none matches.
func routeTrack(cur *timeline.Snapshot, it timeline.Item) int {
	hosts := cur.TracksOfKind(it.SourceKind().TrackKind())
	if len(hosts) > 0 {
		return hosts[0].Order
	}
	return it.Track
}
