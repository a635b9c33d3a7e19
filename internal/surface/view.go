package surface

import (
	"fmt"
	"math"
	"strings"

	"github.com/PokeMichele/lumo/internal/compositor"
	"github.com/PokeMichele/lumo/internal/gesture"
	"github.com/PokeMichele/lumo/internal/timeline"
)

// Minimum terminal size the view can lay out.
const (
	minWidth  = 24
	minHeight = 8
)

// CellLayout returns the pixel geometry used when one pixel is one
// terminal cell. The gutter holds the track labels.
func CellLayout() gesture.Layout {
	return gesture.Layout{
		PixelsPerSecond: 5,
		TrackHeight:     2,
		RulerHeight:     1,
		GutterWidth:     10,
		EdgeGrabWidth:   1,
	}
}

// Theme is the view's color palette.
type Theme struct {
	Background Color
	PreviewBG  Color
	StageBG    Color
	RulerFG    Color
	LaneBG     Color
	LaneAltBG  Color
	GutterFG   Color

	VideoItem  Color
	AudioItem  Color
	ImageItem  Color
	EffectItem Color
	ItemLabel  Color

	GhostLegal   Color
	GhostIllegal Color
	SnapGuide    Color
	Band         Color
	Playhead     Color

	StatusFG Color
	StatusBG Color
}

// DefaultTheme returns the dark palette the editor ships with.
func DefaultTheme() Theme {
	return Theme{
		Background: RGB(16, 16, 20),
		PreviewBG:  RGB(10, 10, 12),
		StageBG:    RGB(24, 24, 28),
		RulerFG:    RGB(140, 140, 150),
		LaneBG:     RGB(28, 28, 34),
		LaneAltBG:  RGB(34, 34, 40),
		GutterFG:   RGB(150, 150, 160),

		VideoItem:  RGB(70, 110, 180),
		AudioItem:  RGB(70, 160, 110),
		ImageItem:  RGB(150, 110, 180),
		EffectItem: RGB(190, 150, 70),
		ItemLabel:  RGB(235, 235, 240),

		GhostLegal:   RGB(120, 120, 130),
		GhostIllegal: RGB(190, 80, 80),
		SnapGuide:    RGB(240, 200, 90),
		Band:         RGB(110, 170, 230),
		Playhead:     RGB(230, 90, 90),

		StatusFG: RGB(210, 210, 220),
		StatusBG: RGB(40, 40, 48),
	}
}

// State is everything the view reads for one paint. The application
// gathers it from the editor once per frame, the view never calls back.
type State struct {
	Snapshot  *timeline.Snapshot
	Frame     *compositor.Frame
	Time      float64
	Playing   bool
	Volume    float64
	Selection []string
	Ghosts    []gesture.Ghost
	Band      gesture.Rect
	HasBand   bool
	Message   string
}

// View paints the editor onto a Surface. The screen splits into the
// preview on top, the timeline lanes below it, and one status row at the
// bottom. Timeline geometry comes from the same layout the gesture
// controller interprets pointer events with, so what is drawn is what is
// hit tested.
type View struct {
	layout gesture.Layout
	theme  Theme
}

// ViewOption is a functional option for configuring a View.
type ViewOption func(*View)

// WithLayout sets the cell geometry of the timeline area.
func WithLayout(l gesture.Layout) ViewOption {
	return func(v *View) {
		v.layout = l
	}
}

// WithTheme sets the color palette.
func WithTheme(th Theme) ViewOption {
	return func(v *View) {
		v.theme = th
	}
}

// NewView creates a view with the cell layout and the default theme.
func NewView(opts ...ViewOption) *View {
	v := &View{
		layout: CellLayout(),
		theme:  DefaultTheme(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Layout returns the timeline cell geometry. The application installs the
// same layout on the editor so pointer events land where items are drawn.
func (v *View) Layout() gesture.Layout {
	return v.layout
}

// Areas splits a screen of the given size into the preview, timeline, and
// status regions. The timeline takes what the track count needs, capped
// at two thirds of the screen, the preview takes the rest.
func (v *View) Areas(width, height, tracks int) (preview, tl, status Rect) {
	if tracks < 1 {
		tracks = 1
	}
	status = Rect{X: 0, Y: height - 1, W: width, H: 1}

	want := v.layout.RulerHeight + tracks*v.layout.TrackHeight
	tlH := want
	if limit := (height - 1) * 2 / 3; tlH > limit {
		tlH = limit
	}
	tl = Rect{X: 0, Y: height - 1 - tlH, W: width, H: tlH}
	preview = Rect{X: 0, Y: 0, W: width, H: tl.Y}
	return preview, tl, status
}

// Render paints one frame of editor state.
func (v *View) Render(s Surface, st State) {
	w, h := s.Size()
	s.Clear()

	if w < minWidth || h < minHeight {
		s.DrawLabel(0, 0, "terminal too small", DefaultStyle())
		s.Flush()
		return
	}

	tracks := 0
	if st.Snapshot != nil {
		tracks = st.Snapshot.TrackCount()
	}
	preview, tl, status := v.Areas(w, h, tracks)

	v.drawPreview(s, preview, st.Frame)
	v.drawTimeline(s, tl, st)
	v.drawStatus(s, status, st)
	s.Flush()
}

// ============================================================================
// Preview
// ============================================================================

// drawPreview paints the composed frame. Layer boxes arrive in preview
// coordinates because the application sizes the compositor viewport to
// this area, the view only offsets and clips them.
func (v *View) drawPreview(s Surface, area Rect, frame *compositor.Frame) {
	if area.Empty() {
		return
	}
	s.FillRect(area, Style{BG: v.theme.PreviewBG})

	if frame == nil {
		label := "no preview"
		st := Style{FG: v.theme.RulerFG, BG: v.theme.PreviewBG}
		s.DrawLabel(area.X+(area.W-LabelWidth(label))/2, area.Y+area.H/2, label, st.Dim())
		return
	}

	stage := offsetRect(frame.Stage, area).Intersect(area)
	if !stage.Empty() {
		s.FillRect(stage, Style{BG: v.theme.StageBG})
	}

	fx := frame.Effects
	cx := float64(stage.X) + float64(stage.W)/2
	cy := float64(stage.Y) + float64(stage.H)/2

	for _, layer := range frame.Layers {
		box := offsetRect(layer.Box, area)
		if fx.Scale != 1 {
			box = scaleRect(box, cx, cy, fx.Scale)
		}
		box = box.Intersect(area)
		if box.Empty() {
			continue
		}

		fill := FromColorful(layer.Fill)
		if fx.Grayscale {
			fill = fill.Grayscale()
		}
		if fx.Alpha < 1 {
			fill = fill.Darken(1 - fx.Alpha)
		}
		if fx.Blur > 0 {
			fill = fill.Blend(v.theme.StageBG, 0.5*fx.Blur/compositor.MaxBlur)
		}

		st := Style{BG: fill}
		if !layer.Ready {
			st = st.Dim()
		}
		s.FillRect(box, st)

		if label := ClipLabel(layer.Label, box.W-2); label != "" {
			ls := Style{FG: v.theme.ItemLabel, BG: fill}
			if !layer.Ready {
				ls = ls.Dim()
			}
			s.DrawLabel(box.X+1, box.Y+box.H/2, label, ls)
		}
	}
}

// offsetRect places a compositor rectangle inside a screen area.
func offsetRect(r compositor.Rect, area Rect) Rect {
	return Rect{X: area.X + r.X, Y: area.Y + r.Y, W: r.W, H: r.H}
}

// scaleRect scales a rectangle around the given center.
func scaleRect(r Rect, cx, cy, scale float64) Rect {
	x := cx + (float64(r.X)-cx)*scale
	y := cy + (float64(r.Y)-cy)*scale
	return Rect{
		X: int(math.Round(x)),
		Y: int(math.Round(y)),
		W: int(math.Round(float64(r.W) * scale)),
		H: int(math.Round(float64(r.H) * scale)),
	}
}

// ============================================================================
// Timeline
// ============================================================================

func (v *View) drawTimeline(s Surface, area Rect, st State) {
	if area.Empty() {
		return
	}
	s.FillRect(area, Style{BG: v.theme.Background})

	lanes := Rect{
		X: area.X,
		Y: area.Y + v.layout.RulerHeight,
		W: area.W,
		H: area.H - v.layout.RulerHeight,
	}

	if st.Snapshot != nil {
		v.drawLanes(s, area, lanes, st.Snapshot)
		v.drawItems(s, area, lanes, st)
	}
	v.drawRuler(s, area)
	v.drawGhosts(s, area, lanes, st.Ghosts)
	if st.HasBand {
		v.drawBand(s, area, lanes, st.Band)
	}
	v.drawPlayhead(s, area, st.Time)
}

// drawRuler paints the tick row, a dot per second and a timestamp every
// fifth.
func (v *View) drawRuler(s Surface, area Rect) {
	tick := Style{FG: v.theme.RulerFG, BG: v.theme.Background}
	for sec := 0; ; sec++ {
		x := area.X + v.layout.XAt(float64(sec))
		if x >= area.X+area.W {
			return
		}
		if sec%5 == 0 {
			s.DrawLabel(x, area.Y, fmt.Sprintf("%d:%02d", sec/60, sec%60), tick)
		} else {
			s.DrawLabel(x, area.Y, "·", tick.Dim())
		}
	}
}

// drawLanes paints the alternating track backgrounds and the gutter
// labels.
func (v *View) drawLanes(s Surface, area, lanes Rect, snap *timeline.Snapshot) {
	for i, tr := range snap.Tracks() {
		lane := Rect{
			X: area.X,
			Y: area.Y + v.layout.YAt(i),
			W: area.W,
			H: v.layout.TrackHeight,
		}.Intersect(lanes)
		if lane.Empty() {
			continue
		}

		bg := v.theme.LaneBG
		if i%2 == 1 {
			bg = v.theme.LaneAltBG
		}
		s.FillRect(lane, Style{BG: bg})

		if v.layout.GutterWidth > 0 {
			label := tr.Label
			if label == "" {
				label = fmt.Sprintf("%c%d %s", badge(tr.Kind), tr.Order, tr.Kind)
			}
			label = ClipLabel(label, v.layout.GutterWidth-1)
			s.DrawLabel(lane.X, lane.Y, label, Style{FG: v.theme.GutterFG, BG: bg})
		}
	}
}

func badge(kind timeline.MediaKind) rune {
	if kind == timeline.MediaAudio {
		return 'A'
	}
	return 'V'
}

// drawItems paints every committed item, selection drawn brighter with a
// bold label and a darker trailing edge column marking the resize grab
// zone.
func (v *View) drawItems(s Surface, area, lanes Rect, st State) {
	selected := make(map[string]bool, len(st.Selection))
	for _, id := range st.Selection {
		selected[id] = true
	}

	for _, it := range st.Snapshot.Items() {
		r := v.itemRect(it, area).Intersect(lanes)
		if r.Empty() {
			continue
		}

		fill := v.kindColor(it.SourceKind())
		if selected[it.ID] {
			fill = fill.Lighten(0.25)
		}
		s.FillRect(r, Style{BG: fill})
		if r.W >= 3 {
			s.FillRect(Rect{X: r.X + r.W - 1, Y: r.Y, W: 1, H: r.H}, Style{BG: fill.Darken(0.35)})
		}

		name := it.ID
		if it.Source != nil {
			name = it.Source.Name
		}
		if label := ClipLabel(name, r.W-2); label != "" {
			ls := Style{FG: v.theme.ItemLabel, BG: fill}
			if selected[it.ID] {
				ls = ls.Bold()
			}
			s.DrawLabel(r.X+1, r.Y+(r.H-1)/2, label, ls)
		}
	}
}

// drawGhosts paints the in-flight gesture positions over the committed
// items, dimmed, red when the position would revert on release. A snapped
// ghost also gets a guide line at its snap point.
func (v *View) drawGhosts(s Surface, area, lanes Rect, ghosts []gesture.Ghost) {
	for _, g := range ghosts {
		proto := timeline.Item{Start: g.Start, Duration: g.Duration, Track: g.Track}
		r := v.itemRect(proto, area).Intersect(lanes)
		if r.Empty() {
			continue
		}

		fill := v.theme.GhostLegal
		if !g.Legal {
			fill = v.theme.GhostIllegal
		}
		s.FillRect(r, Style{BG: fill}.Dim())

		if g.Snapped {
			x := area.X + v.layout.XAt(g.SnapPoint)
			guide := Style{FG: v.theme.SnapGuide, BG: v.theme.Background}
			for y := lanes.Y; y < lanes.Y+lanes.H; y++ {
				s.DrawLabel(x, y, "┆", guide)
			}
		}
	}
}

// drawBand outlines the rectangle selection.
func (v *View) drawBand(s Surface, area, lanes Rect, band gesture.Rect) {
	r := Rect{X: area.X + band.X, Y: area.Y + band.Y, W: band.W + 1, H: band.H + 1}.Intersect(lanes)
	if r.Empty() {
		return
	}

	st := Style{FG: v.theme.Band, BG: v.theme.Background}
	for x := r.X; x < r.X+r.W; x++ {
		s.DrawLabel(x, r.Y, "─", st)
		s.DrawLabel(x, r.Y+r.H-1, "─", st)
	}
	for y := r.Y; y < r.Y+r.H; y++ {
		s.DrawLabel(r.X, y, "│", st)
		s.DrawLabel(r.X+r.W-1, y, "│", st)
	}
	s.DrawLabel(r.X, r.Y, "┌", st)
	s.DrawLabel(r.X+r.W-1, r.Y, "┐", st)
	s.DrawLabel(r.X, r.Y+r.H-1, "└", st)
	s.DrawLabel(r.X+r.W-1, r.Y+r.H-1, "┘", st)
}

// drawPlayhead paints the playhead column through the ruler and lanes.
func (v *View) drawPlayhead(s Surface, area Rect, t float64) {
	x := area.X + v.layout.XAt(t)
	if x < area.X || x >= area.X+area.W {
		return
	}
	s.FillRect(Rect{X: x, Y: area.Y, W: 1, H: area.H}, Style{BG: v.theme.Playhead})
}

// itemRect converts an item's layout rectangle into screen coordinates.
func (v *View) itemRect(it timeline.Item, area Rect) Rect {
	r := v.layout.ItemRect(it)
	return Rect{X: area.X + r.X, Y: area.Y + r.Y, W: r.W, H: r.H}
}

func (v *View) kindColor(kind timeline.SourceKind) Color {
	switch kind {
	case timeline.SourceAudio:
		return v.theme.AudioItem
	case timeline.SourceImage:
		return v.theme.ImageItem
	case timeline.SourceEffect:
		return v.theme.EffectItem
	default:
		return v.theme.VideoItem
	}
}

// ============================================================================
// Status row
// ============================================================================

func (v *View) drawStatus(s Surface, area Rect, st State) {
	if area.Empty() {
		return
	}
	style := Style{FG: v.theme.StatusFG, BG: v.theme.StatusBG}
	s.FillRect(area, style)

	transport := "paused"
	if st.Playing {
		transport = "playing"
	}
	var dur float64
	if st.Snapshot != nil {
		dur = st.Snapshot.Duration()
	}

	var b strings.Builder
	fmt.Fprintf(&b, " %s  %s / %s  vol %d%%", transport, Timecode(st.Time), Timecode(dur), int(st.Volume+0.5))
	if n := len(st.Selection); n > 0 {
		fmt.Fprintf(&b, "  sel %d", n)
	}
	if st.Frame != nil {
		if fx := effectsSummary(st.Frame.Effects); fx != "" {
			b.WriteString("  fx " + fx)
		}
	}
	s.DrawLabel(area.X, area.Y, ClipLabel(b.String(), area.W), style)

	if st.Message != "" {
		msg := ClipLabel(st.Message, area.W/2)
		s.DrawLabel(area.X+area.W-LabelWidth(msg)-1, area.Y, msg, style.Bold())
	}
}

// Timecode formats seconds as m:ss.t.
func Timecode(t float64) string {
	if t < 0 {
		t = 0
	}
	m := int(t) / 60
	return fmt.Sprintf("%d:%04.1f", m, t-float64(60*m))
}

// effectsSummary names the active effect parameters, empty when neutral.
func effectsSummary(fx compositor.Effects) string {
	var parts []string
	if fx.Alpha < 1 {
		parts = append(parts, fmt.Sprintf("fade %.2f", fx.Alpha))
	}
	if fx.Grayscale {
		parts = append(parts, "b/w")
	}
	if fx.Blur > 0 {
		parts = append(parts, fmt.Sprintf("blur %.1f", fx.Blur))
	}
	if fx.Scale != 1 {
		parts = append(parts, fmt.Sprintf("zoom %.2fx", fx.Scale))
	}
	return strings.Join(parts, " ")
}
