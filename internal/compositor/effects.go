package compositor

import "github.com/PokeMichele/lumo/internal/timeline"

// Effect parameter bounds. Combined zoom and blur are clamped here so
// stacked effects cannot produce degenerate renders.
const (
	MinScale = 0.1
	MaxScale = 5.0
	MaxBlur  = 10.0
)

// Effects is the combined visual state contributed by every active effect
// item at one instant.
type Effects struct {
	// Alpha is the global opacity in [0, 1], the product of all active
	// fades.
	Alpha float64

	// Grayscale is set while any black-white effect is active.
	Grayscale bool

	// Blur is the blur radius in pixels, the maximum across active blur
	// effects, in [0, 10].
	Blur float64

	// Scale is the zoom factor, the product of all active zoom effects,
	// clamped to [0.1, 5].
	Scale float64
}

// neutralEffects is the state with no active effects.
func neutralEffects() Effects {
	return Effects{Alpha: 1, Scale: 1}
}

// effectsAt folds the given active effect items into one parameter set.
// Each effect's progress runs 0 to 1 over the item's own interval:
//
//   - fade-in multiplies alpha by progress, fade-out by 1-progress
//   - black-white is binary for its whole span
//   - blur maps intensity 0-100 onto a 0-10px radius, the max radius wins
//   - zoom-in scales toward 1+2*(intensity/100), zoom-out toward
//     1-0.8*(intensity/100), both ramped by progress and compounding
//     multiplicatively when stacked
func effectsAt(vt float64, effects []timeline.Item) Effects {
	out := neutralEffects()

	for _, it := range effects {
		if it.Source == nil || it.Duration <= 0 {
			continue
		}
		progress := clamp((vt-it.Start)/it.Duration, 0, 1)
		intensity := clamp(it.Source.Intensity, 0, 100) / 100

		switch it.Source.Effect {
		case timeline.EffectFadeIn:
			out.Alpha *= progress
		case timeline.EffectFadeOut:
			out.Alpha *= 1 - progress
		case timeline.EffectBlackWhite:
			out.Grayscale = true
		case timeline.EffectBlur:
			out.Blur = max(out.Blur, intensity*MaxBlur)
		case timeline.EffectZoomIn:
			out.Scale *= 1 + 2*intensity*progress
		case timeline.EffectZoomOut:
			out.Scale *= 1 - 0.8*intensity*progress
		}
	}

	out.Alpha = clamp(out.Alpha, 0, 1)
	out.Blur = clamp(out.Blur, 0, MaxBlur)
	out.Scale = clamp(out.Scale, MinScale, MaxScale)
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
