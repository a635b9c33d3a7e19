// Package compositor turns a virtual time and a timeline snapshot into a
// layered draw sequence. It is a pure function of its inputs: active items
// are partitioned into effects and media, effect progress is folded into
// global alpha, grayscale, blur and zoom parameters, and each media layer is
// letterboxed into the viewport with a deterministic per-track offset.
//
// Layers whose media handle is not ready to present render as a solid
// placeholder whose color is keyed by track and source name, so the preview
// stays stable and legible while media loads. A single item's failure never
// aborts the rest of the frame.
package compositor
