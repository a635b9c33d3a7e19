// Package snap resolves proposed item placements against magnetic snap
// points and the no-overlap rule. The resolver never commits anything, it
// only answers where a dragged or resized item may legally land, so the
// interaction layer can show live feedback and commit the final position.
package snap
