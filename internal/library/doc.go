// Package library maintains the registry of imported media sources. The
// library owns source metadata only, items on the timeline refer to sources
// by pointer and the playback layer resolves handles from them.
//
// Durations are supplied by whoever imports the source. The library never
// probes media itself, a headless build must be able to carry a full
// manifest without touching the filesystem beyond the manifest file.
//
// The registry persists as a small JSON manifest, written with sjson and
// read back with gjson so a partially hand-edited file still loads as long
// as the required fields are present.
package library
