// Package script runs Lua automation against the editor. A Runner owns one
// sandboxed interpreter with the lumo module installed, so a script can
// import sources, place and edit items, drive the transport, and read the
// timeline back. The interpreter opens only the base, table, string and
// math libraries; file, shell and module loading stay out of reach.
package script
