// Package config loads editor tunables from a TOML file and watches it
// for changes.
//
// Loading starts from the component defaults and overlays whatever the
// file provides, so a config file only needs the keys it changes. A
// missing file is not an error, it simply yields the defaults. Validation
// runs after the overlay and rejects values the components would refuse,
// a bad file never half-applies.
//
// The Watcher reloads the file on change and hands the new Config to a
// callback. Most tunables feed the editor's constructor and take effect
// on restart, the callback exists for the few that are safe to swap live.
package config
