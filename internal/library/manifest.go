package library

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/PokeMichele/lumo/internal/timeline"
)

// manifestVersion is the current manifest format version. Readers accept
// anything up to and including it.
const manifestVersion = 1

// EncodeManifest serializes the library to manifest JSON. Sources appear in
// All order so encoding the same library twice yields the same bytes.
func (l *Library) EncodeManifest() ([]byte, error) {
	doc, err := sjson.Set("{}", "version", manifestVersion)
	if err != nil {
		return nil, err
	}
	doc, err = sjson.SetRaw(doc, "sources", "[]")
	if err != nil {
		return nil, err
	}

	for _, src := range l.All() {
		entry, err := encodeSource(src)
		if err != nil {
			return nil, fmt.Errorf("encode source %s: %w", src.ID, err)
		}
		doc, err = sjson.SetRaw(doc, "sources.-1", entry)
		if err != nil {
			return nil, err
		}
	}
	return []byte(doc), nil
}

// DecodeManifest parses manifest JSON and replaces the library's contents.
// On any error the library is left untouched.
func (l *Library) DecodeManifest(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: invalid JSON", ErrBadManifest)
	}
	doc := gjson.ParseBytes(data)

	version := doc.Get("version")
	if !version.Exists() {
		return fmt.Errorf("%w: missing version", ErrBadManifest)
	}
	if v := version.Int(); v > manifestVersion {
		return fmt.Errorf("%w: %d", ErrManifestVersion, v)
	}

	sources := make(map[string]*timeline.MediaSource)
	var err error
	doc.Get("sources").ForEach(func(_, entry gjson.Result) bool {
		var src *timeline.MediaSource
		src, err = decodeSource(entry)
		if err != nil {
			return false
		}
		if _, dup := sources[src.ID]; dup {
			err = fmt.Errorf("%w: duplicate source id %s", ErrBadManifest, src.ID)
			return false
		}
		sources[src.ID] = src
		return true
	})
	if err != nil {
		return err
	}

	l.replace(sources)
	return nil
}

// SaveManifest writes the manifest to a file.
func (l *Library) SaveManifest(path string) error {
	data, err := l.EncodeManifest()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadManifest reads a manifest file and replaces the library's contents.
func (l *Library) LoadManifest(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return l.DecodeManifest(data)
}

// encodeSource serializes one source to a JSON object. Zero-value fields
// are omitted so clip entries stay small and effect entries carry only
// what they use.
func encodeSource(src *timeline.MediaSource) (string, error) {
	doc := "{}"
	var err error
	set := func(path string, value any) {
		if err != nil {
			return
		}
		doc, err = sjson.Set(doc, path, value)
	}

	set("id", src.ID)
	set("kind", src.Kind.String())
	set("name", src.Name)
	if src.Handle != "" {
		set("handle", src.Handle)
	}
	if src.Duration != 0 {
		set("duration", src.Duration)
	}
	if src.Kind == timeline.SourceEffect {
		set("effect", src.Effect.String())
		set("intensity", src.Intensity)
	}
	return doc, err
}

func decodeSource(entry gjson.Result) (*timeline.MediaSource, error) {
	id := entry.Get("id").String()
	if id == "" {
		return nil, fmt.Errorf("%w: source missing id", ErrBadManifest)
	}

	kind, err := timeline.ParseSourceKind(entry.Get("kind").String())
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", id, err)
	}

	src := &timeline.MediaSource{
		ID:       id,
		Kind:     kind,
		Name:     entry.Get("name").String(),
		Handle:   entry.Get("handle").String(),
		Duration: max(entry.Get("duration").Float(), 0),
	}
	if kind == timeline.SourceEffect {
		effect, err := timeline.ParseEffectKind(entry.Get("effect").String())
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", id, err)
		}
		src.Effect = effect
		src.Intensity = min(max(entry.Get("intensity").Float(), 0), 100)
	}
	return src, nil
}
