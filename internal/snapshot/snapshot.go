// Package snapshot stores a report Index on disk so it can be rendered again
// without rerunning the lint tool.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"docgap/internal/report"
	"docgap/internal/window"
)

// SchemaVersion is bumped when Payload changes incompatibly.
const SchemaVersion uint16 = 1

// ErrSchema is returned for snapshots written by an incompatible version.
var ErrSchema = errors.New("unsupported snapshot schema")

// Payload is the on-disk form of an Index. Pieces are not stored: they are
// recomputed from the fragments on load.
type Payload struct {
	Schema   uint16        `msgpack:"schema"`
	Manifest string        `msgpack:"manifest,omitempty"`
	Created  time.Time     `msgpack:"created"`
	Files    []FilePayload `msgpack:"files"`
}

// FilePayload is one file group.
type FilePayload struct {
	Path    string         `msgpack:"path"`
	Entries []EntryPayload `msgpack:"entries"`
}

// EntryPayload is one entry.
type EntryPayload struct {
	Text       string            `msgpack:"text"`
	Row        uint32            `msgpack:"row"`
	Col        uint32            `msgpack:"col"`
	Highlights []FragmentPayload `msgpack:"highlights,omitempty"`
}

// FragmentPayload is one source fragment.
type FragmentPayload struct {
	Data  string `msgpack:"data"`
	Start int    `msgpack:"start"`
	End   int    `msgpack:"end"`
}

// Meta describes where a snapshot came from.
type Meta struct {
	Manifest string
	Created  time.Time
}

// Encode converts idx to its payload.
func Encode(idx *report.Index, meta Meta) *Payload {
	p := &Payload{
		Schema:   SchemaVersion,
		Manifest: meta.Manifest,
		Created:  meta.Created,
		Files:    make([]FilePayload, 0, idx.FileCount()),
	}
	_ = idx.Each(func(g *report.FileGroup) error {
		fp := FilePayload{Path: g.Path, Entries: make([]EntryPayload, len(g.Entries))}
		for i, e := range g.Entries {
			ep := EntryPayload{Text: e.Text, Row: e.Row, Col: e.Col}
			if len(e.Highlights) > 0 {
				ep.Highlights = make([]FragmentPayload, len(e.Highlights))
				for j, h := range e.Highlights {
					ep.Highlights[j] = FragmentPayload{Data: h.Data, Start: h.Start, End: h.End}
				}
			}
			fp.Entries[i] = ep
		}
		p.Files = append(p.Files, fp)
		return nil
	})
	return p
}

// Decode rebuilds an Index from p.
func Decode(p *Payload) (*report.Index, error) {
	if p.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: %d (expected %d)", ErrSchema, p.Schema, SchemaVersion)
	}
	idx := report.NewIndex()
	for _, f := range p.Files {
		for _, ep := range f.Entries {
			e := report.Entry{Text: ep.Text, Row: ep.Row, Col: ep.Col}
			if len(ep.Highlights) > 0 {
				e.Highlights = make([]window.Fragment, len(ep.Highlights))
				for i, h := range ep.Highlights {
					e.Highlights[i] = window.Fragment{Data: h.Data, Start: h.Start, End: h.End}
				}
				e.Pieces = window.Partition(e.Highlights)
			}
			idx.Add(f.Path, e)
		}
	}
	return idx, nil
}

// Save writes idx to path atomically.
func Save(path string, idx *report.Index, meta Meta) error {
	if meta.Created.IsZero() {
		meta.Created = time.Now().UTC()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	f, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp) //nolint:errcheck

	if err := msgpack.NewEncoder(f).Encode(Encode(idx, meta)); err != nil {
		f.Close() //nolint:errcheck
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	// атомарная замена
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot written by Save.
func Load(path string) (*report.Index, Meta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close() //nolint:errcheck

	var p Payload
	if err := msgpack.NewDecoder(f).Decode(&p); err != nil {
		return nil, Meta{}, fmt.Errorf("%s: failed to decode snapshot: %w", path, err)
	}
	idx, err := Decode(&p)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("%s: %w", path, err)
	}
	return idx, Meta{Manifest: p.Manifest, Created: p.Created}, nil
}
