// Package archive keeps a local store of packed calculator programs,
// mirroring the archived-variables area of the device itself. Entries
// are stored as full container buffers so everything round-trips
// through the codec, and reads re-verify the checksum: corruption at
// rest surfaces the same way as a corrupted file on disk.
package archive

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/calctools/tipyconv/pkg/tipy"
)

// ErrNotFound is returned when no archived program matches a key.
var ErrNotFound = errors.New("no archived program for that key")

var (
	recordPrefix = []byte("rec/")
	namePrefix   = []byte("name/")
)

// Archive is a pebble-backed store of packed programs.
type Archive struct {
	db    *pebble.DB
	codec *tipy.Codec
}

// Entry describes one archived program.
type Entry struct {
	ID            ksuid.KSUID
	VarName       string
	LongFilename  string
	SourceSize    int
	ContainerSize int
}

// Open opens (or creates) an archive at the given directory.
func Open(path string) (*Archive, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	return &Archive{db: db, codec: tipy.NewCodec()}, nil
}

// Close closes the underlying store.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Add encodes a record and stores it under a fresh id. The variable
// name is indexed, so a later Add with the same name points the name
// at the newest entry.
func (a *Archive) Add(rec *tipy.Record) (*ksuid.KSUID, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	encoded, err := a.codec.Encode(rec)
	if err != nil {
		return nil, err
	}

	id := ksuid.New()
	if err := a.db.Set(recordKey(id), encoded, pebble.NoSync); err != nil {
		return nil, fmt.Errorf("failed to store program: %w", err)
	}
	if err := a.db.Set(nameKey(rec.VarNameString()), id.Bytes(), pebble.NoSync); err != nil {
		return nil, fmt.Errorf("failed to index program name: %w", err)
	}

	return &id, nil
}

// Get returns the archived program with the given id, decoded and
// checksum-verified.
func (a *Archive) Get(id *ksuid.KSUID) (*tipy.Record, error) {
	data, closer, err := a.db.Get(recordKey(*id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer closer.Close()

	// Decode copies out of pebble's buffer, so the record stays valid
	// after the closer releases it.
	return a.codec.Decode(data)
}

// GetByName returns the newest archived program with the given
// variable name.
func (a *Archive) GetByName(name string) (*tipy.Record, error) {
	data, closer, err := a.db.Get(nameKey(name))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	id, err := ksuid.FromBytes(data)
	closer.Close()
	if err != nil {
		return nil, fmt.Errorf("corrupt name index entry for %q: %w", name, err)
	}

	return a.Get(&id)
}

// List returns an entry for every archived program.
func (a *Archive) List() ([]Entry, error) {
	iter, err := a.db.NewIter(&pebble.IterOptions{
		LowerBound: recordPrefix,
		UpperBound: prefixUpperBound(recordPrefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var entries []Entry
	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.FromBytes(iter.Key()[len(recordPrefix):])
		if err != nil {
			return nil, fmt.Errorf("corrupt archive key %q: %w", iter.Key(), err)
		}
		rec, err := a.codec.Decode(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("archived program %s: %w", id, err)
		}
		entries = append(entries, Entry{
			ID:            id,
			VarName:       rec.VarNameString(),
			LongFilename:  string(rec.LongFilename),
			SourceSize:    len(rec.Source),
			ContainerSize: rec.ContainerSize(),
		})
	}

	return entries, iter.Error()
}

// Remove deletes an archived program and its name index entry.
func (a *Archive) Remove(id *ksuid.KSUID) error {
	rec, err := a.Get(id)
	if err != nil {
		return err
	}

	// Only drop the name index if it still points at this entry.
	if data, closer, err := a.db.Get(nameKey(rec.VarNameString())); err == nil {
		current, idErr := ksuid.FromBytes(data)
		closer.Close()
		if idErr == nil && current == *id {
			if err := a.db.Delete(nameKey(rec.VarNameString()), pebble.NoSync); err != nil {
				return err
			}
		}
	}

	return a.db.Delete(recordKey(*id), pebble.NoSync)
}

func recordKey(id ksuid.KSUID) []byte {
	return append(append([]byte(nil), recordPrefix...), id.Bytes()...)
}

func nameKey(name string) []byte {
	return append(append([]byte(nil), namePrefix...), name...)
}

// prefixUpperBound returns the smallest key greater than every key with
// the given prefix.
func prefixUpperBound(prefix []byte) []byte {
	bound := append([]byte(nil), prefix...)
	bound[len(bound)-1]++
	return bound
}
