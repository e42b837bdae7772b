package tipy

import (
	"bytes"
	"errors"
	"testing"
)

func TestNewRecord(t *testing.T) {
	t.Run("copies the source", func(t *testing.T) {
		source := []byte("print(1)")
		rec := NewRecord(source, "PYFILE")

		source[0] = '#'
		if rec.Source[0] != 'p' {
			t.Error("record aliases the caller's source buffer")
		}
	})

	t.Run("empty name gets the default", func(t *testing.T) {
		rec := NewRecord([]byte("pass"), "")
		if got := rec.VarNameString(); got != DefaultVarName {
			t.Errorf("got %q, want %q", got, DefaultVarName)
		}
	})

	t.Run("NUL-only name gets the default", func(t *testing.T) {
		rec := NewRecord([]byte("pass"), "\x00")
		if got := rec.VarNameString(); got != DefaultVarName {
			t.Errorf("got %q, want %q", got, DefaultVarName)
		}

		encoded, err := NewCodec().Encode(rec)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		decoded, err := NewCodec().Decode(encoded)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if decoded.VarName != rec.VarName {
			t.Errorf("var name did not round-trip: got %q, want %q", decoded.VarName, rec.VarName)
		}
	})

	t.Run("short name is zero padded", func(t *testing.T) {
		rec := NewRecord([]byte("pass"), "AB")
		want := [VarNameSize]byte{'A', 'B'}
		if rec.VarName != want {
			t.Errorf("got %v, want %v", rec.VarName, want)
		}
	})

	t.Run("long name is truncated", func(t *testing.T) {
		rec := NewRecord([]byte("pass"), "ABCDEFGHIJKL")
		if got := string(rec.VarName[:]); got != "ABCDEFGH" {
			t.Errorf("got %q, want %q", got, "ABCDEFGH")
		}
	})
}

func TestNewRecordWithMetadata(t *testing.T) {
	rec := NewRecordWithMetadata([]byte("pass"), "program.py", "some info", "PROG")

	if got := rec.VarNameString(); got != "PROG" {
		t.Errorf("var name: got %q, want PROG", got)
	}
	if got := rec.InfoString(); got != "some info" {
		t.Errorf("info: got %q, want %q", got, "some info")
	}
	if !bytes.Equal(rec.LongFilename, []byte("program.py")) {
		t.Errorf("long filename: got %q", rec.LongFilename)
	}

	t.Run("info is truncated to its fixed width", func(t *testing.T) {
		long := bytes.Repeat([]byte("i"), 60)
		rec := NewRecordWithMetadata([]byte("pass"), "", string(long), "PROG")
		if !bytes.Equal(rec.Info[:], long[:InfoSize]) {
			t.Errorf("info field: got %q", rec.Info[:])
		}
	})

	t.Run("truncated fields survive a round trip", func(t *testing.T) {
		codec := NewCodec()
		rec := NewRecordWithMetadata([]byte("pass"), "", string(bytes.Repeat([]byte("i"), 60)), "TOOLONGNAME")

		encoded, err := codec.Encode(rec)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		decoded, err := codec.Decode(encoded)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}

		if decoded.VarName != rec.VarName {
			t.Errorf("var name: got %q, want %q", decoded.VarName, rec.VarName)
		}
		if decoded.Info != rec.Info {
			t.Errorf("info: got %q, want %q", decoded.Info, rec.Info)
		}
	})
}

func TestRecord_Validate(t *testing.T) {
	t.Run("plain record passes", func(t *testing.T) {
		if err := NewRecord([]byte("print(1)"), "PYFILE").Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("source at the framing budget passes", func(t *testing.T) {
		rec := NewRecord(make([]byte, 0xFFFF-24), "PYFILE")
		if err := rec.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("source above the framing budget fails", func(t *testing.T) {
		rec := NewRecord(make([]byte, 0xFFFF-23), "PYFILE")
		if !errors.Is(rec.Validate(), ErrSourceTooLarge) {
			t.Error("expected ErrSourceTooLarge")
		}
	})

	t.Run("filename budget shrinks the source budget", func(t *testing.T) {
		rec := NewRecordWithMetadata(make([]byte, 0xFFFF-24), "a.py", "", "PYFILE")
		if !errors.Is(rec.Validate(), ErrSourceTooLarge) {
			t.Error("expected ErrSourceTooLarge")
		}
	})

	t.Run("filename over 255 bytes fails", func(t *testing.T) {
		rec := NewRecordWithMetadata([]byte("pass"), string(bytes.Repeat([]byte("n"), 256)), "", "PYFILE")
		if !errors.Is(rec.Validate(), ErrFilenameTooLong) {
			t.Error("expected ErrFilenameTooLong")
		}
	})
}

func TestRecord_ContainerSize(t *testing.T) {
	codec := NewCodec()

	testCases := []struct {
		name string
		rec  *Record
	}{
		{name: "empty source", rec: NewRecord(nil, "A")},
		{name: "plain", rec: NewRecord([]byte("print(1)"), "PYFILE")},
		{name: "with filename", rec: NewRecordWithMetadata([]byte("print(1)"), "file.py", "", "PYFILE")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := codec.Encode(tc.rec)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if len(encoded) != tc.rec.ContainerSize() {
				t.Errorf("ContainerSize: got %d, encoded %d", tc.rec.ContainerSize(), len(encoded))
			}
		})
	}
}
