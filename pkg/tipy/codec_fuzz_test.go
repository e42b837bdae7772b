//go:build fuzz
// +build fuzz

package tipy

import (
	"bytes"
	"errors"
	"testing"
)

// FuzzCodec_RoundTrip tests encode/decode round-trip with random inputs
func FuzzCodec_RoundTrip(f *testing.F) {
	codec := NewCodec()

	// Add seed corpus
	f.Add([]byte("print(1)"), "PYFILE", "")
	f.Add([]byte(""), "", "")
	f.Add([]byte("import math\n"), "MATH", "math_tools.py")
	f.Add([]byte{0x00, 0x2a, 0x2a, 0xff}, "BIN", "b.py")

	f.Fuzz(func(t *testing.T, source []byte, varName, longFilename string) {
		rec := NewRecordWithMetadata(source, longFilename, "", varName)
		if rec.Validate() != nil {
			t.Skip("record outside the framing budget")
		}

		encoded, err := codec.Encode(rec)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}

		decoded, err := codec.Decode(encoded)
		if err != nil {
			t.Fatalf("Decode failed for source len %d filename len %d: %v",
				len(source), len(longFilename), err)
		}

		if !bytes.Equal(decoded.Source, rec.Source) {
			t.Errorf("source mismatch: got %q, want %q", decoded.Source, rec.Source)
		}
		if decoded.VarName != rec.VarName {
			t.Errorf("var name mismatch: got %q, want %q", decoded.VarName, rec.VarName)
		}
		if !bytes.Equal(decoded.LongFilename, rec.LongFilename) {
			t.Errorf("long filename mismatch: got %q, want %q", decoded.LongFilename, rec.LongFilename)
		}
	})
}

// FuzzCodec_Decode tests that arbitrary input never panics the decoder
func FuzzCodec_Decode(f *testing.F) {
	codec := NewCodec()

	// Add seed corpus
	f.Add([]byte{})
	f.Add([]byte("**TI83F*\x1a\x0a\x00"))
	f.Add(make([]byte, MinContainerSize))
	if seed, err := codec.Encode(NewRecord([]byte("print(1)"), "PYFILE")); err == nil {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		rec, err := codec.Decode(data)
		if err != nil {
			// Any of the three decode errors is acceptable for random data.
			if !errors.Is(err, ErrInvalidFormat) &&
				!errors.Is(err, ErrMalformedLength) &&
				!errors.Is(err, ErrChecksumMismatch) {
				t.Errorf("unexpected error type: %v", err)
			}
			return
		}

		// A successful decode must re-encode to a buffer the decoder accepts.
		encoded, err := codec.Encode(rec)
		if err != nil {
			t.Fatalf("re-encode failed: %v", err)
		}
		if _, err := codec.Decode(encoded); err != nil {
			t.Errorf("re-encoded buffer rejected: %v", err)
		}
	})
}
