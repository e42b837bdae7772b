// Package dump renders the fields of a Python variable container in a
// human-readable form for debugging. It tolerates bad checksums so
// corrupted files can still be inspected; only structural truncation
// aborts the walk.
package dump

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/calctools/tipyconv/pkg/tipy"
)

// Fields writes one labelled row per container field to w.
func Fields(w io.Writer, data []byte) error {
	if len(data) < tipy.MinContainerSize {
		return fmt.Errorf("container too short: %d bytes, need at least %d", len(data), tipy.MinContainerSize)
	}

	binRow(w, "header", data[0x00:0x0b])
	strRow(w, "info", data[0x0b:0x35])
	numRow(w, "data size", data[0x35:])
	binRow(w, "flags", data[0x37:0x39])
	numRow(w, "var size", data[0x39:])
	binRow(w, "type id", data[0x3b:0x3c])
	strRow(w, "var name", data[0x3c:0x44])
	numRow(w, "var size", data[0x46:])
	payloadSize := numRow(w, "payload size", data[0x48:])
	strRow(w, "format tag", data[0x4a:0x4e])

	srcLen := int(payloadSize) - 5
	srcStart := 0x4f
	if n := int(data[0x4e]); n > 0 {
		nameEnd := 0x50 + n
		if nameEnd >= len(data) {
			return fmt.Errorf("filename length %d overruns the buffer", n)
		}
		strRow(w, "filename", data[0x50:nameEnd])
		srcLen -= 2 + n
		srcStart = nameEnd + 1
	}
	if srcLen < 0 || srcStart+srcLen+2 > len(data) {
		return fmt.Errorf("declared payload size %d overruns the buffer", payloadSize)
	}

	strRow(w, "source", data[srcStart:srcStart+srcLen])
	binRow(w, "checksum", data[srcStart+srcLen:])
	return nil
}

func binRow(w io.Writer, label string, data []byte) {
	fmt.Fprintf(w, "%-12s ", label+":")
	for i, b := range data {
		fmt.Fprintf(w, "%02x", b)
		if i%2 == 1 {
			fmt.Fprint(w, " ")
		}
	}
	fmt.Fprintln(w)
}

func strRow(w io.Writer, label string, data []byte) {
	fmt.Fprintf(w, "%-12s %q\n", label+":", data)
}

func numRow(w io.Writer, label string, data []byte) uint16 {
	v := binary.LittleEndian.Uint16(data)
	fmt.Fprintf(w, "%-12s %d\n", label+":", v)
	return v
}
