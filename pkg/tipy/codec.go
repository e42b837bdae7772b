package tipy

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// headerMagic identifies the calculator variable-file family:
// "**TI83F*" followed by SUB, LF, NUL.
var headerMagic = []byte{0x2a, 0x2a, 0x54, 0x49, 0x38, 0x33, 0x46, 0x2a, 0x1a, 0x0a, 0x00}

// formatTag marks the variable payload as Python source.
var formatTag = []byte("PYCD")

// entryFlags is written verbatim at 0x37 and never interpreted on decode.
var entryFlags = []byte{0x0d, 0x00}

const (
	// typeID identifies an application variable, the container type that
	// carries Python source.
	typeID = 0x15
	// soh precedes an embedded long filename.
	soh = 0x01

	// Offsets into the container buffer. All u16 fields are little-endian.
	offInfo        = 0x0b
	offDataSize    = 0x35
	offFlags       = 0x37
	offVarSizeA    = 0x39
	offTypeID      = 0x3b
	offVarName     = 0x3c
	offVarSizeB    = 0x46
	offPayloadSize = 0x48
	offFormatTag   = 0x4a
	offFilenameLen = 0x4e
	offPayload     = 0x4f

	// entryHeaderSize covers 0x37 through 0x47: flags, the first size
	// copy, type id, variable name, padding and the second size copy.
	entryHeaderSize = 0x48 - offFlags
)

// Codec converts records to and from their container representation.
type Codec struct{}

// NewCodec creates a new codec instance.
func NewCodec() *Codec {
	return &Codec{}
}

// Detect reports whether data starts with the variable-file signature.
// It inspects only the magic bytes; the rest of the buffer is not
// validated or decoded.
func Detect(data []byte) bool {
	return len(data) >= len(headerMagic) && bytes.Equal(data[:len(headerMagic)], headerMagic)
}

// Encode serializes a record into a fresh container buffer.
//
// The variable size is written twice and the inner payload size once
// more with a fixed -2 relationship. Nothing decodes this redundancy,
// but the calculator's loader expects it byte-for-byte.
//
// Encode does not reject an oversized source; the 16-bit size fields
// truncate silently. Callers are expected to run Record.Validate first.
func (c *Codec) Encode(r *Record) ([]byte, error) {
	// The payload is built first so the size fields can be derived from
	// its measured length.
	payload := make([]byte, 0, 7+len(r.LongFilename)+len(r.Source))
	payload = append(payload, formatTag...)
	if n := len(r.LongFilename); n > 0 {
		payload = append(payload, byte(n), soh)
		payload = append(payload, r.LongFilename...)
		payload = append(payload, 0x00)
	} else {
		// The zero filename-length byte doubles as the terminator.
		payload = append(payload, 0x00)
	}
	payload = append(payload, r.Source...)

	payloadSize := uint16(len(payload))
	varSize := payloadSize + 2
	dataSize := varSize + entryHeaderSize

	name := r.VarName
	if name == [VarNameSize]byte{} {
		copy(name[:], DefaultVarName)
	}

	buf := make([]byte, 0, r.ContainerSize())
	buf = append(buf, headerMagic...)
	buf = append(buf, r.Info[:]...)
	buf = binary.LittleEndian.AppendUint16(buf, dataSize)
	buf = append(buf, entryFlags...)
	buf = binary.LittleEndian.AppendUint16(buf, varSize)
	buf = append(buf, typeID)
	buf = append(buf, name[:]...)
	buf = append(buf, 0x00, 0x00)
	buf = binary.LittleEndian.AppendUint16(buf, varSize)
	buf = binary.LittleEndian.AppendUint16(buf, payloadSize)
	buf = append(buf, payload...)
	buf = binary.LittleEndian.AppendUint16(buf, checksum(buf[offFlags:]))

	return buf, nil
}

// Decode parses a container buffer into a record.
//
// It returns ErrInvalidFormat when the signature or mandatory fixed
// fields are missing, ErrMalformedLength when the derived payload length
// underflows or overruns the buffer, and ErrChecksumMismatch when the
// content fails verification. No partial record escapes a failed decode.
// Bytes past the checksum are ignored.
func (c *Codec) Decode(data []byte) (*Record, error) {
	if !Detect(data) {
		return nil, ErrInvalidFormat
	}
	if len(data) < MinContainerSize {
		return nil, ErrInvalidFormat
	}

	r := &Record{}
	copy(r.Info[:], data[offInfo:offInfo+InfoSize])
	copy(r.VarName[:], data[offVarName:offVarName+VarNameSize])

	// The payload size counts the format tag plus one terminator byte in
	// addition to the source, hence the fixed 5.
	srcLen := int(binary.LittleEndian.Uint16(data[offPayloadSize:])) - 5
	srcStart := offPayload
	if n := int(data[offFilenameLen]); n > 0 {
		// SOH, the filename bytes, and the trailing NUL.
		srcLen -= 2 + n
		nameEnd := offPayload + 1 + n
		if srcLen < 0 || nameEnd >= len(data) {
			return nil, ErrMalformedLength
		}
		r.LongFilename = append([]byte(nil), data[offPayload+1:nameEnd]...)
		srcStart = nameEnd + 1
	}
	if srcLen < 0 {
		return nil, ErrMalformedLength
	}
	srcEnd := srcStart + srcLen
	if srcEnd+2 > len(data) {
		return nil, ErrMalformedLength
	}

	sum := checksum(data[offFlags:srcEnd])
	stored := binary.LittleEndian.Uint16(data[srcEnd:])
	if sum != stored {
		return nil, fmt.Errorf("%w: computed 0x%04x, stored 0x%04x", ErrChecksumMismatch, sum, stored)
	}

	r.Source = append([]byte(nil), data[srcStart:srcEnd]...)
	return r, nil
}

// checksum computes the 16-bit mod-65536 byte sum used by the container
// format. It covers everything from the entry flags through the last
// source byte; the magic, info and data-size fields are excluded.
func checksum(data []byte) uint16 {
	var sum uint16
	for _, b := range data {
		sum += uint16(b)
	}
	return sum
}
