package tipy

import "bytes"

const (
	// VarNameSize is the fixed width of the on-calculator variable name field.
	VarNameSize = 8
	// InfoSize is the fixed width of the free-form info field.
	InfoSize = 42
	// MaxLongFilename is the largest long filename that fits its one-byte
	// length field.
	MaxLongFilename = 255
	// MinContainerSize is the smallest valid container: all fixed fields,
	// an empty source and the trailing checksum.
	MinContainerSize = 81

	// DefaultVarName is substituted when a record carries no variable name.
	DefaultVarName = "TIPYFILE"
)

// Errors returned by the codec and record validation.
var (
	ErrInvalidFormat    = &FormatError{"not a TI Python variable file"}
	ErrChecksumMismatch = &FormatError{"checksum mismatch"}
	ErrMalformedLength  = &FormatError{"malformed payload length"}
	ErrSourceTooLarge   = &FormatError{"source too large for 16-bit framing"}
	ErrFilenameTooLong  = &FormatError{"long filename exceeds 255 bytes"}
)

// FormatError represents a container format error.
type FormatError struct {
	Message string
}

func (e *FormatError) Error() string {
	return e.Message
}

// Record is the decoded, in-memory form of one Python variable file.
//
// VarName and Info are stored at their fixed widths with no terminator
// guarantee; use VarNameString/InfoString for trimmed views. LongFilename
// is present only when non-empty. A Record owns its Source and
// LongFilename buffers exclusively.
type Record struct {
	Source       []byte
	VarName      [VarNameSize]byte
	Info         [InfoSize]byte
	LongFilename []byte
}

// NewRecord creates a record with minimal metadata. varName is truncated
// to 8 bytes if necessary; a varName that is empty or all NUL bytes
// yields DefaultVarName.
func NewRecord(source []byte, varName string) *Record {
	return NewRecordWithMetadata(source, "", "", varName)
}

// NewRecordWithMetadata creates a record with all metadata. varName and
// info are truncated to their fixed widths and zero-padded otherwise.
// longFilename is stored as given; Validate reports it when over budget.
func NewRecordWithMetadata(source []byte, longFilename, info, varName string) *Record {
	r := &Record{
		Source: append([]byte(nil), source...),
	}
	copy(r.VarName[:], varName)
	// A name of nothing but NUL bytes packs to the same all-zero field
	// as an empty one; both take the default, matching what Encode
	// writes for an all-zero field.
	if r.VarName == [VarNameSize]byte{} {
		copy(r.VarName[:], DefaultVarName)
	}
	copy(r.Info[:], info)
	if longFilename != "" {
		r.LongFilename = []byte(longFilename)
	}
	return r
}

// Validate checks that the record fits the wire format's size budgets.
// Encode does not call this; callers handing records to Encode must.
func (r *Record) Validate() error {
	if len(r.LongFilename) > MaxLongFilename {
		return ErrFilenameTooLong
	}
	overhead := entryHeaderSize + 2 + 5
	if len(r.LongFilename) > 0 {
		overhead += 2 + len(r.LongFilename)
	}
	if len(r.Source) > 0xFFFF-overhead {
		return ErrSourceTooLarge
	}
	return nil
}

// ContainerSize returns the exact encoded length of the record.
func (r *Record) ContainerSize() int {
	size := MinContainerSize + len(r.Source)
	if len(r.LongFilename) > 0 {
		size += 2 + len(r.LongFilename)
	}
	return size
}

// VarNameString returns the variable name with trailing padding removed.
func (r *Record) VarNameString() string {
	return trimField(r.VarName[:])
}

// InfoString returns the info field with trailing padding removed.
func (r *Record) InfoString() string {
	return trimField(r.Info[:])
}

func trimField(field []byte) string {
	if i := bytes.IndexByte(field, 0x00); i >= 0 {
		field = field[:i]
	}
	return string(field)
}
