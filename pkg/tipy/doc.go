// Package tipy implements a byte-exact codec for the TI graphing
// calculator Python variable container: the binary file that carries one
// Python program onto the device.
//
// # Container Format
//
// All multi-byte integers are 16-bit little-endian. Offsets are from the
// start of the buffer:
//
//	0x00  11  magic         "**TI83F*" SUB LF NUL, verified on decode
//	0x0B  42  info          free-form, fixed width, no terminator
//	0x35   2  data size     length of everything from 0x37 to the checksum
//	0x37   2  flags         0x0D 0x00, written verbatim
//	0x39   2  var size      payload size + 2
//	0x3B   1  type id       0x15, application variable
//	0x3C   8  var name      fixed width, no terminator
//	0x44   2  padding       zero
//	0x46   2  var size      repeated
//	0x48   2  payload size  var size - 2
//	0x4A   4  format tag    "PYCD"
//	0x4E   1  filename len  0 when no long filename is embedded
//	...       filename      SOH, filename bytes, NUL (only when len > 0)
//	...       source        the raw program bytes
//	...    2  checksum      byte sum mod 65536 over [0x37, end of source)
//
// When no long filename is present the zero length byte at 0x4E itself
// terminates the metadata and the source begins at 0x4F. The variable
// size is stored twice and the payload size keeps a fixed -2 offset from
// it; the redundancy is never cross-checked on decode but is reproduced
// on encode for compatibility with the calculator's loader.
//
// # Usage
//
//	codec := tipy.NewCodec()
//
//	rec := tipy.NewRecord([]byte("print(1)"), "PYFILE")
//	buf, err := codec.Encode(rec)
//	if err != nil {
//	    return err
//	}
//
//	decoded, err := codec.Decode(buf)
//	if err != nil {
//	    return err // ErrInvalidFormat, ErrMalformedLength or ErrChecksumMismatch
//	}
//
// # Concurrency
//
// The codec holds no state. Encode and Decode allocate fresh buffers and
// keep no references into their inputs, so independent calls may run
// concurrently without coordination.
package tipy
