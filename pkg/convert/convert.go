// Package convert performs file-level conversion between Python source
// files and calculator variable containers. It owns the plumbing the
// codec deliberately leaves to callers: whole-file reads, format
// sniffing, output-path and variable-name inference, and the framing
// budget guard.
package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/calctools/tipyconv/pkg/tipy"
)

// Format classifies a file for conversion.
type Format int

const (
	FormatUnknown Format = iota
	FormatSource
	FormatContainer
)

const (
	sourceExt    = ".py"
	containerExt = ".8xv"
)

// Options controls how a source file is packed.
type Options struct {
	VarName      string // on-calculator name; inferred from the path when empty
	Info         string // free-form info field
	LongFilename string // embedded display name; omitted when empty
	Force        bool   // overwrite an existing output file
}

// Converter converts files on an afero filesystem through the codec.
type Converter struct {
	fs     afero.Fs
	codec  *tipy.Codec
	logger *log.Logger
}

// New creates a converter over the given filesystem.
func New(fs afero.Fs) *Converter {
	return &Converter{
		fs:     fs,
		codec:  tipy.NewCodec(),
		logger: log.Default(),
	}
}

// Pack reads a Python source file and writes it as a variable container.
// When outPath is empty it is inferred from inPath. The written path is
// returned.
func (c *Converter) Pack(inPath, outPath string, opts Options) (string, error) {
	source, err := afero.ReadFile(c.fs, inPath)
	if err != nil {
		return "", fmt.Errorf("failed to read source file: %w", err)
	}

	name := opts.VarName
	if name == "" {
		name = VarNameFromPath(inPath)
	}

	rec := tipy.NewRecordWithMetadata(source, opts.LongFilename, opts.Info, name)
	if err := rec.Validate(); err != nil {
		return "", fmt.Errorf("%s: %w", inPath, err)
	}

	encoded, err := c.codec.Encode(rec)
	if err != nil {
		return "", err
	}

	if outPath == "" {
		outPath = OutputPath(inPath, FormatContainer)
	}
	if err := c.guardOverwrite(outPath, opts.Force); err != nil {
		return "", err
	}
	if err := afero.WriteFile(c.fs, outPath, encoded, 0o644); err != nil {
		return "", fmt.Errorf("failed to write container: %w", err)
	}

	c.logger.Debug("packed program",
		"in", inPath, "out", outPath, "var", rec.VarNameString(), "bytes", len(encoded))
	return outPath, nil
}

// Unpack reads a variable container and writes its source back out.
// When outPath is empty the embedded long filename is preferred,
// falling back to a path inferred from inPath. The written path and the
// decoded record are returned.
func (c *Converter) Unpack(inPath, outPath string, force bool) (string, *tipy.Record, error) {
	data, err := afero.ReadFile(c.fs, inPath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read container: %w", err)
	}

	rec, err := c.codec.Decode(data)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", inPath, err)
	}

	if outPath == "" {
		if name := SafeFilename(rec.LongFilename); name != "" {
			outPath = filepath.Join(filepath.Dir(inPath), name)
		} else {
			outPath = OutputPath(inPath, FormatSource)
		}
	}
	if err := c.guardOverwrite(outPath, force); err != nil {
		return "", nil, err
	}
	if err := afero.WriteFile(c.fs, outPath, rec.Source, 0o644); err != nil {
		return "", nil, fmt.Errorf("failed to write source file: %w", err)
	}

	c.logger.Debug("unpacked program",
		"in", inPath, "out", outPath, "var", rec.VarNameString(), "bytes", len(rec.Source))
	return outPath, rec, nil
}

// Sniff classifies a file by extension first and magic bytes second.
func (c *Converter) Sniff(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case sourceExt:
		return FormatSource, nil
	case containerExt:
		return FormatContainer, nil
	}

	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return FormatUnknown, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if tipy.Detect(data) {
		return FormatContainer, nil
	}
	return FormatSource, nil
}

func (c *Converter) guardOverwrite(path string, force bool) error {
	if force {
		return nil
	}
	if _, err := c.fs.Stat(path); err == nil {
		return fmt.Errorf("%s already exists, not overwriting", path)
	} else if !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SafeFilename reduces a container-embedded filename to a bare base
// name, so a crafted container cannot steer output outside the target
// directory. It returns "" when nothing usable remains.
func SafeFilename(name []byte) string {
	base := filepath.Base(string(name))
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return ""
	}
	return base
}

// VarNameFromPath derives an on-calculator variable name from a file
// path: the base name without extension, uppercased, restricted to
// A-Z and 0-9, truncated to the fixed field width.
func VarNameFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var b strings.Builder
	for _, r := range strings.ToUpper(base) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() == tipy.VarNameSize {
			break
		}
	}
	return b.String()
}

// OutputPath infers a destination path in the same directory as in.
// Packing PROG.py yields PROG.8xv with a calculator-safe name; unpacking
// PROG.8xv yields prog.py.
func OutputPath(in string, target Format) string {
	dir := filepath.Dir(in)
	base := filepath.Base(in)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	switch target {
	case FormatContainer:
		name := VarNameFromPath(in)
		if name == "" {
			name = tipy.DefaultVarName
		}
		return filepath.Join(dir, name+containerExt)
	case FormatSource:
		return filepath.Join(dir, strings.ToLower(base)+sourceExt)
	default:
		return in
	}
}
