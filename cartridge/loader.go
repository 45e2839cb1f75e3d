package cartridge

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrNoROMFile         = errors.New("no .nes file found in archive")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrFileTooLarge      = errors.New("file exceeds maximum size limit")
)

// Largest image accepted from disk or an archive member.
const maxImageSize = 8 * 1024 * 1024

const romExtension = ".nes"

var (
	magicZIP      = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEmpty = []byte{0x50, 0x4B, 0x05, 0x06}
	magic7z       = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip     = []byte{0x1F, 0x8B}
	magicRAR      = []byte{0x52, 0x61, 0x72, 0x21}
)

type format int

const (
	formatUnknown format = iota
	formatRaw
	formatZIP
	format7z
	formatGzip
	formatRAR
)

func (f format) String() string {
	switch f {
	case formatRaw:
		return "raw"
	case formatZIP:
		return "zip"
	case format7z:
		return "7z"
	case formatGzip:
		return "gzip"
	case formatRAR:
		return "rar"
	}
	return "unknown"
}

// Load reads and parses the ROM at path. Plain iNES files and the first
// .nes member of a zip, 7z, rar, gzip or tar.gz archive are accepted.
func Load(path string) (*Cartridge, error) {
	data, name, err := ReadImage(path)
	if err != nil {
		return nil, err
	}
	cart, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return cart, nil
}

// ReadImage returns the raw iNES bytes at path together with the base name of
// the file they came from.
func ReadImage(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open ROM: %w", err)
	}
	defer f.Close()

	header := make([]byte, headerSize)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, "", fmt.Errorf("failed to read ROM header: %w", err)
	}
	kind := detectFormat(header[:n], path)
	slog.Debug("loading ROM", "path", path, "format", kind)

	switch kind {
	case formatRaw:
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, "", fmt.Errorf("failed to seek ROM: %w", err)
		}
		data, err := limitedRead(f)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read ROM: %w", err)
		}
		return data, filepath.Base(path), nil
	case formatZIP:
		return fromZIP(path)
	case format7z:
		return from7z(path)
	case formatGzip:
		return fromGzip(path)
	case formatRAR:
		return fromRAR(path)
	}
	return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// detectFormat prefers magic bytes and falls back to the file extension.
func detectFormat(header []byte, path string) format {
	switch {
	case bytes.HasPrefix(header, magic[:]):
		return formatRaw
	case bytes.HasPrefix(header, magicZIP), bytes.HasPrefix(header, magicZIPEmpty):
		return formatZIP
	case bytes.HasPrefix(header, magicRAR):
		return formatRAR
	case bytes.HasPrefix(header, magic7z):
		return format7z
	case bytes.HasPrefix(header, magicGzip):
		return formatGzip
	}

	lower := strings.ToLower(path)
	switch filepath.Ext(lower) {
	case ".zip":
		return formatZIP
	case ".7z":
		return format7z
	case ".gz", ".tgz":
		return formatGzip
	case ".rar":
		return formatRAR
	case romExtension:
		return formatRaw
	}
	return formatUnknown
}

func isROMFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), romExtension)
}

func limitedRead(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImageSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
