package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/phambaophuc/image-converter/internal/models"
)

// MethodZstd is the zip method ID for Zstandard (APPNOTE 6.3.7).
const MethodZstd uint16 = 93

const (
	MethodNameDeflate = "deflate"
	MethodNameStore   = "store"
	MethodNameZstd    = "zstd"
)

// MinEntries is the smallest number of successes worth bundling.
const MinEntries = 2

var ErrArchive = errors.New("archive packaging failed")

type ArchiveError struct {
	Err error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("ArchiveError: %v", e.Err)
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}

func (e *ArchiveError) Is(target error) bool {
	return target == ErrArchive
}

type Entry struct {
	Name string
	Data []byte
}

// EntriesFromSuccesses keeps the order of the batch.
func EntriesFromSuccesses(successes []models.Success) []Entry {
	entries := make([]Entry, 0, len(successes))
	for _, s := range successes {
		entries = append(entries, Entry{Name: s.OutputName, Data: s.OutputBytes})
	}
	return entries
}

// ShouldPackage reports whether a batch with successCount converted files
// gets an archive. A single file is downloaded directly.
func ShouldPackage(successCount int) bool {
	return successCount >= MinEntries
}

type Options struct {
	Method string
	Name   string
}

var DefaultOptions = Options{
	Method: MethodNameDeflate,
	Name:   "converted_images.zip",
}

type Packager struct {
	logger *zap.Logger
	method uint16
	name   string
	now    func() time.Time
}

func NewPackager(logger *zap.Logger, opts ...Options) (*Packager, error) {
	options := DefaultOptions
	if len(opts) > 0 {
		options = opts[0]
	}
	if options.Name == "" {
		options.Name = DefaultOptions.Name
	}

	method, err := ParseMethod(options.Method)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Packager{
		logger: logger,
		method: method,
		name:   options.Name,
		now:    time.Now,
	}, nil
}

func ParseMethod(name string) (uint16, error) {
	switch strings.ToLower(name) {
	case "", MethodNameDeflate:
		return zip.Deflate, nil
	case MethodNameStore:
		return zip.Store, nil
	case MethodNameZstd:
		return MethodZstd, nil
	default:
		return 0, fmt.Errorf("unsupported archive method %q", name)
	}
}

// PackageArchive writes every entry into one zip. Entry names are used as
// given; when a name repeats, the last entry's data wins and the entry keeps
// the position of the first occurrence.
func (p *Packager) PackageArchive(ctx context.Context, entries []Entry) (*models.Archive, error) {
	if len(entries) == 0 {
		return nil, &ArchiveError{Err: errors.New("no entries to package")}
	}

	unique := dedupe(entries)
	if len(unique) < len(entries) {
		p.logger.Warn("Archive entries overwritten by duplicate names",
			zap.Int("entries", len(entries)),
			zap.Int("unique", len(unique)),
		)
	}

	buffer := &bytes.Buffer{}
	zw := zip.NewWriter(buffer)
	zw.RegisterCompressor(MethodZstd, newZstdCompressor)

	modified := p.now()
	for _, entry := range unique {
		if err := p.addEntry(zw, entry, modified); err != nil {
			zw.Close()
			return nil, &ArchiveError{Err: err}
		}
	}

	if err := ctx.Err(); err != nil {
		zw.Close()
		return nil, &ArchiveError{Err: err}
	}

	if err := zw.Close(); err != nil {
		return nil, &ArchiveError{Err: fmt.Errorf("failed to finalize archive: %w", err)}
	}

	p.logger.Info("Archive created",
		zap.String("name", p.name),
		zap.Int("entries", len(unique)),
		zap.Int("bytes", buffer.Len()),
	)

	return &models.Archive{
		Name:       p.name,
		Bytes:      buffer.Bytes(),
		EntryCount: len(unique),
	}, nil
}

func (p *Packager) addEntry(zw *zip.Writer, entry Entry, modified time.Time) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     entry.Name,
		Method:   p.method,
		Modified: modified,
	})
	if err != nil {
		return fmt.Errorf("create zip entry %s failed: %w", entry.Name, err)
	}

	if _, err := w.Write(entry.Data); err != nil {
		return fmt.Errorf("write zip entry %s failed: %w", entry.Name, err)
	}
	return nil
}

func dedupe(entries []Entry) []Entry {
	position := make(map[string]int, len(entries))
	unique := make([]Entry, 0, len(entries))

	for _, entry := range entries {
		if i, ok := position[entry.Name]; ok {
			unique[i].Data = entry.Data
			continue
		}
		position[entry.Name] = len(unique)
		unique = append(unique, entry)
	}
	return unique
}

func newZstdCompressor(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
}
