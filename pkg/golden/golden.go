// Package golden checks rendered fixtures against stored frame hashes.
//
// Every *.html file in the fixture directory is rendered headless and the
// RGBA8 buffer is hashed with FNV-1a 64. The hash is compared with
// <name>.hash in the golden directory; a mismatch leaves the new hash in
// <name>.actual.hash. The display list hash is kept the same way in
// <name>.display.hash. Missing hashes are created, and Update rewrites all
// of them.
package golden

import (
	"errors"
	"fmt"
	"hash/fnv"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"tessera/pkg/resource"
)

// Options controls a golden run.
type Options struct {
	FixtureDir string
	GoldenDir  string
	Width      int
	Height     int
	Frame      uint64
	Update     bool
	// Charset of the fixture files, empty for UTF-8. Ignored when Fetcher
	// is set.
	Charset string
	Fetcher resource.Fetcher
	// Snapshots also keeps <name>.png next to each hash and, on mismatch,
	// writes <name>.actual.png and <name>.diff.png.
	Snapshots bool
	Compare   CompareOptions
}

// Report summarises a run.
type Report struct {
	Fixtures int
	Passed   []string
	Updated  []string
	Failed   []string
	// DisplayHashes maps fixture names to their display list hash.
	DisplayHashes map[string]string
}

// Hash kinds checked for every fixture.
const (
	KindFrame   = "frame"
	KindDisplay = "display"
)

// MismatchError describes one fixture whose hash changed.
type MismatchError struct {
	Name            string
	Kind            string
	Expected        string
	Actual          string
	ActualPath      string
	DifferentPixels int // -1 when no snapshot was compared
}

func (e *MismatchError) Error() string {
	msg := fmt.Sprintf("%s %s expected=%s actual=%s (actual hash in %s)", e.Name, e.Kind, e.Expected, e.Actual, e.ActualPath)
	if e.DifferentPixels >= 0 {
		msg += fmt.Sprintf(", %d pixels differ", e.DifferentPixels)
	}
	return msg
}

// HashBuffer returns the FNV-1a 64 hash of buf as 16 lowercase hex digits.
func HashBuffer(buf []byte) string {
	h := fnv.New64a()
	_, _ = h.Write(buf)
	return formatHash(h.Sum64())
}

func formatHash(h uint64) string {
	return fmt.Sprintf("%016x", h)
}

// CollectFixtures lists the *.html files directly inside dir in natural
// order.
func CollectFixtures(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	var fixtures []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".html" {
			continue
		}
		fixtures = append(fixtures, filepath.Join(dir, entry.Name()))
	}
	sort.Sort(natural.StringSlice(fixtures))
	return fixtures, nil
}

type hashState int

const (
	hashMatched hashState = iota
	hashWritten
	hashMismatch
)

// Run renders every fixture and checks or records two hashes for it: the
// RGBA8 frame in <name>.hash and the display list (with scripts) in
// <name>.display.hash. A missing hash file is created. Mismatches do not
// stop the run; they are returned together as one error whose parts are
// *MismatchError values (see multierr.Errors). I/O failures abort.
func Run(opts Options, log *zap.Logger) (*Report, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("golden")

	if err := os.MkdirAll(opts.GoldenDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", opts.GoldenDir, err)
	}
	fixtures, err := CollectFixtures(opts.FixtureDir)
	if err != nil {
		return nil, err
	}
	if len(fixtures) == 0 {
		return nil, fmt.Errorf("no fixtures found in %s", opts.FixtureDir)
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		if fetcher, err = resource.NewFileFetcher("", opts.Charset); err != nil {
			return nil, err
		}
	}
	renderer := resource.NewDocumentRenderer(log)

	report := &Report{Fixtures: len(fixtures), DisplayHashes: make(map[string]string, len(fixtures))}
	var mismatches error
	for _, fixture := range fixtures {
		name := strings.TrimSuffix(filepath.Base(fixture), filepath.Ext(fixture))

		markup, err := fetcher.FetchDocument(fixture)
		if err != nil {
			return report, err
		}
		img, err := renderer.RenderFrame(markup, opts.Width, opts.Height, opts.Frame)
		if err != nil {
			return report, fmt.Errorf("rendering %s: %w", fixture, err)
		}
		frameHash := HashBuffer(img.Pix)
		displayHash := formatHash(renderer.Last().Hash())
		report.DisplayHashes[name] = displayHash

		frameState, frameMismatch, err := checkHash(opts, name, KindFrame, frameHash, log)
		if err != nil {
			return report, err
		}
		displayState, displayMismatch, err := checkHash(opts, name, KindDisplay, displayHash, log)
		if err != nil {
			return report, err
		}

		snapshotPath := filepath.Join(opts.GoldenDir, name+".png")
		if opts.Snapshots && frameState == hashWritten {
			if err := imaging.Save(img, snapshotPath); err != nil {
				return report, fmt.Errorf("failed to write snapshot %s: %w", snapshotPath, err)
			}
		}
		if frameMismatch != nil && opts.Snapshots {
			if err := compareSnapshot(img, opts, name, frameMismatch); err != nil {
				return report, err
			}
		}

		switch {
		case frameMismatch != nil || displayMismatch != nil:
			report.Failed = append(report.Failed, name)
			if frameMismatch != nil {
				mismatches = multierr.Append(mismatches, frameMismatch)
			}
			if displayMismatch != nil {
				mismatches = multierr.Append(mismatches, displayMismatch)
			}
		case frameState == hashWritten || displayState == hashWritten:
			report.Updated = append(report.Updated, name)
		default:
			log.Debug("Golden matched", zap.String("fixture", name), zap.String("hash", frameHash), zap.String("display", displayHash))
			report.Passed = append(report.Passed, name)
		}
	}

	if mismatches != nil {
		return report, mismatches
	}
	log.Info("Golden check passed", zap.Int("count", report.Fixtures))
	return report, nil
}

// checkHash compares actual with the stored hash of the given kind,
// writing it when missing or when updating.
func checkHash(opts Options, name, kind, actual string, log *zap.Logger) (hashState, *MismatchError, error) {
	base := name
	if kind == KindDisplay {
		base += ".display"
	}
	expectedPath := filepath.Join(opts.GoldenDir, base+".hash")

	_, statErr := os.Stat(expectedPath)
	if opts.Update || errors.Is(statErr, fs.ErrNotExist) {
		if err := os.WriteFile(expectedPath, []byte(actual+"\n"), 0o644); err != nil {
			return hashWritten, nil, fmt.Errorf("failed to write expected hash %s: %w", expectedPath, err)
		}
		log.Info("Golden updated", zap.String("path", expectedPath), zap.String("hash", actual))
		return hashWritten, nil, nil
	}

	data, err := os.ReadFile(expectedPath)
	if err != nil {
		return hashMismatch, nil, fmt.Errorf("failed to read %s: %w", expectedPath, err)
	}
	expected := strings.TrimSpace(string(data))
	if expected == actual {
		return hashMatched, nil, nil
	}

	actualPath := filepath.Join(opts.GoldenDir, base+".actual.hash")
	if err := os.WriteFile(actualPath, []byte(actual+"\n"), 0o644); err != nil {
		return hashMismatch, nil, fmt.Errorf("failed to write actual hash %s: %w", actualPath, err)
	}
	log.Warn("Golden mismatch", zap.String("fixture", name), zap.String("kind", kind), zap.String("expected", expected), zap.String("actual", actual))
	return hashMismatch, &MismatchError{
		Name:            name,
		Kind:            kind,
		Expected:        expected,
		Actual:          actual,
		ActualPath:      actualPath,
		DifferentPixels: -1,
	}, nil
}

func compareSnapshot(img *image.RGBA, opts Options, name string, mismatch *MismatchError) error {
	actualPNG := filepath.Join(opts.GoldenDir, name+".actual.png")
	if err := imaging.Save(img, actualPNG); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", actualPNG, err)
	}
	expected, err := imaging.Open(filepath.Join(opts.GoldenDir, name+".png"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open snapshot for %s: %w", name, err)
	}
	if expected.Bounds() != img.Bounds() {
		mismatch.DifferentPixels = img.Bounds().Dx() * img.Bounds().Dy()
		return nil
	}
	cmp := opts.Compare
	cmp.DiffImagePath = filepath.Join(opts.GoldenDir, name+".diff.png")
	res, err := CompareImages(img, expected, cmp)
	if err != nil {
		return fmt.Errorf("comparing %s: %w", name, err)
	}
	mismatch.DifferentPixels = res.DifferentPixels
	return nil
}
