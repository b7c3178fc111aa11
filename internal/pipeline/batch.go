package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/lane-tools-mcp/internal/imaging"
	"github.com/ironsheep/lane-tools-mcp/internal/lane"
)

// ErrNotDirectory is returned when a batch input path is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// FileResult reports how a single file in a batch went.
type FileResult struct {
	Input  string `json:"input"`
	Output string `json:"output,omitempty"`

	Left  *lane.Segment `json:"left,omitempty"`
	Right *lane.Segment `json:"right,omitempty"`

	Segments int    `json:"segments"`
	Error    string `json:"error,omitempty"`
}

// BatchResult summarises a directory run. Files are sorted by input path.
type BatchResult struct {
	InputDir   string       `json:"input_dir"`
	OutputDir  string       `json:"output_dir"`
	Files      []FileResult `json:"files"`
	Processed  int          `json:"processed"`
	Failed     int          `json:"failed"`
	Incomplete int          `json:"incomplete"`
	ElapsedMS  int64        `json:"elapsed_ms"`
}

// ListImages returns the decodable image files directly inside dir, sorted.
// Subdirectories are not descended into.
func ListImages(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !imaging.IsImageFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// ProcessDir runs Process over every image in inDir and writes each overlay
// to outDir as the source file name followed by the configured suffix.
// Files are processed concurrently, at most Workers at a time.
//
// A file that fails to decode or save is recorded in its FileResult and does
// not stop the batch. Cancelling ctx stops new files from being scheduled and
// is returned as the error.
func (p *Pipeline) ProcessDir(ctx context.Context, inDir, outDir string) (*BatchResult, error) {
	start := time.Now()

	paths, err := ListImages(inDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", outDir, err)
	}

	log := p.log.With().Str("input_dir", inDir).Str("output_dir", outDir).Logger()
	log.Info().Int("files", len(paths)).Int("workers", p.cfg.Workers).Msg("batch started")

	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.processFile(path, outDir)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	br := &BatchResult{
		InputDir:  inDir,
		OutputDir: outDir,
		Files:     results,
		ElapsedMS: time.Since(start).Milliseconds(),
	}
	for _, r := range results {
		switch {
		case r.Error != "":
			br.Failed++
		case r.Left == nil || r.Right == nil:
			br.Processed++
			br.Incomplete++
		default:
			br.Processed++
		}
	}

	log.Info().
		Int("processed", br.Processed).
		Int("failed", br.Failed).
		Int("incomplete", br.Incomplete).
		Int64("elapsed_ms", br.ElapsedMS).
		Msg("batch finished")
	return br, nil
}

func (p *Pipeline) processFile(path, outDir string) FileResult {
	fr := FileResult{Input: path}
	log := p.log.With().Str("file", filepath.Base(path)).Logger()

	img, err := imaging.Open(path)
	if err != nil {
		log.Error().Err(err).Msg("decode failed")
		fr.Error = err.Error()
		return fr
	}

	res, err := p.Process(img)
	if err != nil {
		log.Error().Err(err).Msg("processing failed")
		fr.Error = err.Error()
		return fr
	}
	fr.Segments = len(res.Segments)
	fr.Left, fr.Right = res.Lanes.Left, res.Lanes.Right

	out := filepath.Join(outDir, imaging.OutputName(path, p.cfg.OutputSuffix))
	if err := imaging.Save(res.Overlay, out); err != nil {
		log.Error().Err(err).Msg("save failed")
		fr.Error = err.Error()
		return fr
	}
	fr.Output = out
	return fr
}
