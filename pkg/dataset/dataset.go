// Package dataset creates synthetic file sets to benchmark against,
// along with the newline-delimited list files the benchmark consumes.
package dataset

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const chunkSize = 1 << 20

// Config controls one dataset generation run.
type Config struct {
	Dir      string // directory the files are created in
	Count    int    // number of files
	FileSize int64  // bytes per file
	ListPath string // where to write the file list; "" = <dir>/files.txt

	Jobs     int     // parallel writers
	LimitBps float64 // aggregate write limit in bytes/sec, 0 = unlimited
	Seed     int64   // content seed; file i uses Seed+i
	Progress bool    // render a progress bar
}

// Generate writes cfg.Count files of pseudorandom content and the list
// file referencing them. Content is incompressible on purpose so the
// files cannot be shortcut by compressing storage.
func Generate(ctx context.Context, cfg Config, logger *slog.Logger) error {
	if cfg.Count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", cfg.Count)
	}
	if cfg.FileSize < 1 {
		return fmt.Errorf("size must be at least 1 byte, got %d", cfg.FileSize)
	}
	if cfg.Jobs < 1 {
		cfg.Jobs = 1
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return fmt.Errorf("create dataset dir: %w", err)
	}

	var limiter *rate.Limiter
	if cfg.LimitBps > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.LimitBps), chunkSize)
	}

	var bar *progressbar.ProgressBar
	if cfg.Progress {
		bar = progressbar.NewOptions(cfg.Count,
			progressbar.OptionSetDescription("generating files"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
		)
	}

	paths := make([]string, cfg.Count)
	for i := range paths {
		paths[i] = filepath.Join(cfg.Dir, fmt.Sprintf("thrash-%06d.dat", i))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Jobs)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := writeFile(ctx, path, cfg.FileSize, cfg.Seed+int64(i), limiter); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}

	listPath := cfg.ListPath
	if listPath == "" {
		listPath = filepath.Join(cfg.Dir, "files.txt")
	}
	if err := writeList(listPath, paths); err != nil {
		return err
	}

	logger.Info("dataset generated",
		"files", cfg.Count, "bytes_each", cfg.FileSize, "list", listPath)
	return nil
}

func writeFile(ctx context.Context, path string, size int64, seed int64, limiter *rate.Limiter) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rng := rand.New(rand.NewSource(seed))
	chunk := make([]byte, chunkSize)
	for remaining := size; remaining > 0; {
		n := int64(len(chunk))
		if remaining < n {
			n = remaining
		}
		rng.Read(chunk[:n])
		if limiter != nil {
			if err := limiter.WaitN(ctx, int(n)); err != nil {
				return err
			}
		}
		if _, err := f.Write(chunk[:n]); err != nil {
			return err
		}
		remaining -= n
	}
	return f.Sync()
}

func writeList(path string, paths []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create list file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, p := range paths {
		fmt.Fprintln(w, p)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write list file: %w", err)
	}
	return nil
}
