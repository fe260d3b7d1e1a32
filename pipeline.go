package retro

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

func (c *Converter) findImages(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' && file != base {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file with a known image extension
			if !info.Mode().IsRegular() || !isImage(file) {
				return nil
			}

			rel, err := filepath.Rel(base, file)
			if err != nil {
				return err
			}

			select {
			case out <- rel:
			case <-ctx.Done():
				return ctx.Err()
			}

			return nil
		})
	}()
	return out, errc, nil
}

func outputPath(dst, rel, ext string) string {
	return filepath.Join(dst, strings.TrimSuffix(rel, filepath.Ext(rel))+ext)
}

func (c *Converter) imageWorker(ctx context.Context, src, dst, ext string, cfg Config, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for rel := range in {
			// Drain without doing any more work once cancelled
			if ctx.Err() != nil {
				continue
			}

			r, err := c.ConvertFile(filepath.Join(src, rel), outputPath(dst, rel, ext), cfg)
			if err != nil {
				errc <- err
				return
			}
			if r.Exhausted != nil {
				c.logger.Printf("Only %d colors in \"%s\"\n", r.Exhausted.Got, rel)
			}
		}
	}()
	return errc, nil
}

func waitForPipeline(cancel context.CancelFunc, errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			cancel()
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// ConvertDirectory converts every image found under src, writing the
// results to the same relative paths under dst with the extension replaced
// by ext. Up to workers images are converted at once, or one per CPU if
// workers is zero or less. The first error stops the walk and is returned.
func (c *Converter) ConvertDirectory(ctx context.Context, src, dst, ext string, cfg Config, workers int) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, ok := outputExtensions[strings.ToLower(ext)]; !ok {
		return errUnknownOutput
	}

	src, err := filepath.Abs(src)
	if err != nil {
		return err
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := c.findImages(ctx, src)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < workers; i++ {
		errc, err := c.imageWorker(ctx, src, dst, ext, cfg, files)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(cancelFunc, errcList...)
}
