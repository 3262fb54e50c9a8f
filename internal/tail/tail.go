// Package tail reads the end of VM log files, either once or following
// appends as the helper process writes them.
package tail

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// LastLines returns up to n trailing lines of the file at path.
func LastLines(path string, n int) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	if n <= 0 || len(data) == 0 {
		return nil, nil
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

// Follow streams data appended to the file to w until ctx is canceled.
// Existing content is skipped; the writer process may still be
// appending, and truncation restarts from the beginning.
func Follow(ctx context.Context, w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("seek log: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch log: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == 0 {
				continue
			}
			if err := copyNew(w, f); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch log: %w", err)
		}
	}
}

// copyNew streams bytes appended since the last read. If the file shrank
// underneath us it was truncated, so reading restarts at the top.
func copyNew(w io.Writer, f *os.File) error {
	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("seek log: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat log: %w", err)
	}
	if info.Size() < pos {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("seek log: %w", err)
		}
	}

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("read log: %w", err)
	}
	return nil
}
