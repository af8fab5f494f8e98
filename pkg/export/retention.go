package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/matzehuels/surveyplot/pkg/errors"
	"github.com/matzehuels/surveyplot/pkg/observability"
)

// Retention defaults in days.
const (
	SweepDays   = 7  // manual "delete old exports"
	StartupDays = 30 // automatic sweep when the server starts
)

// Days converts a day count into a duration.
func Days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

// Entry is a file in the export directory.
type Entry struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// SweepResult reports the outcome of [Writer.Sweep] or [Writer.Purge].
type SweepResult struct {
	Deleted []string `json:"deleted"`
	Message string   `json:"message"`
}

// List returns the exported files, newest first. A missing directory is
// empty.
func (w *Writer) List() ([]Entry, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.list(false)
}

// list reads the regular files in the export directory. Dot-files such as
// the temporary files of an interrupted Write are included only if hidden
// is set.
func (w *Writer) list(hidden bool) ([]Entry, error) {
	des, err := os.ReadDir(w.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExport, err, "read export folder")
	}

	var out []Entry
	for _, de := range des {
		if !de.Type().IsRegular() || (!hidden && strings.HasPrefix(de.Name(), ".")) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue // removed concurrently by someone else
		}
		out = append(out, Entry{Name: de.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ModTime.Equal(out[j].ModTime) {
			return out[i].ModTime.After(out[j].ModTime)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Sweep deletes files last modified more than olderThan ago. Files that
// cannot be removed are skipped; the first such failure is returned along
// with the files that were deleted.
func (w *Writer) Sweep(ctx context.Context, olderThan time.Duration) (res SweepResult, err error) {
	defer func() { observability.Export().OnSweep(ctx, olderThan, len(res.Deleted), err) }()

	if olderThan < 0 {
		return SweepResult{}, errors.New(errors.ErrCodeInvalidInput, "retention threshold cannot be negative: %s", olderThan)
	}
	threshold := w.now().Add(-olderThan)

	w.mu.Lock()
	defer w.mu.Unlock()

	res, err = w.remove(func(e Entry) bool { return e.ModTime.Before(threshold) })
	if len(res.Deleted) > 0 {
		res.Message = fmt.Sprintf("Aufgeräumt! %d alte Dateien wurden gelöscht.", len(res.Deleted))
	} else {
		res.Message = "Es wurden keine alten Dateien gefunden."
	}
	w.logger.Info("swept export folder", "dir", w.dir, "older_than", olderThan, "deleted", len(res.Deleted))
	return res, err
}

// Purge deletes every regular file in the export directory.
func (w *Writer) Purge(ctx context.Context) (res SweepResult, err error) {
	defer func() { observability.Export().OnPurge(ctx, len(res.Deleted), err) }()

	w.mu.Lock()
	defer w.mu.Unlock()

	res, err = w.remove(func(Entry) bool { return true })
	if len(res.Deleted) > 0 {
		res.Message = fmt.Sprintf("Erledigt! Alle %d Dateien wurden aus dem Export-Ordner gelöscht.", len(res.Deleted))
	} else {
		res.Message = "Der Export-Ordner ist bereits leer."
	}
	w.logger.Info("purged export folder", "dir", w.dir, "deleted", len(res.Deleted))
	return res, err
}

// remove deletes the regular files accepted by match, hidden ones included.
// The caller holds w.mu, so no Write is in flight.
func (w *Writer) remove(match func(Entry) bool) (SweepResult, error) {
	entries, err := w.list(true)
	if err != nil {
		return SweepResult{}, err
	}

	var (
		res   SweepResult
		first error
	)
	for _, e := range entries {
		if !match(e) {
			continue
		}
		if err := os.Remove(filepath.Join(w.dir, e.Name)); err != nil && !os.IsNotExist(err) {
			w.logger.Warn("could not delete export", "name", e.Name, "err", err)
			if first == nil {
				first = errors.Wrap(errors.ErrCodeExport, err, "delete %s", e.Name)
			}
			continue
		}
		res.Deleted = append(res.Deleted, e.Name)
	}
	sort.Strings(res.Deleted)
	return res, first
}
