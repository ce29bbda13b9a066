package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Importer walks a directory of CSV exports and sends unseen files to
// the server.
type Importer struct {
	client *Client
	state  *StateDB
	userID int
	dryRun bool
	log    *slog.Logger
}

// New creates an Importer. client may be nil in dry-run mode.
func New(client *Client, state *StateDB, userID int, dryRun bool, log *slog.Logger) *Importer {
	return &Importer{client: client, state: state, userID: userID, dryRun: dryRun, log: log}
}

// Result summarizes one import run.
type Result struct {
	FilesSeen     int
	FilesSkipped  int
	FilesImported int
	Workouts      int
}

// Run imports every .csv file under dir that the state database has not
// seen. Files that fail to parse abort the run; a partially imported
// file is not marked, so the next run retries it.
func (im *Importer) Run(ctx context.Context, dir string) (*Result, error) {
	res := &Result{}

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".csv") {
			return nil
		}
		res.FilesSeen++

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		hash, err := HashFile(path)
		if err != nil {
			return fmt.Errorf("hashing %s: %w", path, err)
		}

		done, err := im.state.IsImported(rel, info.Size(), hash)
		if err != nil {
			return fmt.Errorf("checking state for %s: %w", rel, err)
		}
		if done {
			res.FilesSkipped++
			return nil
		}

		n, err := im.importFile(ctx, path)
		if err != nil {
			return fmt.Errorf("importing %s: %w", rel, err)
		}
		res.Workouts += n
		res.FilesImported++

		if im.dryRun {
			return nil
		}
		if err := im.state.MarkImported(rel, info.Size(), hash); err != nil {
			return fmt.Errorf("marking %s imported: %w", rel, err)
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	return res, nil
}

func (im *Importer) importFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	sessions, err := Parse(f)
	if err != nil {
		return 0, err
	}

	for _, s := range sessions {
		w := ToWorkout(s, im.userID)
		if im.dryRun {
			im.log.Info("would import workout", "name", s.Name, "date", s.Date.Format("2006-01-02"), "exercises", len(w.Exercises))
			continue
		}
		if err := im.client.PostWorkout(ctx, w); err != nil {
			return 0, fmt.Errorf("sending session %q: %w", s.Name, err)
		}
		im.log.Info("imported workout", "name", s.Name, "date", s.Date.Format("2006-01-02"), "exercises", len(w.Exercises))
	}
	return len(sessions), nil
}
