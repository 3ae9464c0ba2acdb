// package backlog reads and writes the per-playlist CSV backlog files.
//
// Each file under the configured directory holds the pending (title, artist)
// pairs for one playlist; the filename stem is the playlist name. A header
// row naming the title and artist columns is required.
package backlog

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"plexsync/internal/models"
	"plexsync/internal/shared"
)

// Backlog is the parsed contents of one playlist's CSV file.
type Backlog struct {
	PlaylistName string
	Path         string
	Requests     []models.TrackRequest
}

// LoadDir reads every .csv file in dir, sorted by filename so that playlists
// are always processed in the same order. A missing directory is an error;
// an empty one yields an empty slice.
func LoadDir(dir string) ([]Backlog, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrBacklogDirMissing, dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", shared.ErrBacklogDirMissing, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backlog directory: %w", err)
	}

	var backlogs []Backlog
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		requests, err := Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}

		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		backlogs = append(backlogs, Backlog{
			PlaylistName: name,
			Path:         path,
			Requests:     requests,
		})
	}

	sort.Slice(backlogs, func(i, j int) bool {
		return backlogs[i].PlaylistName < backlogs[j].PlaylistName
	})

	return backlogs, nil
}

// Load parses a single backlog CSV file, preserving row order.
func Load(path string) ([]models.TrackRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads backlog records from r. The first row must be a header naming
// the title and artist columns (case-insensitive); extra columns are ignored.
func Parse(r io.Reader) ([]models.TrackRequest, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, shared.ErrBacklogHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	titleIdx, artistIdx := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "title":
			titleIdx = i
		case "artist":
			artistIdx = i
		}
	}
	if titleIdx < 0 || artistIdx < 0 {
		return nil, shared.ErrBacklogHeader
	}

	var requests []models.TrackRequest
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		if titleIdx >= len(record) || artistIdx >= len(record) {
			continue
		}

		title := strings.TrimSpace(record[titleIdx])
		artist := strings.TrimSpace(record[artistIdx])
		if title == "" && artist == "" {
			continue
		}

		requests = append(requests, models.TrackRequest{Title: title, Artist: artist})
	}

	return requests, nil
}

// Write replaces the backlog file at path with the given requests, keeping
// the standard header. Used after pruning; called once per playlist, after
// its whole pass completes.
func Write(path string, requests []models.TrackRequest) error {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"title", "artist"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, req := range requests {
		if err := writer.Write([]string{req.Title, req.Artist}); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}

	return os.WriteFile(path, buf.Bytes(), 0644)
}
