package backlog

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// LocalMatches walks the local music directory looking for filenames that
// contain "artist - title" (case-insensitive). Used to report unmatched
// tracks that exist on disk but are missing from the library; it never feeds
// the mutation path.
func LocalMatches(musicDir, artist, title string) ([]string, error) {
	if musicDir == "" {
		return nil, nil
	}

	needle := strings.ToLower(artist + " - " + title)

	var matches []string
	err := filepath.WalkDir(musicDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		stem := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		if strings.Contains(strings.ToLower(stem), needle) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return matches, nil
}
