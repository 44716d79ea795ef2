package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/beetlebugorg/img/pkg/img"
)

func safeOpen(path string) (*img.Archive, error) {
	opts := img.DefaultOpenOptions()
	opts.Logger = img.NewTextLogger(slog.LevelWarn)

	archive, err := img.OpenFile(path, opts)
	if err != nil {
		// Check if file exists
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("archive not found: %s", path)
		}

		// Report where decoding stopped
		var de *img.DecodeError
		if errors.As(err, &de) {
			log.Printf("Failed in %s at offset 0x%X", de.Section, de.Offset)
		}
		if errors.Is(err, img.ErrTruncated) {
			log.Printf("%s looks truncated", path)
		}
		return nil, err
	}

	if st := archive.Stats(); st.SkippedEntries > 0 {
		log.Printf("Warning: %s has %d unreadable type entries", path, st.SkippedEntries)
	}
	return archive, nil
}

func main() {
	archive, err := safeOpen("00000001.TRE")
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}
	defer archive.Close()

	fmt.Printf("Loaded %d subdivisions\n", archive.SubdivisionCount())

	// Try a missing archive
	_, err = safeOpen("NONEXISTENT.TRE")
	if err != nil {
		log.Printf("Expected error: %v", err)
	}
}
