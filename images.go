package lanefind

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
)

// ErrNoImages is returned when a calibration image pattern matches nothing
var ErrNoImages = errors.New("no calibration images found")

// FindCalibrationImages returns the files matching the glob pattern in
// sorted order
func FindCalibrationImages(pattern string) ([]string, error) {

	files, err := filepath.Glob(pattern)

	if err != nil {
		return nil, fmt.Errorf("invalid calibration image pattern %q: %w", pattern, err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoImages, pattern)
	}

	sort.Strings(files)

	return files, nil
}
