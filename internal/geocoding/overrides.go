package geocoding

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Overrides maps a "location|community" key to a preferred address. A nil
// address means the location has no physical address and is never looked up.
type Overrides map[string]*string

// LoadOverrides reads the override table at path. A missing file yields no overrides.
func LoadOverrides(path string) (Overrides, error) {
	overrides := Overrides{}
	if path == "" {
		return overrides, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return overrides, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read address overrides: %w", err)
	}

	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse address overrides %s: %w", path, err)
	}
	return overrides, nil
}
