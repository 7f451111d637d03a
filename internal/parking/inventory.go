package parking

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// inventoryFile is the on-disk layout of a facility:
//
//	[[slot]]
//	id = 1
//	class = "small"
type inventoryFile struct {
	Slots []inventoryEntry `toml:"slot" yaml:"slots"`
}

type inventoryEntry struct {
	ID    int    `toml:"id" yaml:"id"`
	Class string `toml:"class" yaml:"class"`
}

// LoadInventory reads a slot inventory from a .toml, .yaml or .yml file.
func LoadInventory(path string) ([]SlotSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}

	var file inventoryFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &file); err != nil {
			return nil, fmt.Errorf("decode inventory %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("decode inventory %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("inventory %s: unsupported format %q", path, ext)
	}

	return file.specs()
}

func (f inventoryFile) specs() ([]SlotSpec, error) {
	if len(f.Slots) == 0 {
		return nil, ErrEmptyInventory
	}
	specs := make([]SlotSpec, 0, len(f.Slots))
	for i, entry := range f.Slots {
		class, err := ParseSlotClass(entry.Class)
		if err != nil {
			return nil, fmt.Errorf("slot entry %d: %w", i, err)
		}
		specs = append(specs, SlotSpec{ID: entry.ID, Class: class})
	}
	return specs, nil
}

// UniformInventory numbers slots from 1: small slots first, then medium,
// then large.
func UniformInventory(small, medium, large int) []SlotSpec {
	specs := make([]SlotSpec, 0, max(0, small)+max(0, medium)+max(0, large))
	id := 1
	for _, group := range []struct {
		class SlotClass
		count int
	}{
		{SlotSmall, small},
		{SlotMedium, medium},
		{SlotLarge, large},
	} {
		for range group.count {
			specs = append(specs, SlotSpec{ID: id, Class: group.class})
			id++
		}
	}
	return specs
}
