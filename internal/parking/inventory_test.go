package parking

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadInventoryTOML(t *testing.T) {
	path := writeFile(t, "lot.toml", `
[[slot]]
id = 10
class = "small"

[[slot]]
id = 11
class = "Large"
`)

	specs, err := LoadInventory(path)
	require.NoError(t, err)
	assert.Equal(t, []SlotSpec{
		{ID: 10, Class: SlotSmall},
		{ID: 11, Class: SlotLarge},
	}, specs)
}

func TestLoadInventoryYAML(t *testing.T) {
	path := writeFile(t, "lot.yaml", `
slots:
  - id: 1
    class: medium
  - id: 2
    class: medium
`)

	specs, err := LoadInventory(path)
	require.NoError(t, err)
	assert.Equal(t, []SlotSpec{
		{ID: 1, Class: SlotMedium},
		{ID: 2, Class: SlotMedium},
	}, specs)
}

func TestLoadInventoryErrors(t *testing.T) {
	_, err := LoadInventory(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadInventory(writeFile(t, "lot.json", `{}`))
	assert.ErrorContains(t, err, "unsupported format")

	_, err = LoadInventory(writeFile(t, "empty.toml", ``))
	assert.ErrorIs(t, err, ErrEmptyInventory)

	_, err = LoadInventory(writeFile(t, "bad.yaml", "slots:\n  - id: 1\n    class: huge\n"))
	assert.ErrorIs(t, err, ErrUnknownSlotClass)

	_, err = LoadInventory(writeFile(t, "broken.toml", "[[slot]\nid = "))
	assert.Error(t, err)
}

func TestUniformInventory(t *testing.T) {
	specs := UniformInventory(2, 1, 1)
	assert.Equal(t, []SlotSpec{
		{ID: 1, Class: SlotSmall},
		{ID: 2, Class: SlotSmall},
		{ID: 3, Class: SlotMedium},
		{ID: 4, Class: SlotLarge},
	}, specs)

	assert.Empty(t, UniformInventory(0, 0, 0))
	assert.Len(t, UniformInventory(-1, 2, 0), 2)
}
