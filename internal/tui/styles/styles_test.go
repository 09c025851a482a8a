package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "", Truncate("anything", 0))
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "a long...", Truncate("a long description", 9))
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "café...", Truncate("café au lait", 7))
}

func TestSwatch(t *testing.T) {
	assert.Equal(t, lipgloss.Width(SwatchChar), lipgloss.Width(Swatch("#A7A2A1")))
	assert.Equal(t, "  ", Swatch(""))
	assert.Equal(t, "  ", Swatch("red"))
}

func TestRenderListRowFillsWidth(t *testing.T) {
	row := RenderListRow([]RowPart{{Text: "hello"}, {Text: " world"}}, true, 30)
	assert.Equal(t, 30, lipgloss.Width(row))
}
