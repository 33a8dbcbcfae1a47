package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownExporter_Convert(t *testing.T) {
	e := NewMarkdownExporter()

	tests := []struct {
		name     string
		input    string
		contains []string
		absent   []string
	}{
		{
			name:     "bold and italic",
			input:    `<p><strong>Won</strong> the <em>regional</em> final</p>`,
			contains: []string{"**Won**", "_regional_"},
		},
		{
			name:     "unordered list",
			input:    `<ul><li>first</li><li>second</li></ul>`,
			contains: []string{"- first", "- second"},
		},
		{
			name:     "image",
			input:    `<p>Trophy</p><img src="https://cdn.example.com/t.png" alt="trophy"><br>`,
			contains: []string{"![trophy](https://cdn.example.com/t.png)"},
		},
		{
			name:     "script dropped before conversion",
			input:    `<p>ok</p><script>alert(1)</script>`,
			contains: []string{"ok"},
			absent:   []string{"alert"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := e.Convert(tt.input)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.absent {
				assert.NotContains(t, out, unwanted)
			}
		})
	}
}
