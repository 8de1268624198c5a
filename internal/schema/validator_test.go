package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		piece map[string]any
		want  []string
	}{
		{
			name:  "valid article",
			piece: map[string]any{"@type": "Article", "@id": "https://site.test/a/#article", "headline": "Hi"},
		},
		{
			name:  "article without headline",
			piece: map[string]any{"@type": "Article", "@id": "https://site.test/a/#article"},
			want:  []string{"headline"},
		},
		{
			name:  "event missing start date",
			piece: map[string]any{"@type": "Event", "name": "Launch"},
			want:  []string{"startDate"},
		},
		{
			name:  "relative id and url",
			piece: map[string]any{"@type": "WebPage", "@id": "#webpage", "url": "/about"},
			want:  []string{"@id", "url"},
		},
		{
			name:  "unknown type",
			piece: map[string]any{"@type": "Thing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := Validate([]map[string]any{tt.piece})
			require.Len(t, warnings, len(tt.want))
			for i, prop := range tt.want {
				assert.Equal(t, prop, warnings[i].Property)
			}
		})
	}
}
