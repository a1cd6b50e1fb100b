package specification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLikePattern(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"plain text passes through", "postgres tips", "postgres tips"},
		{"percent is literal", "100%", `100\%`},
		{"underscore is literal", "snake_case", `snake\_case`},
		{"backslash is escaped first", `C:\notes`, `C:\\notes`},
		{"combined metacharacters", `50%_off\`, `50\%\_off\\`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeLikePattern(tt.query))
		})
	}
}
