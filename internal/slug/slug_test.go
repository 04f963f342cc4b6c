package slug

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Acme Construction", "acme-construction"},
		{"  Acme   Construction  ", "acme-construction"},
		{"Peña Staffing, LLC.", "pena-staffing-llc"},
		{"Smith & Sons", "smith-and-sons"},
		{"Crème Brûlée Crew", "creme-brulee-crew"},
		{"24/7 Labor", "24-7-labor"},
		{"---", "agency"},
		{"", "agency"},
		{"東京", "agency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.name))
		})
	}
}

func TestMakeTruncates(t *testing.T) {
	got := Make(strings.Repeat("ab ", 60))
	assert.LessOrEqual(t, len(got), maxLength)
	assert.False(t, strings.HasSuffix(got, "-"))
}

func TestCandidate(t *testing.T) {
	assert.Equal(t, "acme", Candidate("acme", 1))
	assert.Equal(t, "acme-2", Candidate("acme", 2))
	assert.Equal(t, "acme-3", Candidate("acme", 3))
	assert.Equal(t, "acme", Candidate("acme", 0))
}
