package messages

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRelTime(t *testing.T) {
	now := time.Date(2025, 3, 15, 16, 30, 0, 0, time.UTC)

	tests := []struct {
		lang string
		then time.Time
		want string
	}{
		{"de", now, "gerade eben"},
		{"de", now.Add(-3 * time.Hour), "vor 3 Stunden"},
		{"de", now.Add(-90 * time.Second), "vor 1 Minute"},
		{"de", now.Add(-5 * 24 * time.Hour), "vor 5 Tagen"},
		{"de", now.Add(10 * time.Minute), "in 10 Minuten"},
		{"en", now.Add(-3 * time.Hour), "3 hours ago"},
		{"en", now.Add(2 * 24 * time.Hour), "2 days from now"},
	}

	for _, tt := range tests {
		t.Run(tt.lang+" "+tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, MustLoad(tt.lang).RelTime(tt.then, now))
		})
	}
}

func TestRelTime_LocalesDefineAllSteps(t *testing.T) {
	for _, name := range []string{"de.yaml", "en.yaml"} {
		entries, err := readLocale(name)
		assert.NoError(t, err)
		for _, step := range relTimeSteps {
			assert.NotEmpty(t, entries[step.key], "%s: %s", name, step.key)
		}
	}
}
