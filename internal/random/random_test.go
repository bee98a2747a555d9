package random

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLetters(t *testing.T) {
	tests := []struct {
		name    string
		length  uint
		wantErr bool
	}{
		{
			name:    "zero length",
			length:  0,
			wantErr: false,
		},
		{
			name:    "32 length",
			length:  32,
			wantErr: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Letters(tt.length)
			if (err != nil) != tt.wantErr {
				t.Errorf("Letters() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if uint(len(got)) != tt.length {
				t.Errorf("Letters() got length = %v, want length %v", len(got), tt.length)
			}
		})
	}
}

func TestSample(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	rng := Seeded(42)

	got := Sample(rng, items, 3)
	require.Len(t, got, 3)
	seen := map[int]bool{}
	for _, v := range got {
		require.Contains(t, items, v)
		require.False(t, seen[v], "duplicate %d", v)
		seen[v] = true
	}
	require.Equal(t, []int{1, 2, 3, 4, 5}, items, "input must not be modified")

	require.Len(t, Sample(rng, items, 10), len(items))
}

func TestSeededIsDeterministic(t *testing.T) {
	a, b := Seeded(7), Seeded(7)
	for range 10 {
		require.Equal(t, a.IntN(1000), b.IntN(1000))
	}
}
