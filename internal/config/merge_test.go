package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
)

func TestWasExplicitlySet(t *testing.T) {
	tests := []struct {
		name     string
		flags    map[string]bool
		flagName string
		want     bool
	}{
		{name: "nil flags map", flags: nil, flagName: "test", want: false},
		{name: "empty flags map", flags: map[string]bool{}, flagName: "test", want: false},
		{name: "flag not set", flags: map[string]bool{"other": true}, flagName: "test", want: false},
		{name: "flag set to true", flags: map[string]bool{"test": true}, flagName: "test", want: true},
		{name: "flag set to false", flags: map[string]bool{"test": false}, flagName: "test", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WasExplicitlySet(tt.flags, tt.flagName))
		})
	}
}

func TestMergeHelpers(t *testing.T) {
	set := map[string]bool{"x": true}

	assert.Equal(t, "cli", MergeString("file", "cli", "x", set))
	assert.Equal(t, "file", MergeString("file", "cli", "y", set))

	assert.Equal(t, 0, MergeInt(30, 0, "x", set), "explicit zero wins")
	assert.Equal(t, 30, MergeInt(30, 0, "y", set))

	assert.False(t, MergeBool(true, false, "x", set))
	assert.Equal(t, 0.9, MergeFloat64(0.85, 0.9, "x", set))
	assert.Equal(t, 0.85, MergeFloat64(0.85, 0.9, "y", nil))

	assert.Equal(t, 2*time.Second, MergeDuration(10*time.Second, 2*time.Second, "x", set))
	assert.Equal(t, 10*time.Second, MergeDuration(10*time.Second, 2*time.Second, "y", set))

	assert.Equal(t, []string{"a"}, MergeStringSlice([]string{"a"}, nil, "x", set), "empty override keeps base")
	assert.Equal(t, []string{"b"}, MergeStringSlice([]string{"a"}, []string{"b"}, "x", set))
}

func TestExplicitFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("long-method-threshold", 30, "")
	fs.Float64("duplicate-threshold", 0.85, "")
	assert.NoError(t, fs.Parse([]string{"--duplicate-threshold=0.9"}))

	flags := ExplicitFlags(fs)

	assert.True(t, WasExplicitlySet(flags, "duplicate-threshold"))
	assert.False(t, WasExplicitlySet(flags, "long-method-threshold"))
	assert.Empty(t, ExplicitFlags(nil))
}
