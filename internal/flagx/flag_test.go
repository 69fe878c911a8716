package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterArgs(t *testing.T) {
	allowed := []string{"-c", "--config"}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{name: "separate value", args: []string{"-c", "conf.json", "-a", "x"}, want: []string{"-c", "conf.json"}},
		{name: "equals form", args: []string{"--config=alt.json", "-a", "x"}, want: []string{"--config=alt.json"}},
		{name: "dash value kept in equals form", args: []string{"--config=--odd.json"}, want: []string{"--config=--odd.json"}},
		{name: "trailing flag without value", args: []string{"-c"}, want: []string{"-c"}},
		{name: "next flag is not a value", args: []string{"-c", "--config=b.json"}, want: []string{"-c", "--config=b.json"}},
		{name: "positional after unknown flag", args: []string{"-x", "conf.json"}, want: []string{}},
		{name: "nothing allowed", args: []string{"-x", "1", "--y=2"}, want: []string{}},
		{name: "empty", args: nil, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, allowed))
		})
	}
}

func TestSet_AllowedTracksDefinitions(t *testing.T) {
	s := NewSet("t")
	assert.Empty(t, s.Allowed())

	s.String("a", "", "")
	s.Int("t", 0, "")

	assert.Equal(t, []string{"-a", "--a", "-t", "--t"}, s.Allowed())
}

func TestSet_ParseIgnoresForeignFlags(t *testing.T) {
	var url string
	var timeout int

	s := NewSet("t")
	s.StringVar(&url, "a", "default", "")
	s.IntVar(&timeout, "t", 1, "")

	err := s.Parse([]string{"-c", "conf.json", "--a=https://api", "-verbose", "-t", "9", "extra"})
	require.NoError(t, err)

	assert.Equal(t, "https://api", url)
	assert.Equal(t, 9, timeout)
}

func TestSet_ParseReportsBadValue(t *testing.T) {
	s := NewSet("t")
	s.Int("t", 0, "")

	assert.Error(t, s.Parse([]string{"-t", "abc"}))
}

func TestConfigPath(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "short", args: []string{"-c", "/p/short.json"}, want: "/p/short.json"},
		{name: "long", args: []string{"-config", "/p/long.json"}, want: "/p/long.json"},
		{name: "double dash equals among overrides", args: []string{"-a", "http://x", "--config=/p/eq.json", "-t", "3"}, want: "/p/eq.json"},
		{name: "last wins", args: []string{"-c", "/p/1.json", "-config", "/p/2.json"}, want: "/p/2.json"},
		{name: "absent", args: []string{"-a", "http://x"}, want: ""},
		{name: "missing value", args: []string{"-c"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigPath(tt.args))
		})
	}
}
