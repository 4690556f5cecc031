package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, text string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(text), 0o644))
	return p
}

func TestLoadConfig(t *testing.T) {
	cases := map[string]struct {
		text string
		want Config
		err  bool
	}{
		"empty": {
			text: "",
			want: DefaultConfig(),
		},
		"prompts": {
			text: "prompt: '> '\ncontinue_prompt: '. '\n",
			want: Config{Prompt: "> ", ContinuePrompt: ". ", HistoryFile: ".rubble_history"},
		},
		"logging": {
			text: "log_level: debug\nno_color: true\ndebug_loading: true\ndebug_time_format: '%T'\n",
			want: Config{
				Prompt:          "rubble> ",
				ContinuePrompt:  "rubble* ",
				HistoryFile:     ".rubble_history",
				LogLevel:        "debug",
				NoColor:         true,
				DebugLoading:    true,
				DebugTimeFormat: "%T",
			},
		},
		"unknown": {
			text: "colour: blue\n",
			err:  true,
		},
		"malformed": {
			text: "prompt: [\n",
			err:  true,
		},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			p := writeFile(t, "rubble.yaml", c.text)
			got, err := LoadConfig(p, true)
			if c.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, c.want, got)
		})
	}
}

func TestLoadConfigMissing(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nothing.yaml")
	cfg, err := LoadConfig(p, false)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
	_, err = LoadConfig(p, true)
	require.Error(t, err)
	cfg, err = LoadConfig("", true)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestHistoryPath(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "hist")
	require.Equal(t, abs, Config{HistoryFile: abs}.historyPath())
	require.Empty(t, Config{}.historyPath())
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	require.Equal(t, filepath.Join(home, ".h"), Config{HistoryFile: ".h"}.historyPath())
}
