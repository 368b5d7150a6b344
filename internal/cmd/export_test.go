package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/adrianmross/region-select/pkg/config"
)

func TestExportFormats(t *testing.T) {
	tests := []struct {
		name      string
		sel       config.Selection
		args      []string
		want      string
		assertErr string
	}{
		{
			name: "env default",
			sel:  config.Selection{Region: "Lagos", SubRegion: "Eti-Osa"},
			want: "export REGION=Lagos\nexport SUB_REGION=Eti-Osa\n",
		},
		{
			name: "env quotes spaces",
			sel:  config.Selection{Region: "Abia", SubRegion: "Aba North"},
			args: []string{"-f", "env"},
			want: "export REGION=Abia\nexport SUB_REGION='Aba North'\n",
		},
		{
			name: "env region only",
			sel:  config.Selection{Region: "Kano"},
			want: "export REGION=Kano\n",
		},
		{
			name:      "no selection",
			assertErr: "no selection saved",
		},
		{
			name:      "unsupported format",
			sel:       config.Selection{Region: "Kano"},
			args:      []string{"-f", "toml"},
			assertErr: "unsupported format: toml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig(t.TempDir())
			cfg.Selection = tt.sel
			cfgPath := writeConfig(t, cfg)

			cmd := newExportCmd()
			buf := &bytes.Buffer{}
			cmd.SetOut(buf)
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(append(tt.args, "--config", cfgPath))
			err := cmd.Execute()
			if tt.assertErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.assertErr) {
					t.Fatalf("expected error %q, got %v", tt.assertErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Fatalf("want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExportJSON(t *testing.T) {
	cfg := config.DefaultConfig(t.TempDir())
	cfg.Selection = config.Selection{Region: "Lagos", SubRegion: "Ikeja"}
	cfgPath := writeConfig(t, cfg)

	cmd := newExportCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"-f", "json", "--config", cfgPath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	var got config.Selection
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != cfg.Selection {
		t.Fatalf("want %+v, got %+v", cfg.Selection, got)
	}
}
