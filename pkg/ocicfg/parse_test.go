package ocicfg

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

const sampleConfig = `
# shared credentials
[DEFAULT]
user=ocid1.user.oc1..user123
tenancy=ocid1.tenancy.oc1..ten123
region=af-johannesburg-1
key_file=~/.oci/key.pem

[DATA]
region = eu-frankfurt-1

[OTHER]
tenancy=ocid1.tenancy.oc1..ten456
`

func TestLoadProfilesInheritsDefault(t *testing.T) {
	path := writeTempConfig(t, sampleConfig)

	profiles, err := LoadProfiles(path)
	if err != nil {
		t.Fatalf("LoadProfiles returned error: %v", err)
	}
	if len(profiles) != 3 {
		t.Fatalf("expected 3 profiles, got %d", len(profiles))
	}

	data := profiles["DATA"]
	if data.Region != "eu-frankfurt-1" {
		t.Fatalf("DATA should keep its own region, got %s", data.Region)
	}
	if data.Tenancy != "ocid1.tenancy.oc1..ten123" || data.KeyFile != "~/.oci/key.pem" {
		t.Fatalf("DATA should inherit DEFAULT keys: %+v", data)
	}

	other := profiles["OTHER"]
	if other.Tenancy != "ocid1.tenancy.oc1..ten456" || other.Region != "af-johannesburg-1" {
		t.Fatalf("OTHER profile mismatch: %+v", other)
	}
}

func TestLookup(t *testing.T) {
	path := writeTempConfig(t, sampleConfig)

	tests := []struct {
		name       string
		profile    string
		region     string
		wantRegion string
		wantErr    error
		errText    string
	}{
		{name: "empty means DEFAULT", wantRegion: "af-johannesburg-1"},
		{name: "named profile", profile: "DATA", wantRegion: "eu-frankfurt-1"},
		{name: "region override", profile: "DATA", region: "uk-london-1", wantRegion: "uk-london-1"},
		{name: "region override replaces DEFAULT region", region: "uk-london-1", wantRegion: "uk-london-1"},
		{name: "unknown profile", profile: "MISSING", wantErr: ErrProfileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Lookup(path, tt.profile, tt.region)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("lookup: %v", err)
			}
			if p.Region != tt.wantRegion {
				t.Fatalf("want region %s, got %s", tt.wantRegion, p.Region)
			}
		})
	}
}

func TestLookupErrors(t *testing.T) {
	missingTenancy := writeTempConfig(t, "[BAD]\nregion=us-ashburn-1\n")
	if _, err := Lookup(missingTenancy, "BAD", ""); err == nil || err.Error() != "profile BAD missing tenancy" {
		t.Fatalf("expected missing tenancy error, got %v", err)
	}

	missingRegion := writeTempConfig(t, "[BAD]\ntenancy=ocid1.tenancy.oc1..ten123\n")
	if _, err := Lookup(missingRegion, "BAD", ""); err == nil || err.Error() != "profile BAD missing region" {
		t.Fatalf("expected missing region error, got %v", err)
	}
	if _, err := Lookup(missingRegion, "BAD", "us-ashburn-1"); err != nil {
		t.Fatalf("region override should satisfy lookup: %v", err)
	}

	if _, err := Lookup(filepath.Join(t.TempDir(), "nope"), "", ""); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
