// Package ocicfg reads the OCI CLI config file so a profile can be checked
// before any Object Storage call is made.
package ocicfg

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

const defaultSection = "DEFAULT"

// ErrProfileNotFound is returned by Lookup for an unknown profile name.
var ErrProfileNotFound = errors.New("oci profile not found")

// Profile holds the fields of an OCI CLI profile that request signing needs.
type Profile struct {
	Name    string
	User    string
	Tenancy string
	Region  string
	KeyFile string
}

// LoadProfiles parses an OCI CLI config. Keys set in [DEFAULT] are
// inherited by every other profile unless the profile sets them itself.
func LoadProfiles(path string) (map[string]Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raw := make(map[string]map[string]string)
	var current string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = strings.TrimSpace(line[1 : len(line)-1])
			if _, ok := raw[current]; !ok {
				raw[current] = make(map[string]string)
			}
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok || current == "" {
			continue
		}
		raw[current][strings.TrimSpace(key)] = strings.TrimSpace(val)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	defaults := raw[defaultSection]
	profiles := make(map[string]Profile, len(raw))
	for name, kv := range raw {
		get := func(key string) string {
			if v, ok := kv[key]; ok {
				return v
			}
			return defaults[key]
		}
		profiles[name] = Profile{
			Name:    name,
			User:    get("user"),
			Tenancy: get("tenancy"),
			Region:  get("region"),
			KeyFile: get("key_file"),
		}
	}
	return profiles, nil
}

// Lookup returns the named profile from the config at path and checks it can
// address a region. An empty name means DEFAULT. A non-empty region always
// replaces the profile's own region.
func Lookup(path, name, region string) (Profile, error) {
	if name == "" {
		name = defaultSection
	}
	profiles, err := LoadProfiles(path)
	if err != nil {
		return Profile{}, err
	}
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s in %s", ErrProfileNotFound, name, path)
	}
	if p.Tenancy == "" {
		return Profile{}, fmt.Errorf("profile %s missing tenancy", name)
	}
	if region != "" {
		p.Region = region
	}
	if p.Region == "" {
		return Profile{}, fmt.Errorf("profile %s missing region", name)
	}
	return p, nil
}
