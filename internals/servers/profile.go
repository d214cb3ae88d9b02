// Package servers loads the profiles of custom multiplayer servers.
// Registering an account with such a server happens elsewhere, this package only
// reads (and stores) the result.
package servers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml"
)

// ErrProfileNotFound is returned when no profile matches
var ErrProfileNotFound = errors.New("server profile not found")

// DefaultPort is the default minecraft server port
const DefaultPort = 25565

// Credentials of the account registered with the server
type Credentials struct {
	Username string `toml:"username"`
	UUID     string `toml:"uuid"`
	Password string `toml:"password,omitempty"`
}

// Profile is a custom multiplayer server with its own session service
type Profile struct {
	// Name is the file name without extension
	Name              string      `toml:"-"`
	Domain            string      `toml:"domain"`
	Port              int         `toml:"port,omitempty"`
	SessionServerPort int         `toml:"session_server_port"`
	Credentials       Credentials `toml:"credentials"`
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.\-]+`)

// Key identifies the profile in file names
func (p *Profile) Key() string {
	key := p.Domain + "-" + strconv.Itoa(p.SessionServerPort)
	return strings.Trim(unsafeChars.ReplaceAllString(key, "-"), "-")
}

// GamePort returns the port of the game server
func (p *Profile) GamePort() int {
	if p.Port == 0 {
		return DefaultPort
	}
	return p.Port
}

// Validate checks the fields needed to patch and launch
func (p *Profile) Validate() error {
	switch {
	case p.Domain == "":
		return errors.New("server profile has no domain")
	case p.SessionServerPort <= 0 || p.SessionServerPort > 65535:
		return fmt.Errorf("server profile %s has an invalid session server port %d", p.Domain, p.SessionServerPort)
	case p.Credentials.Username == "":
		return fmt.Errorf("server profile %s has no username", p.Domain)
	}
	return nil
}

// Load reads a profile file
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := &Profile{}
	if err := toml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("invalid server profile %s: %w", path, err)
	}
	p.Name = strings.TrimSuffix(filepath.Base(path), ".toml")
	return p, p.Validate()
}

// List reads all profiles in dir. A missing dir has no profiles
func List(dir string) ([]*Profile, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.toml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	profiles := make([]*Profile, 0, len(matches))
	for _, match := range matches {
		p, err := Load(match)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// Find returns the profile for the username on the server with the given domain
func Find(dir string, username string, domain string) (*Profile, error) {
	profiles, err := List(dir)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		if p.Domain == domain && p.Credentials.Username == username {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s@%s", ErrProfileNotFound, username, domain)
}

// Save writes the profile to dir. The file is named after the profile key
// unless the profile already has a name
func Save(dir string, p *Profile) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	if p.Name == "" {
		p.Name = unsafeChars.ReplaceAllString(p.Credentials.Username, "-") + "@" + p.Key()
	}
	data, err := toml.Marshal(p)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", err
	}
	path := filepath.Join(dir, p.Name+".toml")
	// credentials are stored in here
	return path, os.WriteFile(path, data, 0o600)
}
