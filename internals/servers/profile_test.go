package servers

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndFind(t *testing.T) {
	dir := t.TempDir()
	p := &Profile{
		Domain:            "play.example.com",
		SessionServerPort: 8080,
		Credentials:       Credentials{Username: "steve", UUID: "069a79f4-44e9-4726-a5be-fca90e38aaf5"},
	}
	path, err := Save(dir, p)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "steve@play.example.com-8080.toml" {
		t.Errorf("unexpected file name %s", path)
	}

	found, err := Find(dir, "steve", "play.example.com")
	if err != nil {
		t.Fatal(err)
	}
	if found.SessionServerPort != 8080 || found.GamePort() != DefaultPort {
		t.Errorf("unexpected profile %+v", found)
	}

	if _, err := Find(dir, "alex", "play.example.com"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"valid", "domain = \"mc.local\"\nport = 25566\nsession_server_port = 443\n[credentials]\nusername = \"steve\"\n", false},
		{"no domain", "session_server_port = 443\n[credentials]\nusername = \"steve\"\n", true},
		{"bad port", "domain = \"mc.local\"\nsession_server_port = 70000\n[credentials]\nusername = \"steve\"\n", true},
		{"invalid toml", "domain = ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "server.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}
			p, err := Load(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (p.Name != "server" || p.GamePort() != 25566) {
				t.Errorf("unexpected profile %+v", p)
			}
		})
	}
}

func TestKey(t *testing.T) {
	p := &Profile{Domain: "my server/../x", SessionServerPort: 80}
	if got := p.Key(); got != "my-server-..-x-80" {
		t.Errorf("Key() = %s", got)
	}
}
