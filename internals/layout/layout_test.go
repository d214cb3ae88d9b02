package layout

import (
	"path/filepath"
	"testing"
)

func TestLayout(t *testing.T) {
	l := New(filepath.FromSlash("/srv/xcraft"))
	tests := []struct {
		got  string
		want string
	}{
		{l.DescriptorPath("vanilla"), "/srv/xcraft/instances/vanilla/client.json"},
		{l.ClientJarPath("vanilla"), "/srv/xcraft/instances/vanilla/client.jar"},
		{l.DataDir("vanilla"), "/srv/xcraft/instances/vanilla/data"},
		{l.NativesDir("vanilla"), "/srv/xcraft/instances/vanilla/natives"},
		{l.LibraryPath("com/mojang/authlib/1.5.25/authlib-1.5.25.jar"), "/srv/xcraft/libraries/com/mojang/authlib/1.5.25/authlib-1.5.25.jar"},
		{l.AssetPath("objects/ab/abcdef"), "/srv/xcraft/assets/objects/ab/abcdef"},
		{l.ServersDir(), "/srv/xcraft/servers"},
	}
	for _, tt := range tests {
		if tt.got != filepath.FromSlash(tt.want) {
			t.Errorf("got %s, want %s", tt.got, tt.want)
		}
	}
	if len(l.Dirs()) != 5 {
		t.Errorf("unexpected dirs %v", l.Dirs())
	}
}
