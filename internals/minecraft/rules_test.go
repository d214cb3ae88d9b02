package minecraft

import "testing"

func TestNewPlatform(t *testing.T) {
	tests := []struct {
		goos   string
		goarch string
		want   Platform
		bits   string
	}{
		{"linux", "amd64", Platform{OS: "linux", Arch: "x64"}, "64"},
		{"linux", "386", Platform{OS: "linux", Arch: "x86"}, "32"},
		{"linux", "arm", Platform{OS: "linux", Arch: "arm32"}, "32"},
		{"linux", "arm64", Platform{OS: "linux", Arch: "arm64"}, "64"},
		{"darwin", "amd64", Platform{OS: "osx", Arch: "x64"}, "64"},
		{"darwin", "arm64", Platform{OS: "osx", Arch: "arm64"}, "64"},
		{"windows", "386", Platform{OS: "windows", Arch: "x86"}, "32"},
		{"windows", "x86_64", Platform{OS: "windows", Arch: "x64"}, "64"},
		// already translated names stay as they are
		{"osx", "x86", Platform{OS: "osx", Arch: "x86"}, "32"},
	}
	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			got := NewPlatform(tt.goos, tt.goarch)
			if got != tt.want {
				t.Errorf("NewPlatform() = %+v, want %+v", got, tt.want)
			}
			if got.Bits() != tt.bits {
				t.Errorf("Platform.Bits() = %s, want %s", got.Bits(), tt.bits)
			}
		})
	}
}

func TestRule_AppliesTo(t *testing.T) {
	tests := []struct {
		name   string
		rule   Rule
		goos   string
		goarch string
		want   bool
	}{
		{"allow empty", Rule{Action: "allow"}, "linux", "amd64", true},
		{"allow os", Rule{Action: "allow", OS: OS{Name: "linux"}}, "linux", "amd64", true},
		{"allow other os", Rule{Action: "allow", OS: OS{Name: "windows"}}, "linux", "amd64", false},
		{"allow osx on darwin", Rule{Action: "allow", OS: OS{Name: "osx"}}, "darwin", "arm64", true},
		{"allow x86 on 386", Rule{Action: "allow", OS: OS{Arch: "x86"}}, "windows", "386", true},
		{"allow x86 on amd64", Rule{Action: "allow", OS: OS{Arch: "x86"}}, "windows", "amd64", false},
		{"allow os arch", Rule{Action: "allow", OS: OS{Name: "linux", Arch: "x86"}}, "linux", "386", true},
		{"allow os version", Rule{Action: "allow", OS: OS{Name: "osx", Version: "^10\\.5\\.\\d$"}}, "darwin", "amd64", false},
		{"allow features", Rule{Action: "allow", Features: map[string]bool{"is_demo_user": true}}, "linux", "amd64", false},
		{"disallow empty", Rule{Action: "disallow"}, "linux", "amd64", true},
		{"disallow osx on darwin", Rule{Action: "disallow", OS: OS{Name: "osx"}}, "darwin", "amd64", false},
		{"disallow osx on linux", Rule{Action: "disallow", OS: OS{Name: "osx"}}, "linux", "amd64", true},
		{"disallow x86 on 386", Rule{Action: "disallow", OS: OS{Arch: "x86"}}, "linux", "386", false},
		{"disallow os arch", Rule{Action: "disallow", OS: OS{Name: "linux", Arch: "x86"}}, "linux", "386", false},
		{"unknown action", Rule{Action: "maybe"}, "linux", "amd64", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.AppliesTo(NewPlatform(tt.goos, tt.goarch)); got != tt.want {
				t.Errorf("Rule.AppliesTo() = %v, want %v", got, tt.want)
			}
		})
	}
}
