package forge

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xcraft/xcraft/internals/minecraft"
)

func TestInstallerURL(t *testing.T) {
	tests := []struct {
		mc, forge, want string
	}{
		{"1.12.2", "14.23.5.2860", MavenURL + "1.12.2-14.23.5.2860/forge-1.12.2-14.23.5.2860-installer.jar"},
		{"1.7.10", "10.13.4.1614", MavenURL + "1.7.10-10.13.4.1614-1.7.10/forge-1.7.10-10.13.4.1614-1.7.10-installer.jar"},
		{"1.19.3", "44.1.0", MavenURL + "1.19.3-44.1.0/forge-1.19.3-44.1.0-installer.jar"},
	}
	for _, tt := range tests {
		t.Run(tt.mc, func(t *testing.T) {
			if got := InstallerURL(tt.mc, tt.forge); got != tt.want {
				t.Errorf("InstallerURL() = %s, want %s", got, tt.want)
			}
		})
	}
}

func writeInstaller(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "installer.jar")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)
	for name, content := range entries {
		e, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		e.Write([]byte(content))
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()
	return path
}

func TestReadInstaller_Legacy(t *testing.T) {
	path := writeInstaller(t, map[string]string{
		"install_profile.json": `{
			"install": {
				"path": "net.minecraftforge:forge:1.7.10-10.13.4.1614-1.7.10",
				"filePath": "forge-1.7.10-10.13.4.1614-1.7.10-universal.jar"
			},
			"versionInfo": {
				"id": "1.7.10-Forge10.13.4.1614-1.7.10",
				"mainClass": "net.minecraft.launchwrapper.Launch",
				"minecraftArguments": "--username ${auth_player_name} --tweakClass cpw.mods.fml.common.launcher.FMLTweaker",
				"libraries": [{"name": "net.minecraftforge:forge:1.7.10-10.13.4.1614-1.7.10"}]
			}
		}`,
		"forge-1.7.10-10.13.4.1614-1.7.10-universal.jar": "universal",
	})

	installer, err := ReadInstaller(path)
	if err != nil {
		t.Fatal(err)
	}
	if installer.Profile.MainClass != "net.minecraft.launchwrapper.Launch" {
		t.Errorf("unexpected main class %s", installer.Profile.MainClass)
	}

	libs := t.TempDir()
	if err := installer.InstallLibraries(libs); err != nil {
		t.Fatal(err)
	}
	universal := filepath.Join(libs, "net", "minecraftforge", "forge", "1.7.10-10.13.4.1614-1.7.10", "forge-1.7.10-10.13.4.1614-1.7.10.jar")
	if data, err := os.ReadFile(universal); err != nil || string(data) != "universal" {
		t.Errorf("universal jar was not installed: %v", err)
	}
}

func TestReadInstaller_Modern(t *testing.T) {
	path := writeInstaller(t, map[string]string{
		"install_profile.json": `{"spec": 1, "processors": []}`,
		"version.json": `{
			"id": "1.19.3-forge-44.1.0",
			"inheritsFrom": "1.19.3",
			"mainClass": "cpw.mods.bootstraplauncher.BootstrapLauncher",
			"libraries": [{"name": "net.minecraftforge:fmlcore:1.19.3-44.1.0", "downloads": {"artifact": {"url": ""}}}]
		}`,
		"maven/net/minecraftforge/fmlcore/1.19.3-44.1.0/fmlcore-1.19.3-44.1.0.jar": "fmlcore",
		"data/client.lzma": "ignored",
	})

	installer, err := ReadInstaller(path)
	if err != nil {
		t.Fatal(err)
	}
	if installer.Profile.InheritsFrom != "1.19.3" {
		t.Errorf("unexpected profile %+v", installer.Profile)
	}

	libs := t.TempDir()
	if err := installer.InstallLibraries(libs); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(libs, "net", "minecraftforge", "fmlcore", "1.19.3-44.1.0", "fmlcore-1.19.3-44.1.0.jar")); err != nil {
		t.Errorf("maven library was not installed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(libs, "data")); !os.IsNotExist(err) {
		t.Error("only maven entries should be installed")
	}
}

func TestReadInstaller_Errors(t *testing.T) {
	if _, err := ReadInstaller(writeInstaller(t, map[string]string{"README": "hi"})); !errors.Is(err, ErrNoProfile) {
		t.Errorf("expected ErrNoProfile, got %v", err)
	}
	if _, err := ReadInstaller(writeInstaller(t, map[string]string{"version.json": "{"})); !errors.Is(err, minecraft.ErrMalformedDescriptor) {
		t.Errorf("expected ErrMalformedDescriptor, got %v", err)
	}
}
