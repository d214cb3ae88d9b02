package pack

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/xcraft/xcraft/internals/downloadmgr"
	"github.com/xcraft/xcraft/internals/instances"
	"github.com/xcraft/xcraft/internals/layout"
	"github.com/xcraft/xcraft/internals/minecraft"
)

func zipBytes(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
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
	return buf.Bytes()
}

func writePack(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "My Pack.zip")
	if err := os.WriteFile(path, zipBytes(t, entries), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestImporter(t *testing.T) (*Importer, layout.Layout) {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/manifest.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"versions": [{"id": "1.12.2", "type": "release", "url": "%s/v/1.12.2.json"}]}`, srv.URL)
	})
	mux.HandleFunc("/v/1.12.2.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{
			"id": "1.12.2",
			"type": "release",
			"mainClass": "net.minecraft.client.main.Main",
			"minecraftArguments": "--username ${auth_player_name}",
			"downloads": {"client": {"url": "%[1]s/files/client.jar", "size": 4}},
			"libraries": [
				{"name": "org.ow2.asm:asm:5.0", "url": "%[1]s/files/"},
				{"name": "com.google.guava:guava:21.0", "url": "%[1]s/files/"}
			]
		}`, srv.URL)
	})
	mux.HandleFunc("/v2/versions/loader/1.12.2/0.14.17/profile/json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{
			"id": "fabric-loader-0.14.17-1.12.2",
			"inheritsFrom": "1.12.2",
			"mainClass": "net.fabricmc.loader.impl.launch.knot.KnotClient",
			"libraries": [
				{"name": "org.ow2.asm:asm:9.4", "url": "%[1]s/files/"},
				{"name": "net.fabricmc:fabric-loader:0.14.17", "url": "%[1]s/files/"}
			]
		}`, srv.URL)
	})
	installer := zipBytes(t, map[string]string{
		"install_profile.json": `{"spec": 1}`,
		"version.json": `{
			"id": "1.12.2-forge-14.23.5.2860",
			"inheritsFrom": "1.12.2",
			"mainClass": "net.minecraft.launchwrapper.Launch",
			"minecraftArguments": "--username ${auth_player_name} --tweakClass net.minecraftforge.fml.common.launcher.FMLTweaker",
			"libraries": [{"name": "net.minecraftforge:forge:1.12.2-14.23.5.2860", "downloads": {"artifact": {"url": ""}}}]
		}`,
		"maven/net/minecraftforge/forge/1.12.2-14.23.5.2860/forge-1.12.2-14.23.5.2860.jar": "forge",
	})
	mux.HandleFunc("/forge/1.12.2-14.23.5.2860/forge-1.12.2-14.23.5.2860-installer.jar", func(w http.ResponseWriter, r *http.Request) {
		w.Write(installer)
	})
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("file"))
	})

	l := layout.New(t.TempDir())
	provisioner := instances.NewProvisioner(l, afero.NewOsFs(), srv.Client(), minecraft.NewPlatform("linux", "amd64"), nil)
	importer := NewImporter(l, srv.Client(), provisioner, nil)
	importer.Catalog.ManifestURL = srv.URL + "/manifest.json"
	importer.Fabric.BaseURL = srv.URL
	importer.ForgeMavenURL = srv.URL + "/forge"
	return importer, l
}

func runImport(t *testing.T, importer *Importer, archive string) (*instances.Instance, error) {
	t.Helper()
	updates := make(chan downloadmgr.Update)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range updates {
		}
	}()
	instance, err := importer.Import(context.Background(), archive, updates)
	close(updates)
	<-done
	return instance, err
}

func identities(libs minecraft.Libraries) []string {
	names := make([]string, 0, len(libs))
	for _, lib := range libs {
		names = append(names, lib.Name)
	}
	return names
}

func TestImport_Fabric(t *testing.T) {
	importer, l := newTestImporter(t)
	archive := writePack(t, map[string]string{
		"My Pack/mmc-pack.json": `{"formatVersion": 1, "components": [
			{"uid": "net.minecraft", "version": "1.12.2", "cachedName": "Minecraft"},
			{"uid": "net.fabricmc.intermediary", "version": "1.12.2"},
			{"uid": "net.fabricmc.fabric-loader", "version": "0.14.17"}
		]}`,
		"My Pack/instance.cfg":            "InstanceType=OneSix\nname=Cool Pack\n",
		"My Pack/.minecraft/options.txt":  "lang:en_us\n",
		"My Pack/.minecraft/mods/mod.jar": "mod",
	})

	instance, err := runImport(t, importer, archive)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(instance.Name, "cool-pack-") || len(instance.Name) != len("cool-pack-")+6 {
		t.Errorf("unexpected instance name %s", instance.Name)
	}
	if _, err := os.Stat(filepath.Join(l.DataDir(instance.Name), "options.txt")); err != nil {
		t.Errorf("game data was not moved: %v", err)
	}

	reopened, err := instances.Open(afero.NewOsFs(), l, instance.Name)
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Manifest.MainClass != "net.fabricmc.loader.impl.launch.knot.KnotClient" {
		t.Errorf("main class was not replaced: %s", reopened.Manifest.MainClass)
	}
	got := strings.Join(identities(reopened.Manifest.Libraries), ",")
	want := "com.google.guava:guava:21.0,org.ow2.asm:asm:9.4,net.fabricmc:fabric-loader:0.14.17"
	if got != want {
		t.Errorf("libraries = %s, want %s", got, want)
	}

	for _, path := range []string{
		l.ClientJarPath(instance.Name),
		l.LibraryPath("org/ow2/asm/asm/9.4/asm-9.4.jar"),
		l.LibraryPath("net/fabricmc/fabric-loader/0.14.17/fabric-loader-0.14.17.jar"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s was not provisioned: %v", path, err)
		}
	}
	if _, err := os.Stat(l.LibraryPath("org/ow2/asm/asm/5.0/asm-5.0.jar")); !os.IsNotExist(err) {
		t.Error("replaced library was downloaded")
	}
}

func TestImport_Forge(t *testing.T) {
	importer, l := newTestImporter(t)
	archive := writePack(t, map[string]string{
		"mmc-pack.json": `{"components": [
			{"uid": "net.minecraftforge", "version": "14.23.5.2860"},
			{"uid": "net.minecraft", "version": "1.12.2"}
		]}`,
		"minecraft/config/forge.cfg": "x",
	})

	instance, err := runImport(t, importer, archive)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(instance.Name, "my-pack-") {
		t.Errorf("instance should be named after the archive, got %s", instance.Name)
	}
	if instance.Manifest.MainClass != "net.minecraft.launchwrapper.Launch" {
		t.Errorf("unexpected main class %s", instance.Manifest.MainClass)
	}
	if !strings.Contains(instance.Manifest.MinecraftArguments, "FMLTweaker") {
		t.Errorf("arguments were not replaced: %s", instance.Manifest.MinecraftArguments)
	}
	forgeJar := l.LibraryPath("net/minecraftforge/forge/1.12.2-14.23.5.2860/forge-1.12.2-14.23.5.2860.jar")
	if data, err := os.ReadFile(forgeJar); err != nil || string(data) != "forge" {
		t.Errorf("forge library was not installed from the installer: %v", err)
	}
	if _, err := os.Stat(filepath.Join(l.DataDir(instance.Name), "config", "forge.cfg")); err != nil {
		t.Errorf("game data was not moved: %v", err)
	}
	if _, err := os.Stat(filepath.Join(l.InstanceDir(instance.Name), ".forge-installer.jar")); !os.IsNotExist(err) {
		t.Error("installer was not removed")
	}
}

func TestImport_Errors(t *testing.T) {
	tests := []struct {
		name    string
		entries map[string]string
		want    error
	}{
		{
			"no base game",
			map[string]string{"mmc-pack.json": `{"components": [{"uid": "net.fabricmc.fabric-loader", "version": "0.14.17"}]}`},
			ErrComponentMissing,
		},
		{"invalid manifest", map[string]string{"mmc-pack.json": `{"components": [`}, ErrPackMalformed},
		{"no manifest", map[string]string{"readme.txt": "hi"}, ErrPackMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			importer, l := newTestImporter(t)
			_, err := runImport(t, importer, writePack(t, tt.entries))
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			entries, _ := os.ReadDir(l.InstancesDir())
			if len(entries) != 0 {
				t.Errorf("failed import left %d entries behind", len(entries))
			}
		})
	}
}

func TestInstanceName(t *testing.T) {
	tests := map[string]string{
		"Cool Pack": "cool-pack-",
		"???":       "pack-",
		"":          "pack-",
	}
	for in, prefix := range tests {
		got := InstanceName(in)
		if !strings.HasPrefix(got, prefix) || len(got) != len(prefix)+6 {
			t.Errorf("InstanceName(%q) = %s, want prefix %s", in, got, prefix)
		}
	}
}
