package planner

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/xcraft/xcraft/internals/assets"
	"github.com/xcraft/xcraft/internals/layout"
	"github.com/xcraft/xcraft/internals/minecraft"
)

const testDescriptor = `{
  "id": "1.12.2",
  "type": "release",
  "mainClass": "net.minecraft.client.main.Main",
  "minecraftArguments": "--username ${auth_player_name}",
  "downloads": {
    "client": {"url": "https://example.com/client.jar", "size": 1000}
  },
  "libraries": [
    {
      "name": "com.mojang:authlib:1.5.25",
      "downloads": {"artifact": {"path": "com/mojang/authlib/1.5.25/authlib-1.5.25.jar", "url": "https://example.com/authlib.jar", "size": 500}}
    }
  ]
}`

const nativeDescriptor = `{
  "id": "1.12.2",
  "mainClass": "net.minecraft.client.main.Main",
  "libraries": [
    {
      "name": "org.lwjgl.lwjgl:lwjgl-platform:2.9.4",
      "natives": {"linux": "natives-linux", "windows": "natives-windows-${arch}"},
      "downloads": {
        "classifiers": {
          "natives-linux": {"path": "org/lwjgl/lwjgl/lwjgl-platform/2.9.4/lwjgl-platform-2.9.4-natives-linux.jar", "url": "https://example.com/linux.jar", "size": 20},
          "natives-windows-64": {"path": "org/lwjgl/lwjgl/lwjgl-platform/2.9.4/lwjgl-platform-2.9.4-natives-windows-64.jar", "url": "https://example.com/win64.jar", "size": 30}
        }
      }
    },
    {
      "name": "ca.weblite:java-objc-bridge:1.0.0",
      "rules": [{"action": "allow", "os": {"name": "osx"}}],
      "downloads": {"artifact": {"url": "https://example.com/objc.jar", "size": 40}}
    }
  ],
  "assetIndex": {"id": "1.12", "url": "https://example.com/1.12.json", "size": 100, "totalSize": 9000}
}`

func newTestPlanner(t *testing.T, p minecraft.Platform) (*Planner, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	l := layout.New("/xcraft")
	return New(fs, l, p, assets.NewResolver(fs, l, nil)), fs
}

func parse(t *testing.T, doc string) *minecraft.LaunchManifest {
	t.Helper()
	desc, err := minecraft.ParseLaunchManifest([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	return desc
}

func TestPlan(t *testing.T) {
	p, _ := newTestPlanner(t, minecraft.NewPlatform("linux", "amd64"))
	plan, err := p.Plan(parse(t, testDescriptor), Options{Instance: "test"})
	if err != nil {
		t.Fatal(err)
	}

	if plan.Total != 1500 {
		t.Errorf("total = %d, want 1500", plan.Total)
	}
	if len(plan.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(plan.Tasks))
	}
	if plan.Tasks[0].Label != LabelClient || plan.Tasks[1].Label != LabelLibraries {
		t.Errorf("unexpected labels %q %q", plan.Tasks[0].Label, plan.Tasks[1].Label)
	}
	if want := p.Layout.LibraryPath("com/mojang/authlib/1.5.25/authlib-1.5.25.jar"); plan.Tasks[1].Target != want {
		t.Errorf("library target = %s, want %s", plan.Tasks[1].Target, want)
	}
}

func TestPlan_DescriptorTask(t *testing.T) {
	p, _ := newTestPlanner(t, minecraft.NewPlatform("linux", "amd64"))
	plan, err := p.Plan(parse(t, testDescriptor), Options{Instance: "test", DescriptorURL: "https://example.com/1.12.2.json"})
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Tasks) != 3 || plan.Tasks[0].Label != LabelDescriptor {
		t.Fatalf("expected the descriptor task first, got %d tasks", len(plan.Tasks))
	}
	if plan.Tasks[0].Target != p.Layout.DescriptorPath("test") {
		t.Errorf("unexpected descriptor target %s", plan.Tasks[0].Target)
	}
}

func TestPlan_FullyCached(t *testing.T) {
	p, fs := newTestPlanner(t, minecraft.NewPlatform("linux", "amd64"))
	desc := parse(t, testDescriptor)

	for _, target := range []string{
		p.Layout.ClientJarPath("test"),
		p.Layout.LibraryPath("com/mojang/authlib/1.5.25/authlib-1.5.25.jar"),
	} {
		if err := afero.WriteFile(fs, target, []byte("cached"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	plan, err := p.Plan(desc, Options{Instance: "test"})
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Tasks) != 0 || plan.Total != 0 {
		t.Errorf("expected an empty plan, got %d tasks with total %d", len(plan.Tasks), plan.Total)
	}
}

func TestPlan_Natives(t *testing.T) {
	tests := []struct {
		name     string
		platform minecraft.Platform
		url      string
		total    int64
	}{
		{"linux", minecraft.NewPlatform("linux", "amd64"), "https://example.com/linux.jar", 20},
		{"windows", minecraft.NewPlatform("windows", "amd64"), "https://example.com/win64.jar", 30},
		{"osx has no natives but the bridge", minecraft.NewPlatform("darwin", "amd64"), "https://example.com/objc.jar", 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, fs := newTestPlanner(t, tt.platform)
			desc := parse(t, nativeDescriptor)
			// skip asset planning in this test
			ref := desc.AssetIndex
			if err := afero.WriteFile(fs, p.Assets.IndexPath(ref), []byte(`{"objects":{}}`), 0o644); err != nil {
				t.Fatal(err)
			}

			plan, err := p.Plan(desc, Options{Instance: "test"})
			if err != nil {
				t.Fatal(err)
			}
			if len(plan.Tasks) != 1 {
				t.Fatalf("expected 1 task, got %d", len(plan.Tasks))
			}
			if plan.Tasks[0].URL != tt.url || plan.Total != tt.total {
				t.Errorf("got %s (total %d), want %s (total %d)", plan.Tasks[0].URL, plan.Total, tt.url, tt.total)
			}
		})
	}
}

func TestPlan_AssetIndex(t *testing.T) {
	p, _ := newTestPlanner(t, minecraft.NewPlatform("darwin", "arm64"))
	desc := parse(t, nativeDescriptor)
	desc.Libraries = nil

	plan, err := p.Plan(desc, Options{Instance: "test"})
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Tasks) != 1 {
		t.Fatalf("expected only the index task, got %d", len(plan.Tasks))
	}
	task := plan.Tasks[0]
	if task.Label != LabelAssetIndex || task.Then == nil {
		t.Errorf("index task should have a follow up, got %+v", task)
	}
	// index size + total size of the objects
	if plan.Total != 9100 {
		t.Errorf("total = %d, want 9100", plan.Total)
	}
}

func TestPlan_CachedAssetIndex(t *testing.T) {
	p, fs := newTestPlanner(t, minecraft.NewPlatform("darwin", "arm64"))
	desc := parse(t, nativeDescriptor)
	desc.Libraries = nil

	index := `{"objects": {"a": {"hash": "92750c5f93c312ba9ab413d546f32190c56d6f1f", "size": 77}}}`
	if err := afero.WriteFile(fs, p.Assets.IndexPath(desc.AssetIndex), []byte(index), 0o644); err != nil {
		t.Fatal(err)
	}

	plan, err := p.Plan(desc, Options{Instance: "test"})
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Tasks) != 1 || plan.Tasks[0].Label != assets.Label {
		t.Fatalf("expected one object task, got %d", len(plan.Tasks))
	}
	if plan.Total != 77 {
		t.Errorf("total = %d, want 77", plan.Total)
	}
}

func TestNativePath(t *testing.T) {
	lib := &minecraft.Library{Name: "org.lwjgl.lwjgl:lwjgl-platform:2.9.4"}
	native := &minecraft.NativeBundle{Artifact: &minecraft.Artifact{}, Classifier: "natives-linux"}

	want := "org/lwjgl/lwjgl/lwjgl-platform/2.9.4/lwjgl-platform-2.9.4-natives-linux.jar"
	if got := NativePath(lib, native); got != want {
		t.Errorf("NativePath() = %s, want %s", got, want)
	}
}

// 1.14 to 1.18 descriptors list the jar and its natives as two entries with the same name
const splitNativesDescriptor = `{
  "id": "1.16.5",
  "mainClass": "net.minecraft.client.main.Main",
  "libraries": [
    {
      "name": "org.lwjgl:lwjgl:3.2.2",
      "downloads": {"artifact": {"path": "org/lwjgl/lwjgl/3.2.2/lwjgl-3.2.2.jar", "url": "https://example.com/lwjgl.jar", "size": 10}}
    },
    {
      "name": "org.lwjgl:lwjgl:3.2.2",
      "natives": {"linux": "natives-linux", "osx": "natives-macos"},
      "downloads": {
        "artifact": {"path": "org/lwjgl/lwjgl/3.2.2/lwjgl-3.2.2.jar", "url": "https://example.com/lwjgl.jar", "size": 10},
        "classifiers": {
          "natives-linux": {"path": "org/lwjgl/lwjgl/3.2.2/lwjgl-3.2.2-natives-linux.jar", "url": "https://example.com/lwjgl-natives-linux.jar", "size": 20},
          "natives-macos": {"path": "org/lwjgl/lwjgl/3.2.2/lwjgl-3.2.2-natives-macos.jar", "url": "https://example.com/lwjgl-natives-macos.jar", "size": 30}
        }
      },
      "extract": {"exclude": ["META-INF/"]}
    }
  ]
}`

func TestPlan_SplitNativeEntries(t *testing.T) {
	p, _ := newTestPlanner(t, minecraft.NewPlatform("linux", "amd64"))
	plan, err := p.Plan(parse(t, splitNativesDescriptor), Options{Instance: "test"})
	if err != nil {
		t.Fatal(err)
	}

	if len(plan.Tasks) != 2 {
		t.Fatalf("expected the jar and the linux natives, got %d tasks", len(plan.Tasks))
	}
	if plan.Total != 30 {
		t.Errorf("total = %d, want 30", plan.Total)
	}

	jar, native := plan.Tasks[0], plan.Tasks[1]
	if jar.Label != LabelLibraries || jar.Target != p.Layout.LibraryPath("org/lwjgl/lwjgl/3.2.2/lwjgl-3.2.2.jar") {
		t.Errorf("unexpected library task %s -> %s", jar.Label, jar.Target)
	}
	if native.Label != LabelNatives || native.URL != "https://example.com/lwjgl-natives-linux.jar" {
		t.Errorf("unexpected native task %s %s", native.Label, native.URL)
	}
	if want := p.Layout.LibraryPath("org/lwjgl/lwjgl/3.2.2/lwjgl-3.2.2-natives-linux.jar"); native.Target != want {
		t.Errorf("native target = %s, want %s", native.Target, want)
	}
}
