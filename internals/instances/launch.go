package instances

import (
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pbnjay/memory"
	"github.com/sirupsen/logrus"
	"github.com/xcraft/xcraft/internals/minecraft"
	"github.com/xcraft/xcraft/internals/patch"
	"github.com/xcraft/xcraft/internals/planner"
	"github.com/xcraft/xcraft/internals/servers"
)

var (
	// ErrNoManifest is returned when an instance without descriptor is launched
	ErrNoManifest = errors.New("instance has no version descriptor")
	// DefaultPlayerName is used when launching without a name
	DefaultPlayerName = "Player"
)

// LaunchOptions are options for launching
type LaunchOptions struct {
	// Java is the java binary, "java" if empty
	Java string
	// RamMiB can be set to the amount of ram in MiB to start Minecraft with
	// 0 determines the amount by available system ram
	RamMiB int
	// PlayerName is used for the default profile
	PlayerName string
	// Server launches against a custom session server and joins it
	Server *servers.Profile
	// AllowHTTP lets the patched library talk plain http to the session server
	AllowHTTP bool
	// Platform defaults to the running one
	Platform *minecraft.Platform

	LauncherName    string
	LauncherVersion string

	Stdout io.Writer
	Stderr io.Writer
	// Environment variables to set
	Env []string
	Log logrus.FieldLogger
}

type credentials struct {
	PlayerName  string
	UUID        string
	AccessToken string
	UserType    string
}

// BuildLaunchCmd returns a go cmd ready to start minecraft.
// The process is not started
func (i *Instance) BuildLaunchCmd(opts *LaunchOptions) (*exec.Cmd, error) {
	launchManifest := i.Manifest
	if launchManifest == nil {
		return nil, ErrNoManifest
	}
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("instance", i.Name)

	platform := minecraft.CurrentPlatform()
	if opts.Platform != nil {
		platform = *opts.Platform
	}

	nativesDir := i.Layout.NativesDir(i.Name)
	if err := os.MkdirAll(nativesDir, os.ModePerm); err != nil {
		return nil, err
	}

	var p *patch.Patch
	if opts.Server != nil {
		if err := opts.Server.Validate(); err != nil {
			return nil, err
		}
		p = patch.ForServer(opts.Server, opts.AllowHTTP)
	}

	// build that spooky -cp arg
	var cpArgs []string
	classifier := planner.NativeClassifier(platform)
	for _, lib := range launchManifest.Libraries.Required(platform) {
		lib := lib
		if native := lib.Native(classifier(&lib)); native != nil {
			// extract native to the natives dir
			src := i.Layout.LibraryPath(planner.NativePath(&lib, native))
			if err := extractNative(src, nativesDir, excludes(&lib)); err != nil {
				return nil, fmt.Errorf("could not extract natives of %s: %w", lib.Name, err)
			}
		}

		if !onClasspath(&lib) {
			continue
		}
		libPath := i.Layout.LibraryPath(lib.Coordinate().Path())
		if p != nil && p.Matches(&lib) {
			patched, err := p.Library(&lib, libPath)
			if err != nil {
				return nil, err
			}
			log.WithField("library", patched).Debug("using patched library")
			libPath = patched
		}
		cpArgs = append(cpArgs, libPath)
	}

	// finally append the minecraft.jar
	mcJar := i.Layout.ClientJarPath(i.Name)
	cpArgs = append(cpArgs, mcJar)
	classPath := strings.Join(cpArgs, cpSeparator())

	creds := defaultCredentials(opts.PlayerName)
	if opts.Server != nil {
		creds = serverCredentials(opts.Server)
	}

	variables := i.launchVariables(opts, creds, classPath, nativesDir)

	jvmArgs := launchManifest.JVMArgs(platform)
	if len(jvmArgs) == 0 {
		// manifests before 1.13 do not set these
		jvmArgs = []string{"-Djava.library.path=${natives_directory}", "-cp", "${classpath}"}
	}

	cmdArgs := []string{
		fmt.Sprintf("-Xmx%dM", maxRamMiB(opts.RamMiB)),
		"-XX:+UnlockExperimentalVMOptions",
		"-XX:+UseG1GC",
		"-XX:G1NewSizePercent=20",
		"-XX:G1ReservePercent=20",
		"-XX:MaxGCPauseMillis=50",
		"-XX:G1HeapRegionSize=32M",
	}
	if opts.RamMiB != 0 {
		cmdArgs = append([]string{fmt.Sprintf("-Xms%dM", opts.RamMiB)}, cmdArgs...)
	}
	// HACK: prepend this so macos does not crash
	if platform.OS == "osx" {
		cmdArgs = append([]string{"-XstartOnFirstThread"}, cmdArgs...)
	}

	cmdArgs = append(cmdArgs, replaceVariables(jvmArgs, variables, log)...)
	cmdArgs = append(cmdArgs, launchManifest.MainClass)
	cmdArgs = append(cmdArgs, replaceVariables(launchManifest.GameArgs(platform), variables, log)...)

	if opts.Server != nil {
		cmdArgs = append(cmdArgs, "--server", opts.Server.Domain, "--port", strconv.Itoa(opts.Server.GamePort()))
	}

	java := opts.Java
	if java == "" {
		java = "java"
	}
	cmd := exec.Command(java, cmdArgs...)

	cmd.Stdout = os.Stdout
	if opts.Stdout != nil {
		cmd.Stdout = opts.Stdout
	}
	cmd.Stderr = os.Stderr
	if opts.Stderr != nil {
		cmd.Stderr = opts.Stderr
	}

	// Set the process directory to our minecraft dir
	cmd.Dir = i.McDir()
	cmd.Env = os.Environ()
	cmd.Env = append(cmd.Env, opts.Env...)
	// some things may rely on PWD
	cmd.Env = append(cmd.Env, "PWD="+i.McDir())

	return cmd, nil
}

// launchVariables returns the values of the ${var} placeholders in launch args
func (i *Instance) launchVariables(opts *LaunchOptions, creds credentials, classPath string, nativesDir string) map[string]string {
	launcherName := opts.LauncherName
	if launcherName == "" {
		launcherName = "xcraft"
	}
	launcherVersion := opts.LauncherVersion
	if launcherVersion == "" {
		launcherVersion = "0.0.0"
	}

	return map[string]string{
		"auth_player_name":  creds.PlayerName,
		"auth_uuid":         creds.UUID,
		"auth_access_token": creds.AccessToken,
		"auth_session":      creds.AccessToken,
		"user_type":         creds.UserType,
		"user_properties":   "{}",
		// the minecraft version
		"version_name": i.Manifest.ID,
		// release / snapshot … etc
		"version_type": i.Manifest.Type,
		// minecraft game dir that contains saves, worlds & mods
		"game_directory": i.McDir(),
		// asset dir contains some shared minecraft resources like sounds & some textures
		"assets_root":       i.Layout.AssetsDir(),
		"game_assets":       i.Layout.AssetsDir(),
		"assets_index_name": i.Manifest.AssetIndexID(),
		"launcher_name":     launcherName,
		"launcher_version":  launcherVersion,
		"classpath":         classPath,
		// used by some modloaders
		"classpath_separator": cpSeparator(),
		"natives_directory":   nativesDir,
		"library_directory":   i.Layout.LibrariesDir(),
	}
}

var variableRegex = regexp.MustCompile(`\$\{[a-zA-Z0-9_]+\}`)

// replaceVariables replaces known variables in the args. Unknown ones are removed
func replaceVariables(args []string, variables map[string]string, log logrus.FieldLogger) []string {
	// build string replacer out of the variables
	replacerArgs := make([]string, 0, len(variables)*2)
	for k, v := range variables {
		replacerArgs = append(replacerArgs, "${"+k+"}", v)
	}
	replacer := strings.NewReplacer(replacerArgs...)

	final := make([]string, 0, len(args))
	for _, template := range args {
		// replace all ${var} with their value
		replaced := replacer.Replace(template)

		// check for any remaining ${var} and replace them with empty string
		if variableRegex.MatchString(replaced) {
			log.WithField("arg", replaced).Warn("found unresolvable variable in launch args")
			replaced = variableRegex.ReplaceAllString(replaced, "")
		}
		final = append(final, replaced)
	}
	return final
}

func defaultCredentials(name string) credentials {
	if name == "" {
		name = DefaultPlayerName
	}
	return credentials{
		PlayerName:  name,
		UUID:        OfflineUUID(name).String(),
		AccessToken: "0",
		UserType:    "legacy",
	}
}

func serverCredentials(profile *servers.Profile) credentials {
	creds := defaultCredentials(profile.Credentials.Username)
	if profile.Credentials.UUID != "" {
		creds.UUID = profile.Credentials.UUID
	}
	return creds
}

// OfflineUUID returns the uuid offline mode servers use for a player name
func OfflineUUID(name string) uuid.UUID {
	hash := md5.Sum([]byte("OfflinePlayer:" + name))
	// version 3 (name based md5)
	hash[6] = (hash[6] & 0x0f) | 0x30
	hash[8] = (hash[8] & 0x3f) | 0x80
	id, _ := uuid.FromBytes(hash[:])
	return id
}

// onClasspath reports if the library jar itself is used. Classifier only libraries
// (natives) are not
func onClasspath(lib *minecraft.Library) bool {
	if lib.Downloads != nil && lib.Downloads.Artifact != nil {
		return true
	}
	return lib.Artifact() != nil
}

func excludes(lib *minecraft.Library) []string {
	if lib.Extract == nil || len(lib.Extract.Exclude) == 0 {
		return []string{"META-INF/"}
	}
	return lib.Extract.Exclude
}

func maxRamMiB(configured int) int {
	if configured != 0 {
		return configured
	}
	sysMemMiB := float64(memory.TotalMemory()) / 1024 / 1024
	if sysMemMiB == 0 {
		return 2048
	}

	// 1GiB for base Minecraft
	maxRamMiB := 1024.0
	// we take 1/4 of the system memory if that is more
	maxRamMiB = math.Max(maxRamMiB, sysMemMiB/4)
	// but not more than 85% of the memory
	return int(math.Min(maxRamMiB, sysMemMiB*0.85))
}

func cpSeparator() string {
	if runtime.GOOS == "windows" {
		return ";"
	}
	return ":"
}
