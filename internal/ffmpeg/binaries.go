package ffmpeg

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	releaseVersion = "6.1"
	releaseBaseURL = "https://github.com/ffbinaries/ffbinaries-prebuilt/releases/download"

	ffmpegPathEnv  = "SUBTRACK_FFMPEG_PATH"
	ffprobePathEnv = "SUBTRACK_FFPROBE_PATH"
)

// ErrNotFound means neither the environment, PATH nor the install cache
// provide ffmpeg and ffprobe.
var ErrNotFound = errors.New("ffmpeg and ffprobe not found")

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

// Lookup finds existing binaries without downloading anything.
func Lookup() (BinaryPaths, error) {
	paths := BinaryPaths{
		FFmpeg:  os.Getenv(ffmpegPathEnv),
		FFprobe: os.Getenv(ffprobePathEnv),
	}
	if paths.FFmpeg == "" {
		paths.FFmpeg, _ = exec.LookPath("ffmpeg")
	}
	if paths.FFprobe == "" {
		paths.FFprobe, _ = exec.LookPath("ffprobe")
	}
	if paths.FFmpeg != "" && paths.FFprobe != "" {
		return paths, nil
	}

	cached := cachedPaths(InstallDir())
	if binariesExist(cached) {
		return cached, nil
	}
	return BinaryPaths{}, ErrNotFound
}

// Installable reports whether a prebuilt bundle exists for this platform.
func Installable() bool {
	_, err := assetForPlatform(runtime.GOOS, runtime.GOARCH)
	return err == nil
}

// InstallDir is the per-user cache location used by Install.
func InstallDir() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil || cacheDir == "" {
		cacheDir = os.TempDir()
	}
	return filepath.Join(cacheDir, "subtrack", "ffmpeg", releaseVersion, runtime.GOOS, runtime.GOARCH)
}

// Install places ffmpeg and ffprobe in dir, from the embedded bundle when the
// binary was built with one and from the release download otherwise.
func Install(ctx context.Context, dir string) (BinaryPaths, error) {
	paths := cachedPaths(dir)
	if binariesExist(paths) {
		return paths, nil
	}

	assetName, err := assetForPlatform(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return BinaryPaths{}, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return BinaryPaths{}, fmt.Errorf("create ffmpeg cache dir: %w", err)
	}

	embeddedUsed, err := extractEmbedded(assetName, dir)
	if err != nil {
		return BinaryPaths{}, err
	}
	if !embeddedUsed {
		if err := download(ctx, assetName, dir); err != nil {
			return BinaryPaths{}, err
		}
	}

	if !binariesExist(paths) {
		return BinaryPaths{}, errors.New("ffmpeg binaries not found after extraction")
	}
	if runtime.GOOS != "windows" {
		for _, p := range []string{paths.FFmpeg, paths.FFprobe} {
			if err := os.Chmod(p, 0o755); err != nil {
				return BinaryPaths{}, fmt.Errorf("chmod %s: %w", filepath.Base(p), err)
			}
		}
	}
	return paths, nil
}

func cachedPaths(dir string) BinaryPaths {
	suffix := executableSuffix()
	return BinaryPaths{
		FFmpeg:  filepath.Join(dir, "ffmpeg"+suffix),
		FFprobe: filepath.Join(dir, "ffprobe"+suffix),
	}
}

func assetForPlatform(goos, goarch string) (string, error) {
	var platform string
	switch goos + "/" + goarch {
	case "linux/amd64":
		platform = "linux-64"
	case "linux/arm64":
		platform = "linux-arm-64"
	case "darwin/amd64":
		platform = "macos-64"
	case "windows/amd64":
		platform = "win-64"
	default:
		return "", fmt.Errorf("unsupported platform for bundled ffmpeg: %s/%s", goos, goarch)
	}
	return "ffmpeg-" + releaseVersion + "-" + platform + ".zip", nil
}

func download(ctx context.Context, assetName, dir string) error {
	url := fmt.Sprintf("%s/v%s/%s", releaseBaseURL, releaseVersion, assetName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("download ffmpeg bundle: %w", err)
	}

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download ffmpeg bundle: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download ffmpeg bundle: unexpected status %s", resp.Status)
	}
	return extractFromReader(assetName, resp.Body, dir)
}

func extractEmbedded(assetName, dir string) (bool, error) {
	reader, ok, err := openEmbeddedAsset(assetName)
	if err != nil || !ok {
		return ok, err
	}
	defer func() { _ = reader.Close() }()

	return true, extractFromReader(assetName, reader, dir)
}

// zip needs random access, so the stream is spooled to a temp file first
func extractFromReader(assetName string, reader io.Reader, dir string) error {
	tmpFile, err := os.CreateTemp("", "subtrack-ffmpeg-*.zip")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	archivePath := tmpFile.Name()
	defer func() { _ = os.Remove(archivePath) }()

	if _, err := io.Copy(tmpFile, reader); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write archive: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	if err := extractArchive(archivePath, dir); err != nil {
		return fmt.Errorf("extract %s: %w", assetName, err)
	}
	return nil
}

func extractArchive(archivePath, dir string) error {
	zipReader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open ffmpeg archive: %w", err)
	}
	defer func() { _ = zipReader.Close() }()

	dest := cachedPaths(dir)
	found := 0
	for _, file := range zipReader.File {
		var target string
		switch binaryName(file.Name) {
		case "ffmpeg":
			target = dest.FFmpeg
		case "ffprobe":
			target = dest.FFprobe
		default:
			continue
		}
		if err := extractZipFile(file, target); err != nil {
			return err
		}
		found++
	}

	if found < 2 {
		return fmt.Errorf("ffmpeg archive missing required binaries")
	}
	return nil
}

func extractZipFile(file *zip.File, dest string) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("open ffmpeg archive entry: %w", err)
	}
	defer func() { _ = reader.Close() }()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create ffmpeg binary: %w", err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, reader); err != nil {
		return fmt.Errorf("write ffmpeg binary: %w", err)
	}
	return nil
}

// "ffmpeg" or "ffprobe" for archive entries holding those executables
func binaryName(entry string) string {
	name := strings.TrimSuffix(strings.ToLower(filepath.Base(entry)), ".exe")
	if name == "ffmpeg" || name == "ffprobe" {
		return name
	}
	return ""
}

func binariesExist(p BinaryPaths) bool {
	return fileExists(p.FFmpeg) && fileExists(p.FFprobe)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}

func executableSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
