package holder

import "runtime"

func isWindows() bool { return runtime.GOOS == "windows" }

// normalizeArch maps Go's GOARCH naming onto the machine-arch vocabulary
// §4.4/§4.8 use (platform.machine()'s "x86_64"/"AMD64"/"aarch64" strings).
func normalizeArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	default:
		return runtime.GOARCH
	}
}
