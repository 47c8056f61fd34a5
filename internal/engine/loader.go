package engine

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"recut/internal/services"
)

var commandContext = exec.CommandContext

// Loader prepares a Handle. Implementations must clean up anything they
// created when they return an error.
type Loader interface {
	Load(ctx context.Context) (*Handle, error)
}

var (
	requiredEncoders = []string{"libx264", "aac"}
	requiredFilters  = []string{"select", "aselect", "drawtext"}
)

// FFmpegLoader resolves and verifies an ffmpeg binary and creates a private
// workspace under WorkRoot.
type FFmpegLoader struct {
	Binary     string
	WorkRoot   string
	MinFreeMiB int
}

// Load implements Loader.
func (l FFmpegLoader) Load(ctx context.Context) (*Handle, error) {
	binary := strings.TrimSpace(l.Binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	resolved, err := exec.LookPath(binary)
	if err != nil {
		return nil, services.Wrap(services.ErrEngineLoad, "engine", "resolve binary", binary+" not found", err)
	}

	versionOut, err := probe(ctx, resolved, "-hide_banner", "-version")
	if err != nil {
		return nil, services.Wrap(services.ErrEngineLoad, "engine", "version", "", err)
	}
	version := parseVersion(versionOut)
	if version == "" {
		return nil, services.Wrap(services.ErrEngineLoad, "engine", "version", "unrecognized -version output", nil)
	}

	encoders, err := probe(ctx, resolved, "-hide_banner", "-encoders")
	if err != nil {
		return nil, services.Wrap(services.ErrEngineLoad, "engine", "encoders", "", err)
	}
	if missing := missingNames(encoders, requiredEncoders); len(missing) > 0 {
		return nil, services.Wrap(services.ErrEngineLoad, "engine", "encoders", "missing "+strings.Join(missing, ", "), nil)
	}
	filters, err := probe(ctx, resolved, "-hide_banner", "-filters")
	if err != nil {
		return nil, services.Wrap(services.ErrEngineLoad, "engine", "filters", "", err)
	}
	if missing := missingNames(filters, requiredFilters); len(missing) > 0 {
		return nil, services.Wrap(services.ErrEngineLoad, "engine", "filters", "missing "+strings.Join(missing, ", "), nil)
	}

	workDir, err := l.createWorkspace()
	if err != nil {
		return nil, err
	}
	return &Handle{
		Binary:   resolved,
		Version:  version,
		WorkDir:  workDir,
		LoadedAt: time.Now(),
	}, nil
}

func (l FFmpegLoader) createWorkspace() (string, error) {
	root := strings.TrimSpace(l.WorkRoot)
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", services.Wrap(services.ErrEngineLoad, "engine", "workspace", "create work root", err)
	}
	dir, err := os.MkdirTemp(root, "engine-")
	if err != nil {
		return "", services.Wrap(services.ErrEngineLoad, "engine", "workspace", "create workspace", err)
	}
	if err := checkWorkspace(dir, l.MinFreeMiB); err != nil {
		_ = os.RemoveAll(dir)
		return "", err
	}
	return dir, nil
}

func checkWorkspace(dir string, minFreeMiB int) error {
	if err := unix.Access(dir, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return services.Wrap(services.ErrEngineLoad, "engine", "workspace", dir+" is not writable", err)
	}
	if minFreeMiB <= 0 {
		return nil
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return services.Wrap(services.ErrEngineLoad, "engine", "workspace", "statfs", err)
	}
	freeMiB := stat.Bavail * uint64(stat.Bsize) / (1 << 20)
	if freeMiB < uint64(minFreeMiB) {
		return services.Wrap(services.ErrEngineLoad, "engine", "workspace", fmt.Sprintf("%d MiB free, need %d MiB", freeMiB, minFreeMiB), nil)
	}
	return nil
}

func probe(ctx context.Context, binary string, args ...string) ([]byte, error) {
	cmd := commandContext(ctx, binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s %s: %w: %s", filepath.Base(binary), strings.Join(args, " "), err, msg)
		}
		return nil, fmt.Errorf("%s %s: %w", filepath.Base(binary), strings.Join(args, " "), err)
	}
	return out, nil
}

// parseVersion extracts the token after "ffmpeg version" on the first line.
func parseVersion(out []byte) string {
	line, _, _ := strings.Cut(string(out), "\n")
	fields := strings.Fields(line)
	for i := 0; i+1 < len(fields); i++ {
		if fields[i] == "version" {
			return fields[i+1]
		}
	}
	return ""
}

// missingNames reports wanted names that do not appear as the second column
// of an ffmpeg -encoders / -filters listing.
func missingNames(listing []byte, wanted []string) []string {
	have := make(map[string]struct{})
	scanner := bufio.NewScanner(bytes.NewReader(listing))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 2 {
			have[fields[1]] = struct{}{}
		}
	}
	var missing []string
	for _, name := range wanted {
		if _, ok := have[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
