package git

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Status says how git sees a vault file
type Status struct {
	IsRepo  bool
	Tracked bool
	Ignored bool
}

// IsGitRepo checks if dir is inside a git work tree
func IsGitRepo(dir string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = dir
	return cmd.Run() == nil
}

// IsTracked checks if a file is tracked by git
func IsTracked(dir, name string) bool {
	cmd := exec.Command("git", "ls-files", "--", name)
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return false
	}
	return len(strings.TrimSpace(string(output))) > 0
}

// IsIgnored checks if a file is ignored by git (handles all .gitignore files)
func IsIgnored(dir, name string) bool {
	cmd := exec.Command("git", "check-ignore", "-q", "--", name)
	cmd.Dir = dir
	// exit code 0 means ignored
	return cmd.Run() == nil
}

// CheckVault reports how git sees the vault at path. Without git installed
// every file looks like it is outside a repository.
func CheckVault(path string) *Status {
	dir, name := filepath.Dir(path), filepath.Base(path)

	status := &Status{}
	if !IsGitRepo(dir) {
		return status
	}
	status.IsRepo = true
	status.Tracked = IsTracked(dir, name)
	status.Ignored = IsIgnored(dir, name)
	return status
}

// Format renders status for display. It is empty outside a repository.
func (s *Status) Format(path string) string {
	if !s.IsRepo {
		return ""
	}

	var result strings.Builder
	result.WriteString("Git:\n")
	switch {
	case s.Tracked:
		result.WriteString("   warning: vault is tracked by git\n")
		result.WriteString("   old commits keep copies that still open with earlier passwords\n")
	case s.Ignored:
		result.WriteString("   ok: vault is in .gitignore\n")
	default:
		result.WriteString(fmt.Sprintf("   warning: vault not in .gitignore (add %s)\n", filepath.Base(path)))
	}
	return result.String()
}
