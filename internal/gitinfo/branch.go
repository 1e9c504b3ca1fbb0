// Package gitinfo reads the current branch of a directory tree for the
// Folder format's root annotation, by parsing .git/HEAD directly rather
// than shelling out to git.
package gitinfo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrNotGitRepo   = errors.New("gitinfo: not a git repository")
	ErrHeadNotFound = errors.New("gitinfo: HEAD file not found")
)

// DetectBranch reads .git/HEAD under projectPath and returns the branch
// name it points to, or "detached" for a detached HEAD.
func DetectBranch(projectPath string) (string, error) {
	gitDir := filepath.Join(projectPath, ".git")
	if _, err := os.Stat(gitDir); os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", ErrNotGitRepo, projectPath)
	}

	headFile := filepath.Join(gitDir, "HEAD")
	content, err := os.ReadFile(headFile)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrHeadNotFound, headFile)
		}
		return "", fmt.Errorf("gitinfo: reading HEAD file: %w", err)
	}

	head := strings.TrimSpace(string(content))
	if head == "" {
		return "detached", nil
	}
	if strings.HasPrefix(head, "ref: refs/heads/") {
		return strings.TrimPrefix(head, "ref: refs/heads/"), nil
	}
	return "detached", nil
}
