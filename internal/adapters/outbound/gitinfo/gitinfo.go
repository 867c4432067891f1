package gitinfo

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/briamv/qacli/internal/domain"
)

// GitInfoAdapter implements domain.GitInfo using go-git.
type GitInfoAdapter struct{}

func New() *GitInfoAdapter {
	return &GitInfoAdapter{}
}

func open(projectPath string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(projectPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening git repo: %w", err)
	}
	return repo, nil
}

func (g *GitInfoAdapter) IsGitRepo(projectPath string) bool {
	_, err := open(projectPath)
	return err == nil
}

// Context returns the current branch and commit.
func (g *GitInfoAdapter) Context(projectPath string) (*domain.GitContext, error) {
	repo, err := open(projectPath)
	if err != nil {
		return nil, err
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("getting HEAD: %w", err)
	}

	branch := "HEAD"
	if head.Name().IsBranch() {
		branch = head.Name().Short()
	}
	return &domain.GitContext{Branch: branch, CommitHash: head.Hash().String()}, nil
}

// ChangedFiles lists files with staged, unstaged or untracked changes,
// relative to projectPath. Deleted files and files outside projectPath are
// left out.
func (g *GitInfoAdapter) ChangedFiles(projectPath string) ([]string, error) {
	repo, err := open(projectPath)
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("reading status: %w", err)
	}

	absProject, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, err
	}
	if resolved, err := filepath.EvalSymlinks(absProject); err == nil {
		absProject = resolved
	}
	root := wt.Filesystem.Root()
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	var files []string
	for file, st := range status {
		if st.Staging == git.Deleted || st.Worktree == git.Deleted {
			continue
		}
		if st.Staging == git.Unmodified && st.Worktree == git.Unmodified {
			continue
		}
		rel, err := filepath.Rel(absProject, filepath.Join(root, filepath.FromSlash(file)))
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		files = append(files, filepath.ToSlash(rel))
	}
	sort.Strings(files)
	return files, nil
}
