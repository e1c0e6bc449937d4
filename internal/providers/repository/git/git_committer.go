package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/crmarques/reason/config"
	debugctx "github.com/crmarques/reason/debugctx"
	"github.com/crmarques/reason/faults"
	"github.com/crmarques/reason/internal/providers/shared/fsutil"
	"github.com/crmarques/reason/repository"
)

var _ repository.Committer = (*GitCommitter)(nil)

const (
	commitAuthorName  = "reason"
	commitAuthorEmail = "reason@local"
	defaultMessage    = "reason: update workspace records"
)

// workspaceIgnore keeps the workspace config, which holds the API key, out of
// history.
var workspaceIgnore = strings.Join([]string{
	"config.json",
	"config.yaml",
	"config.yml",
	"*.log",
	"",
}, "\n")

// GitCommitter records workspace changes as git commits in the base directory.
type GitCommitter struct {
	baseDir  string
	autoInit bool
}

func NewGitCommitter(baseDir string, repoConfig config.GitRepository) *GitCommitter {
	return &GitCommitter{
		baseDir:  baseDir,
		autoInit: repoConfig.AutoInit,
	}
}

func (c *GitCommitter) Init(ctx context.Context) error {
	if err := os.MkdirAll(c.baseDir, 0o755); err != nil {
		return internalError("failed to create workspace directory", err)
	}

	_, err := gogit.PlainOpen(c.baseDir)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gogit.ErrRepositoryNotExists) {
		return internalError("failed to open git repository", err)
	}

	if _, err := gogit.PlainInit(c.baseDir, false); err != nil {
		return internalError("failed to initialize git repository", err)
	}
	debugctx.Printf(ctx, "git repository initialized path=%q", c.baseDir)

	ignorePath := filepath.Join(c.baseDir, ".gitignore")
	if _, statErr := os.Stat(ignorePath); errors.Is(statErr, os.ErrNotExist) {
		if err := fsutil.WriteFileAtomic(ignorePath, []byte(workspaceIgnore), 0o644, ".reason-gitignore-*"); err != nil {
			return internalError("failed to write .gitignore", err)
		}
	}
	return nil
}

// Commit stages every change under the base directory and commits it. It
// returns false when the worktree is clean.
func (c *GitCommitter) Commit(ctx context.Context, message string) (bool, error) {
	repo, err := c.openRepository(ctx)
	if err != nil {
		return false, err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return false, internalError("failed to open git worktree", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return false, internalError("failed to inspect git worktree status", err)
	}
	if status.IsClean() {
		return false, nil
	}

	patterns, err := gitignore.ReadPatterns(worktree.Filesystem, nil)
	if err != nil {
		return false, internalError("failed to read git ignore patterns", err)
	}
	worktree.Excludes = append(worktree.Excludes, patterns...)

	if err := worktree.AddGlob("."); err != nil {
		return false, internalError("failed to stage git changes", err)
	}

	commitMessage := strings.TrimSpace(message)
	if commitMessage == "" {
		commitMessage = defaultMessage
	}

	hash, err := worktree.Commit(commitMessage, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  commitAuthorName,
			Email: commitAuthorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return false, internalError("failed to commit git changes", err)
	}

	debugctx.Printf(ctx, "git commit created hash=%s message=%q", hash.String(), commitMessage)
	return true, nil
}

func (c *GitCommitter) openRepository(ctx context.Context) (*gogit.Repository, error) {
	repo, err := gogit.PlainOpen(c.baseDir)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, gogit.ErrRepositoryNotExists) {
		return nil, internalError("failed to open git repository", err)
	}

	if !c.autoInit {
		return nil, notFoundError("workspace git repository is not initialized and repository.git.auto-init is false")
	}

	if initErr := c.Init(ctx); initErr != nil {
		return nil, initErr
	}

	repo, err = gogit.PlainOpen(c.baseDir)
	if err != nil {
		return nil, internalError("failed to open git repository after initialization", err)
	}
	return repo, nil
}

func notFoundError(message string) error {
	return faults.NewTypedError(faults.NotFoundError, message, nil)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
