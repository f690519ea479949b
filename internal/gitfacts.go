package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

const (
	shortHashLen     = 7
	maxCommitsPerDay = 100
)

var baseBranchCandidates = []string{"main", "master", "develop"}

// RepoFacts is what the assembler consumes from a repository. Every call may
// fail and is treated as a warning source by the assembler, never fatal —
// except failing to open the repository at all.
type RepoFacts interface {
	RootDir() string
	RemoteURL() (string, error)
	CurrentBranch(ctx context.Context) (string, error)
	CommitsInRange(ctx context.Context, since, until time.Time) ([]JournalCommit, error)
	ChangedFiles(ctx context.Context, base, head string) ([]string, error)
	DiffStats(ctx context.Context, base, head string) (*DiffStats, error)
	BranchList(ctx context.Context) ([]BranchStatus, error)
	UncommittedFiles(ctx context.Context) ([]string, error)
}

// GitFacts implements RepoFacts over a plain git repository using go-git, so
// no git binary is needed on the host.
type GitFacts struct {
	repo     *git.Repository
	worktree *git.Worktree
	rootPath string
}

func OpenGitFacts(dir string) (*GitFacts, error) {
	root, gitDir, err := FindGitDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotRepository, dir)
	}

	fs := osfs.New(gitDir)
	storage := filesystem.NewStorage(fs, cache.NewObjectLRUDefault())
	wt := osfs.New(root)

	repo, err := git.Open(storage, wt)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("get worktree: %w", err)
	}

	return &GitFacts{
		repo:     repo,
		worktree: worktree,
		rootPath: root,
	}, nil
}

func (g *GitFacts) RootDir() string {
	return g.rootPath
}

func (g *GitFacts) RemoteURL() (string, error) {
	remote, err := g.repo.Remote(git.DefaultRemoteName)
	if err != nil {
		return "", fmt.Errorf("get remote: %w", err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %s has no URL", git.DefaultRemoteName)
	}
	return urls[0], nil
}

func (g *GitFacts) CurrentBranch(ctx context.Context) (string, error) {
	head, err := g.repo.Head()
	if err != nil {
		return "", fmt.Errorf("get HEAD: %w", err)
	}
	return head.Name().Short(), nil
}

func (g *GitFacts) CommitsInRange(ctx context.Context, since, until time.Time) ([]JournalCommit, error) {
	iter, err := g.repo.Log(&git.LogOptions{Since: &since, Until: &until})
	if err != nil {
		return nil, fmt.Errorf("get log: %w", err)
	}
	defer iter.Close()

	var commits []JournalCommit
	err = iter.ForEach(func(c *object.Commit) error {
		if len(commits) >= maxCommitsPerDay {
			return io.EOF
		}
		commits = append(commits, g.toJournalCommit(c))
		return nil
	})
	if err != nil && err != io.EOF {
		return nil, err
	}

	// log iterates newest first; the journal keeps days oldest first
	sort.Slice(commits, func(i, j int) bool {
		if !commits[i].Date.Equal(commits[j].Date) {
			return commits[i].Date.Before(commits[j].Date)
		}
		return commits[i].Hash < commits[j].Hash
	})
	return commits, nil
}

func (g *GitFacts) ChangedFiles(ctx context.Context, base, head string) ([]string, error) {
	changes, err := g.treeDiff(base, head)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var files []string
	for _, ch := range changes {
		name := ch.To.Name
		if name == "" {
			name = ch.From.Name
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

func (g *GitFacts) DiffStats(ctx context.Context, base, head string) (*DiffStats, error) {
	changes, err := g.treeDiff(base, head)
	if err != nil {
		return nil, err
	}

	patch, err := changes.Patch()
	if err != nil {
		return nil, fmt.Errorf("get patch: %w", err)
	}

	stats := &DiffStats{}
	for _, fs := range patch.Stats() {
		stats.FilesChanged++
		stats.Insertions += fs.Addition
		stats.Deletions += fs.Deletion
	}
	return stats, nil
}

func (g *GitFacts) BranchList(ctx context.Context) ([]BranchStatus, error) {
	baseHash, baseCommit := g.baseBranchHead()

	refs, err := g.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}

	var branches []BranchStatus
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		b := BranchStatus{
			Name:           ref.Name().Short(),
			LastCommitHash: ref.Hash().String(),
		}
		if commit, cerr := g.repo.CommitObject(ref.Hash()); cerr == nil {
			b.LastCommitMessage = firstLine(commit.Message)
			b.LastCommitDate = commit.Author.When
			if baseCommit != nil && ref.Hash() != baseHash {
				if ok, aerr := baseCommit.IsAncestor(commit); aerr == nil && ok {
					b.IsAhead = true
				}
			}
		}
		branches = append(branches, b)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(branches, func(i, j int) bool {
		if !branches[i].LastCommitDate.Equal(branches[j].LastCommitDate) {
			return branches[i].LastCommitDate.After(branches[j].LastCommitDate)
		}
		return branches[i].Name < branches[j].Name
	})
	if len(branches) > MaxActiveBranches {
		branches = branches[:MaxActiveBranches]
	}
	return branches, nil
}

func (g *GitFacts) UncommittedFiles(ctx context.Context) ([]string, error) {
	status, err := g.worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	var files []string
	for path, st := range status {
		if st.Staging == git.Unmodified && st.Worktree == git.Unmodified {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

// helpers

func (g *GitFacts) treeDiff(base, head string) (object.Changes, error) {
	baseTree, err := g.treeAt(base)
	if err != nil {
		return nil, err
	}
	headTree, err := g.treeAt(head)
	if err != nil {
		return nil, err
	}

	changes, err := baseTree.Diff(headTree)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}
	return changes, nil
}

func (g *GitFacts) treeAt(rev string) (*object.Tree, error) {
	resolved, err := g.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", rev, err)
	}
	commit, err := g.repo.CommitObject(*resolved)
	if err != nil {
		return nil, fmt.Errorf("get commit %s: %w", rev, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("get tree %s: %w", rev, err)
	}
	return tree, nil
}

func (g *GitFacts) baseBranchHead() (plumbing.Hash, *object.Commit) {
	for _, name := range baseBranchCandidates {
		ref, err := g.repo.Reference(plumbing.NewBranchReferenceName(name), true)
		if err != nil {
			continue
		}
		commit, err := g.repo.CommitObject(ref.Hash())
		if err != nil {
			continue
		}
		return ref.Hash(), commit
	}
	return plumbing.ZeroHash, nil
}

func (g *GitFacts) toJournalCommit(c *object.Commit) JournalCommit {
	jc := JournalCommit{
		Hash:      c.Hash.String(),
		ShortHash: c.Hash.String()[:shortHashLen],
		Message:   strings.TrimSpace(c.Message),
		Author:    c.Author.Name,
		Date:      c.Author.When,
	}
	if stats, err := c.Stats(); err == nil {
		for _, fs := range stats {
			jc.Files = append(jc.Files, fs.Name)
		}
	}
	return jc
}

// FindGitDir walks up from dir looking for a .git directory and returns the
// repository root and the .git path.
func FindGitDir(dir string) (root, gitDir string, err error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", "", err
	}
	for {
		candidate := filepath.Join(abs, git.GitDirName)
		if fi, serr := os.Stat(candidate); serr == nil && fi.IsDir() {
			return abs, candidate, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", "", fmt.Errorf("no %s directory above %s", git.GitDirName, dir)
		}
		abs = parent
	}
}
