// Package sidebar projects a vault tree into collapsible navigation state.
//
// Every folder is a Branch addressable by its slash-separated path. Opening a
// branch closes its open siblings at the same level; ancestors and descendants
// are left as they are.
package sidebar

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/opennotesproject/notevault/internal/vault"
)

// ErrUnknownBranch is returned for a path that names no folder.
var ErrUnknownBranch = errors.New("unknown folder")

// Branch is the handle for one folder in the sidebar.
type Branch struct {
	Name     string
	Path     string
	Depth    int
	Parent   string   // path of the parent branch, "" for subjects
	Children []string // child branch paths in display order
	Notes    []vault.Note

	open bool
}

// Sidebar holds the open/closed state of every branch. It is safe for
// concurrent use.
type Sidebar struct {
	mu       sync.RWMutex
	subjects []string
	notes    []vault.Note // notes at the vault root
	branches map[string]*Branch
}

// New builds a sidebar for root. The first subject starts open.
func New(root *vault.Node) *Sidebar {
	s := &Sidebar{branches: make(map[string]*Branch)}
	if root == nil {
		return s
	}
	s.subjects = s.addChildren(root, "", 0)
	s.notes = root.SortedNotes()
	if len(s.subjects) > 0 {
		s.branches[s.subjects[0]].open = true
	}
	return s
}

func (s *Sidebar) addChildren(node *vault.Node, parent string, depth int) []string {
	var paths []string
	for _, name := range node.SortedFolders() {
		p := join(parent, name)
		child := node.Folders[name]
		b := &Branch{
			Name:   name,
			Path:   p,
			Depth:  depth,
			Parent: parent,
			Notes:  child.SortedNotes(),
		}
		s.branches[p] = b
		b.Children = s.addChildren(child, p, depth+1)
		paths = append(paths, p)
	}
	return paths
}

func join(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

// siblings returns the branch paths at the same level as b, including b.
func (s *Sidebar) siblings(b *Branch) []string {
	if b.Parent == "" {
		return s.subjects
	}
	return s.branches[b.Parent].Children
}

// Toggle flips the branch at path and reports whether it is now open.
func (s *Sidebar) Toggle(path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.branches[strings.Trim(path, "/")]
	if !ok {
		return false, ErrUnknownBranch
	}
	if b.open {
		b.open = false
		return false, nil
	}
	s.openLocked(b)
	return true, nil
}

func (s *Sidebar) openLocked(b *Branch) {
	for _, p := range s.siblings(b) {
		if p != b.Path {
			s.branches[p].open = false
		}
	}
	b.open = true
}

// ExpandPath opens every branch along path, which may name a note or a
// folder, and closes every open branch not on it.
func (s *Sidebar) ExpandPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path = strings.Trim(path, "/")
	for _, b := range s.branches {
		if b.open && !onPath(path, b.Path) {
			b.open = false
		}
	}

	segs := strings.Split(path, "/")
	cur := ""
	for _, seg := range segs {
		cur = join(cur, seg)
		if b, ok := s.branches[cur]; ok {
			b.open = true
		}
	}
}

// onPath reports whether branch is path itself or one of its ancestors,
// comparing whole segments so "Math" is not on "Mathematics/x.md".
func onPath(path, branch string) bool {
	return path == branch || strings.HasPrefix(path, branch+"/")
}

// IsOpen reports whether the branch at path is open.
func (s *Sidebar) IsOpen(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.branches[strings.Trim(path, "/")]
	return ok && b.open
}

// OpenPaths returns the open branch paths in sorted order.
func (s *Sidebar) OpenPaths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for p, b := range s.branches {
		if b.open {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// Branch returns a copy of the branch at path.
func (s *Sidebar) Branch(path string) (Branch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.branches[strings.Trim(path, "/")]
	if !ok {
		return Branch{}, false
	}
	return *b, true
}

// Len returns the number of branches.
func (s *Sidebar) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.branches)
}
