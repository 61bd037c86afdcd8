// Package vault builds and queries the in-memory folder tree of a notes repository.
package vault

import (
	"sort"
	"strings"
)

// Note is one Markdown document in the tree.
type Note struct {
	Name string `json:"name"` // file name without the .md extension
	Path string `json:"path"` // slash-separated, relative to the vault root
}

// Node is one directory level. Each node is owned by exactly one parent and is
// not mutated once Build returns it.
type Node struct {
	Folders map[string]*Node `json:"folders"`
	Notes   []Note           `json:"notes"`
}

// NewNode returns an empty node.
func NewNode() *Node {
	return &Node{Folders: make(map[string]*Node)}
}

// IsNotePath reports whether name has a Markdown extension.
func IsNotePath(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".md")
}

// TrimExt strips a trailing .md extension in any letter case.
func TrimExt(name string) string {
	if IsNotePath(name) {
		return name[:len(name)-len(".md")]
	}
	return name
}

// SortedFolders returns the child folder names in ordinal order.
func (n *Node) SortedFolders() []string {
	names := make([]string, 0, len(n.Folders))
	for name := range n.Folders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SortedNotes returns a copy of the notes ordered by display name.
func (n *Node) SortedNotes() []Note {
	notes := make([]Note, len(n.Notes))
	copy(notes, n.Notes)
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].Name != notes[j].Name {
			return notes[i].Name < notes[j].Name
		}
		return notes[i].Path < notes[j].Path
	})
	return notes
}

// Walk visits every note depth-first: a node's own notes first, then each
// folder in sorted order. Returning false from fn stops the walk.
func (n *Node) Walk(fn func(Note) bool) {
	n.walk(fn)
}

func (n *Node) walk(fn func(Note) bool) bool {
	if n == nil {
		return true
	}
	for _, note := range n.SortedNotes() {
		if !fn(note) {
			return false
		}
	}
	for _, name := range n.SortedFolders() {
		if !n.Folders[name].walk(fn) {
			return false
		}
	}
	return true
}

// AllNotes returns every note in walk order.
func (n *Node) AllNotes() []Note {
	var out []Note
	n.Walk(func(note Note) bool {
		out = append(out, note)
		return true
	})
	return out
}

// Count returns the number of notes in the subtree.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	total := len(n.Notes)
	for _, child := range n.Folders {
		total += child.Count()
	}
	return total
}

// Folder returns the node at the slash-separated folder path, or nil.
// The empty path is the node itself.
func (n *Node) Folder(path string) *Node {
	cur := n
	for _, seg := range splitPath(path) {
		if cur == nil {
			return nil
		}
		cur = cur.Folders[seg]
	}
	return cur
}

// Find returns the note stored at path.
func (n *Node) Find(path string) (Note, bool) {
	segs := splitPath(path)
	if len(segs) == 0 {
		return Note{}, false
	}
	parent := n.Folder(strings.Join(segs[:len(segs)-1], "/"))
	if parent == nil {
		return Note{}, false
	}
	want := strings.Join(segs, "/")
	for _, note := range parent.Notes {
		if note.Path == want {
			return note, true
		}
	}
	return Note{}, false
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
