package domain

import (
	"sort"

	"github.com/SscSPs/tally_ledger_store/internal/apperrors"
)

// DefaultRootNames are the parent names treated as the top of a hierarchy
// in addition to the empty string.
var DefaultRootNames = []string{"Primary"}

// UnresolvedParent is a master whose parent name matches no master of the
// parent kind.
type UnresolvedParent struct {
	Kind       MasterKind `json:"kind"`
	GUID       string     `json:"guid"`
	Name       string     `json:"name"`
	Parent     string     `json:"parent"`
	ParentKind MasterKind `json:"parent_kind"`
}

// HierarchyCycle lists the members of one parent cycle in walk order.
type HierarchyCycle struct {
	Kind  MasterKind `json:"kind"`
	Names []string   `json:"names"`
	GUIDs []string   `json:"guids"`
}

// DuplicateName is a name shared by more than one master of a kind.
type DuplicateName struct {
	Kind  MasterKind `json:"kind"`
	Name  string     `json:"name"`
	GUIDs []string   `json:"guids"`
}

// HierarchyReport is the outcome of a hierarchy verification.
type HierarchyReport struct {
	Unresolved []UnresolvedParent `json:"unresolved_parents"`
	Cycles     []HierarchyCycle   `json:"cycles"`
	Duplicates []DuplicateName    `json:"duplicate_names"`
}

// Clean reports whether every parent resolves and no cycle exists.
// Duplicate names are informational.
func (r *HierarchyReport) Clean() bool {
	return r == nil || (len(r.Unresolved) == 0 && len(r.Cycles) == 0)
}

// Err returns a HierarchyError when the report is not clean.
func (r *HierarchyReport) Err() error {
	if r.Clean() {
		return nil
	}
	return &apperrors.HierarchyError{
		UnresolvedParents: len(r.Unresolved),
		Cycles:            len(r.Cycles),
		DuplicateNames:    len(r.Duplicates),
	}
}

// NameIndex resolves master names to guids per kind.
type NameIndex struct {
	names map[MasterKind]map[string][]string
}

// NewNameIndex indexes nodes by (kind, name).
func NewNameIndex(nodes []MasterNode) *NameIndex {
	x := &NameIndex{names: make(map[MasterKind]map[string][]string)}
	for _, n := range nodes {
		byName, ok := x.names[n.Kind]
		if !ok {
			byName = make(map[string][]string)
			x.names[n.Kind] = byName
		}
		byName[n.Name] = append(byName[n.Name], n.GUID)
	}
	for _, byName := range x.names {
		for _, guids := range byName {
			sort.Strings(guids)
		}
	}
	return x
}

// Resolve returns the guid for name. With duplicate names the smallest guid wins.
func (x *NameIndex) Resolve(kind MasterKind, name string) (string, bool) {
	guids := x.names[kind][name]
	if len(guids) == 0 {
		return "", false
	}
	return guids[0], true
}

// Contains reports whether a master of kind is called name.
func (x *NameIndex) Contains(kind MasterKind, name string) bool {
	_, ok := x.Resolve(kind, name)
	return ok
}

// Duplicates lists every name used by more than one master of the same kind.
func (x *NameIndex) Duplicates() []DuplicateName {
	var out []DuplicateName
	for kind, byName := range x.names {
		for name, guids := range byName {
			if len(guids) > 1 {
				out = append(out, DuplicateName{Kind: kind, Name: name, GUIDs: append([]string(nil), guids...)})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// VerifyHierarchy checks that every parent resolves to a master of the parent
// kind (or is a root) and that no self-parented kind contains a cycle.
func VerifyHierarchy(nodes []MasterNode, rootNames []string) *HierarchyReport {
	roots := map[string]struct{}{"": {}}
	for _, r := range rootNames {
		roots[r] = struct{}{}
	}

	sorted := append([]MasterNode(nil), nodes...)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.GUID < b.GUID
	})

	index := NewNameIndex(sorted)
	report := &HierarchyReport{Duplicates: index.Duplicates()}

	byGUID := make(map[string]MasterNode, len(sorted))
	next := make(map[string]string)
	for _, n := range sorted {
		byGUID[n.GUID] = n
		parentKind, ok := n.Kind.ParentKind()
		if !ok {
			continue
		}
		if _, isRoot := roots[n.Parent]; isRoot {
			continue
		}
		parentGUID, found := index.Resolve(parentKind, n.Parent)
		if !found {
			report.Unresolved = append(report.Unresolved, UnresolvedParent{
				Kind: n.Kind, GUID: n.GUID, Name: n.Name, Parent: n.Parent, ParentKind: parentKind,
			})
			continue
		}
		if parentKind == n.Kind {
			next[n.GUID] = parentGUID
		}
	}

	done := make(map[string]bool, len(sorted))
	for _, n := range sorted {
		if done[n.GUID] {
			continue
		}
		onPath := map[string]int{}
		var path []string
		cur := n.GUID
		for cur != "" && !done[cur] {
			if at, seen := onPath[cur]; seen {
				cycle := HierarchyCycle{Kind: n.Kind}
				for _, g := range path[at:] {
					cycle.GUIDs = append(cycle.GUIDs, g)
					cycle.Names = append(cycle.Names, byGUID[g].Name)
				}
				report.Cycles = append(report.Cycles, cycle)
				break
			}
			onPath[cur] = len(path)
			path = append(path, cur)
			cur = next[cur]
		}
		for _, g := range path {
			done[g] = true
		}
	}
	return report
}
