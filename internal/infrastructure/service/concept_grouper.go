package service

import (
	"strings"

	"github.com/HuntedCode/plat-pursuit/pkg/unionfind"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONCEPT GROUPER
// ══════════════════════════════════════════════════════════════════════════════

// ConceptGrouper maps regional releases of the same game (NA/EU/JP
// concept ids) onto one canonical concept id. Ratings submitted against
// any regional release land in the same scope, so community averages
// are not split across regions.
//
// The canonical id of a group is its lexicographically smallest member,
// which keeps cache keys stable across processes regardless of the
// order aliases were registered in.
type ConceptGrouper struct {
	set       *unionfind.DisjointSet
	canonical map[string]string
}

// NewConceptGrouper creates an empty grouper. Unknown concept ids
// resolve to themselves.
func NewConceptGrouper() *ConceptGrouper {
	return &ConceptGrouper{
		set:       unionfind.New(),
		canonical: make(map[string]string),
	}
}

// NewConceptGrouperFromSpec builds a grouper from an alias spec string.
// Groups are comma-separated, members equals-separated:
//
//	"10001=20001=30001,10002=20002"
//
// Malformed fragments (empty members, single-member groups) are skipped.
func NewConceptGrouperFromSpec(spec string) *ConceptGrouper {
	g := NewConceptGrouper()

	for _, group := range strings.Split(spec, ",") {
		members := make([]string, 0, 4)
		for _, m := range strings.Split(group, "=") {
			m = strings.TrimSpace(m)
			if m != "" {
				members = append(members, m)
			}
		}
		if len(members) >= 2 {
			g.AddAliasGroup(members...)
		}
	}

	return g
}

// AddAliasGroup registers the given concept ids as one group.
func (g *ConceptGrouper) AddAliasGroup(conceptIDs ...string) {
	if len(conceptIDs) < 2 {
		return
	}

	first := conceptIDs[0]
	g.set.Add(first)
	for _, id := range conceptIDs[1:] {
		g.set.Union(first, id)
	}

	g.rebuildCanonical()
}

// Canonical returns the canonical concept id for the given id.
// Ids that belong to no group resolve to themselves.
func (g *ConceptGrouper) Canonical(conceptID string) string {
	if id, ok := g.canonical[conceptID]; ok {
		return id
	}
	return conceptID
}

// GroupCount returns the number of distinct alias groups.
func (g *ConceptGrouper) GroupCount() int {
	return g.set.Count()
}

// rebuildCanonical recomputes the id -> smallest-member mapping.
func (g *ConceptGrouper) rebuildCanonical() {
	g.canonical = make(map[string]string, len(g.canonical))
	for _, members := range g.set.Groups() {
		smallest := members[0]
		for _, m := range members[1:] {
			if m < smallest {
				smallest = m
			}
		}
		for _, m := range members {
			g.canonical[m] = smallest
		}
	}
}
