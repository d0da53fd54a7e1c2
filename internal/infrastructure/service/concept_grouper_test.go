package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConceptGrouper_UnknownIDResolvesToItself(t *testing.T) {
	g := NewConceptGrouper()

	assert.Equal(t, "10001", g.Canonical("10001"))
}

func TestConceptGrouper_CanonicalIsSmallestMember(t *testing.T) {
	g := NewConceptGrouper()
	g.AddAliasGroup("30001", "10001", "20001")

	assert.Equal(t, "10001", g.Canonical("30001"))
	assert.Equal(t, "10001", g.Canonical("20001"))
	assert.Equal(t, "10001", g.Canonical("10001"))
}

func TestConceptGrouper_TransitiveUnion(t *testing.T) {
	g := NewConceptGrouper()
	g.AddAliasGroup("10001", "20001")
	g.AddAliasGroup("20001", "30001")

	// Группы склеились через общий элемент.
	assert.Equal(t, "10001", g.Canonical("30001"))
	assert.Equal(t, 1, g.GroupCount())
}

func TestNewConceptGrouperFromSpec(t *testing.T) {
	g := NewConceptGrouperFromSpec("10001=20001=30001,10002=20002")

	assert.Equal(t, "10001", g.Canonical("20001"))
	assert.Equal(t, "10002", g.Canonical("20002"))
	assert.Equal(t, 2, g.GroupCount())
}

func TestNewConceptGrouperFromSpec_SkipsMalformedFragments(t *testing.T) {
	g := NewConceptGrouperFromSpec("10001, ,=,10002=20002")

	// Одиночные и пустые группы отброшены.
	assert.Equal(t, "10001", g.Canonical("10001"))
	assert.Equal(t, "10002", g.Canonical("20002"))
	assert.Equal(t, 1, g.GroupCount())
}

func TestNewConceptGrouperFromSpec_Empty(t *testing.T) {
	g := NewConceptGrouperFromSpec("")

	assert.Equal(t, 0, g.GroupCount())
	assert.Equal(t, "10001", g.Canonical("10001"))
}
