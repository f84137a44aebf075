package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankOrdering(t *testing.T) {
	// Higher ranks satisfy every lower requirement.
	assert.True(t, RankAdmin.AtLeast(RankEditor))
	assert.True(t, RankAdmin.AtLeast(RankReporter))
	assert.True(t, RankEditor.AtLeast(RankReporter))
	assert.True(t, RankEditor.AtLeast(RankEditor))

	assert.False(t, RankReporter.AtLeast(RankEditor))
	assert.False(t, RankEditor.AtLeast(RankAdmin))
}

func TestRankLabels(t *testing.T) {
	assert.Equal(t, "reporter", RankReporter.Label())
	assert.Equal(t, "editor", RankEditor.Label())
	assert.Equal(t, "admin", RankAdmin.Label())
	assert.Equal(t, "reporter", Rank(99).Label())
}

func TestParseRankClampsOutOfRange(t *testing.T) {
	assert.Equal(t, RankReporter, ParseRank(0))
	assert.Equal(t, RankEditor, ParseRank(1))
	assert.Equal(t, RankAdmin, ParseRank(2))

	// Unknown values may only lose privileges.
	assert.Equal(t, RankReporter, ParseRank(3))
	assert.Equal(t, RankReporter, ParseRank(-1))
	assert.Equal(t, RankReporter, ParseRank(255))
}
