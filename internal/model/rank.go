package model

// Rank is the ordered role of an account: reporter < editor < admin.
// Authorization compares ranks numerically, never by equality, so an
// admin passes every editor gate.
type Rank uint8

const (
	RankReporter Rank = 0
	RankEditor   Rank = 1
	RankAdmin    Rank = 2
)

var rankLabels = map[Rank]string{
	RankReporter: "reporter",
	RankEditor:   "editor",
	RankAdmin:    "admin",
}

// Label returns the rank's display name.
func (r Rank) Label() string {
	if l, ok := rankLabels[r]; ok {
		return l
	}
	return rankLabels[RankReporter]
}

// AtLeast reports whether the rank satisfies a minimum requirement.
func (r Rank) AtLeast(min Rank) bool { return r >= min }

// ParseRank converts a stored or claimed numeric role into a Rank.
// Anything outside the known range collapses to reporter, so a tampered
// or stale value can only lose privileges, never gain them.
func ParseRank(n int) Rank {
	r := Rank(n)
	if _, ok := rankLabels[r]; !ok {
		return RankReporter
	}
	return r
}
