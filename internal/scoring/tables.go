// Package scoring holds the instrument's static tables: per-group item
// counts, cumulative score offsets for groups not administered, and the
// percentile cut-points that map a composite score to a developmental
// band.
package scoring

import "fmt"

// GroupCount is the number of age groups in the instrument.
const GroupCount = 9

// groupSpec describes one age group's fixed composition.
// Receptive/expressive credits count "both"-typed items on each side, so
// their sum can exceed Total.
type groupSpec struct {
	MinMonths  int
	Total      int
	Receptive  int
	Expressive int
}

// groups is indexed by group number - 1. Windows are contiguous over
// 0-36 months; totals for groups 1-8 sum to 44, so a perfect pass of
// group 9 alone scores 44 + 9.
var groups = [GroupCount]groupSpec{
	{MinMonths: 0, Total: 4, Receptive: 3, Expressive: 2},   // 0-4個月
	{MinMonths: 5, Total: 5, Receptive: 3, Expressive: 3},   // 5-8個月
	{MinMonths: 9, Total: 5, Receptive: 3, Expressive: 3},   // 9-12個月
	{MinMonths: 13, Total: 6, Receptive: 3, Expressive: 4},  // 13-16個月
	{MinMonths: 17, Total: 6, Receptive: 3, Expressive: 4},  // 17-20個月
	{MinMonths: 21, Total: 6, Receptive: 3, Expressive: 4},  // 21-24個月
	{MinMonths: 25, Total: 6, Receptive: 3, Expressive: 4},  // 25-28個月
	{MinMonths: 29, Total: 6, Receptive: 3, Expressive: 4},  // 29-32個月
	{MinMonths: 33, Total: 9, Receptive: 5, Expressive: 6},  // 33-36個月
}

// Offsets are the cumulative scores of all groups strictly below a given
// group, credited when those groups are assumed rather than administered.
type Offsets struct {
	Total      int
	Receptive  int
	Expressive int
}

// OffsetBelow returns the cumulative offsets for all groups strictly
// below group. OffsetBelow(1) is zero: there is nothing below the floor.
func OffsetBelow(group int) Offsets {
	var o Offsets
	for g := 1; g < group && g <= GroupCount; g++ {
		o.Total += groups[g-1].Total
		o.Receptive += groups[g-1].Receptive
		o.Expressive += groups[g-1].Expressive
	}
	return o
}

// GroupTotal returns the fixed item count of a group.
func GroupTotal(group int) int {
	if group < 1 || group > GroupCount {
		return 0
	}
	return groups[group-1].Total
}

// MinAgeMonths returns the minimum qualifying age of a group.
func MinAgeMonths(group int) int {
	if group < 1 || group > GroupCount {
		return -1
	}
	return groups[group-1].MinMonths
}

// MaxComposite is the highest attainable composite score: every item in
// every group passed.
func MaxComposite() int {
	o := OffsetBelow(GroupCount)
	return o.Total + groups[GroupCount-1].Total
}

func init() {
	// The offset tables are load-bearing for scoring; fail fast if the
	// composition drifts.
	if OffsetBelow(GroupCount).Total != 44 {
		panic(fmt.Sprintf("cumulative total below group %d is %d, want 44",
			GroupCount, OffsetBelow(GroupCount).Total))
	}
	for g := 2; g <= GroupCount; g++ {
		if groups[g-1].MinMonths <= groups[g-2].MinMonths {
			panic(fmt.Sprintf("group %d minimum age does not follow group %d", g, g-1))
		}
	}
}
