package scoring

import "fmt"

// Band is the qualitative developmental level mapped from a composite
// score via the original group's percentile cut-points.
type Band int

const (
	// BandBelow5th is below the 5th percentile.
	BandBelow5th Band = iota
	// Band5thTo25th is between the 5th and 25th percentile.
	Band5thTo25th
	// BandAverage covers the 25th through 75th percentile.
	BandAverage
	// Band75thTo90th is between the 75th and 90th percentile.
	Band75thTo90th
	// BandAbove90th is above the 90th percentile.
	BandAbove90th
)

func (b Band) String() string {
	switch b {
	case BandBelow5th:
		return "低於第5百分位"
	case Band5thTo25th:
		return "第5至25百分位"
	case BandAverage:
		return "一般範圍（第25至75百分位）"
	case Band75thTo90th:
		return "第75至90百分位"
	case BandAbove90th:
		return "高於第90百分位"
	}
	return "未知"
}

// thresholds holds five ascending cut-points per group: the 5th, 25th,
// 75th and 90th percentile composites plus the instrument maximum. The
// lookup key is always the child's original group, no matter how far the
// adaptive walk traveled.
var thresholds = [GroupCount][5]int{
	{1, 2, 4, 6, 53},
	{3, 5, 8, 11, 53},
	{6, 9, 13, 16, 53},
	{10, 13, 18, 22, 53},
	{14, 18, 24, 28, 53},
	{18, 23, 29, 33, 53},
	{23, 28, 34, 38, 53},
	{28, 33, 39, 43, 53},
	{34, 40, 46, 50, 53},
}

// BandFor maps a composite score to a band using the given group's
// cut-points. Scores strictly below the 5th/25th cuts fall into the
// lower bands; scores at a cut belong to the band above it.
func BandFor(group, composite int) (Band, error) {
	if group < 1 || group > GroupCount {
		return 0, fmt.Errorf("group %d out of range", group)
	}
	t := thresholds[group-1]
	switch {
	case composite < t[0]:
		return BandBelow5th, nil
	case composite < t[1]:
		return Band5thTo25th, nil
	case composite <= t[2]:
		return BandAverage, nil
	case composite <= t[3]:
		return Band75thTo90th, nil
	default:
		return BandAbove90th, nil
	}
}

func init() {
	maxScore := MaxComposite()
	for g, t := range thresholds {
		for i := 1; i < len(t); i++ {
			if t[i] <= t[i-1] {
				panic(fmt.Sprintf("group %d cut-points not ascending", g+1))
			}
		}
		if t[4] != maxScore {
			panic(fmt.Sprintf("group %d ceiling cut-point %d != max composite %d", g+1, t[4], maxScore))
		}
	}
}
