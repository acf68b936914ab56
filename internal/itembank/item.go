// Package itembank loads and serves the screening instrument's question
// rows: one item per row, grouped into nine contiguous age groups.
package itembank

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ItemType identifies which language sub-domain an item probes.
type ItemType int

const (
	// Receptive items probe language comprehension.
	Receptive ItemType = iota
	// Expressive items probe language production.
	Expressive
	// Both items probe comprehension and production together and credit
	// both sub-scores when passed.
	Both
)

func (t ItemType) String() string {
	switch t {
	case Receptive:
		return "receptive"
	case Expressive:
		return "expressive"
	case Both:
		return "both"
	}
	return "unknown"
}

// Item is one screening question. Immutable after load.
type Item struct {
	// Group is the age-group number, 1-9 ordered by increasing age.
	Group int

	// MinMonths and MaxMonths bound the ages the item's group covers.
	MinMonths int
	MaxMonths int

	// ID is the item identifier, unique within its group.
	ID string

	// Text is the question shown to the caregiver.
	Text string

	// Type is the sub-domain the item credits when passed.
	Type ItemType

	// Hint is the item-bank hint used to generate a simplified
	// restatement after an unclear reply.
	Hint string

	// Criterion is the pass criterion the classifier judges replies
	// against.
	Criterion string
}

// Column positions of the item bank's tabular source.
const (
	colGroup = iota
	colAgeRange
	colID
	colText
	colType
	colHint
	colCriterion
	columnCount
)

var ageRangeDigits = regexp.MustCompile(`\d+`)

// parseRow converts one source row into an Item. Rows with the wrong
// column count, non-numeric fields, or an age range not containing
// exactly two integers are rejected.
func parseRow(row []string) (Item, error) {
	if len(row) < columnCount {
		return Item{}, fmt.Errorf("expected %d columns, got %d", columnCount, len(row))
	}

	group, err := strconv.Atoi(strings.TrimSpace(row[colGroup]))
	if err != nil || group < 1 {
		return Item{}, fmt.Errorf("bad group number %q", row[colGroup])
	}

	bounds := ageRangeDigits.FindAllString(row[colAgeRange], -1)
	if len(bounds) != 2 {
		return Item{}, fmt.Errorf("age range %q does not contain exactly two integers", row[colAgeRange])
	}
	minMonths, _ := strconv.Atoi(bounds[0])
	maxMonths, _ := strconv.Atoi(bounds[1])
	if minMonths > maxMonths {
		return Item{}, fmt.Errorf("age range %q is inverted", row[colAgeRange])
	}

	itemType, err := parseItemType(row[colType])
	if err != nil {
		return Item{}, err
	}

	id := strings.TrimSpace(row[colID])
	if id == "" {
		return Item{}, fmt.Errorf("empty item id")
	}

	return Item{
		Group:     group,
		MinMonths: minMonths,
		MaxMonths: maxMonths,
		ID:        id,
		Text:      strings.TrimSpace(row[colText]),
		Type:      itemType,
		Hint:      strings.TrimSpace(row[colHint]),
		Criterion: strings.TrimSpace(row[colCriterion]),
	}, nil
}

// parseItemType accepts the sheet's Chinese type codes plus single-letter
// fallbacks.
func parseItemType(code string) (ItemType, error) {
	switch strings.TrimSpace(code) {
	case "理解", "R", "r":
		return Receptive, nil
	case "表達", "E", "e":
		return Expressive, nil
	case "綜合", "B", "b":
		return Both, nil
	}
	return 0, fmt.Errorf("unknown item type code %q", code)
}
