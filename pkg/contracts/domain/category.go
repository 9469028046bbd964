package domain

// CategoryLabel represents the human-readable test-result category
type CategoryLabel string

const (
	CategoryBarelyPassed CategoryLabel = "Barely Passed"
	CategoryPassed       CategoryLabel = "Passed"
	CategoryFewerWomen   CategoryLabel = "Fewer than two women"
	CategoryNoTalk       CategoryLabel = "Women don't talk to each other"
	CategoryAboutMen     CategoryLabel = "Women only talk about men"
)

// categoryRanks fixes the display order of the five known categories.
// Labels outside the closed set have no rank and sort after these five.
var categoryRanks = map[CategoryLabel]int{
	CategoryBarelyPassed: 0,
	CategoryPassed:       1,
	CategoryFewerWomen:   2,
	CategoryNoTalk:       3,
	CategoryAboutMen:     4,
}

// CategoryOrder returns the five known categories in display order
func CategoryOrder() []CategoryLabel {
	return []CategoryLabel{
		CategoryBarelyPassed,
		CategoryPassed,
		CategoryFewerWomen,
		CategoryNoTalk,
		CategoryAboutMen,
	}
}

// CategoryRank returns the display rank of a label and whether the
// label belongs to the known five.
func CategoryRank(label CategoryLabel) (int, bool) {
	rank, ok := categoryRanks[label]
	return rank, ok
}

// LessCategory orders two labels by display rank. Unknown labels sort
// after the known five and carry no order among themselves; callers use
// a stable sort so unknown labels keep their input order.
func LessCategory(a, b CategoryLabel) bool {
	ra, aKnown := categoryRanks[a]
	rb, bKnown := categoryRanks[b]
	switch {
	case aKnown && bKnown:
		return ra < rb
	case aKnown:
		return true
	default:
		return false
	}
}
