package ecdf

const (
	// values further than ClipZScore standard deviations from the mean are
	// dropped when clipping is enabled
	DefaultClipZScore = 4.0

	DefaultMaxPoints = 10000

	MinRecommendedPoints = 10
)
