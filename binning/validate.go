package binning

import (
	"fmt"

	"github.com/uyouii/clinical-tokenizer/common"
	"github.com/uyouii/clinical-tokenizer/model"
	"github.com/uyouii/clinical-tokenizer/utils"
)

// ValidateAnchorPreservation reports whether every anchor value equals some
// bin edge within Tolerance. It needs nothing but the bins, so it can be
// re-run against a persisted bin list.
func ValidateAnchorPreservation(bins []model.TokenBin, anchors []float64) bool {
	return len(MissingAnchors(bins, anchors)) == 0
}

// MissingAnchors returns the anchor values that are not a bin edge.
func MissingAnchors(bins []model.TokenBin, anchors []float64) []float64 {
	missing := []float64{}
	for _, anchor := range anchors {
		if !isEdge(bins, anchor) {
			missing = append(missing, anchor)
		}
	}
	return missing
}

func isEdge(bins []model.TokenBin, v float64) bool {
	for i := range bins {
		if utils.NearlyEqual(bins[i].Lower, v, Tolerance) || utils.NearlyEqual(bins[i].Upper, v, Tolerance) {
			return true
		}
	}
	return false
}

// CheckLayout verifies that bins are sorted, exactly contiguous and cover
// dataRange.
func CheckLayout(bins []model.TokenBin, dataRange model.DataRange) error {
	if len(bins) == 0 {
		return common.ErrorNoBins
	}
	for i := 1; i < len(bins); i++ {
		if bins[i].Lower < bins[i-1].Lower {
			return fmt.Errorf("bin %s starts before %s: %w", bins[i].ID, bins[i-1].ID, common.ErrorInvalidValue)
		}
		if bins[i].Lower != bins[i-1].Upper {
			return fmt.Errorf("gap between %s and %s: %w", bins[i-1].ID, bins[i].ID, common.ErrorInvalidValue)
		}
	}
	if bins[0].Lower > dataRange.Min || bins[len(bins)-1].Upper < dataRange.Max {
		return fmt.Errorf("bins [%v, %v] do not cover data range [%v, %v]: %w",
			bins[0].Lower, bins[len(bins)-1].Upper, dataRange.Min, dataRange.Max, common.ErrorInvalidValue)
	}
	return nil
}

// Locate returns the index of the bin holding v, with the last bin closed.
func Locate(bins []model.TokenBin, v float64) (int, bool) {
	for i := range bins {
		if bins[i].Contains(v, i == len(bins)-1) {
			return i, true
		}
	}
	return -1, false
}

// TotalPercentage sums the data percentage of all bins.
func TotalPercentage(bins []model.TokenBin) float64 {
	sum := 0.0
	for _, bin := range bins {
		sum += bin.DataPercentage
	}
	return sum
}
