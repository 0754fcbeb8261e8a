package binning

import (
	"fmt"

	"github.com/uyouii/clinical-tokenizer/common"
	"github.com/uyouii/clinical-tokenizer/model"
)

// SubBin is one quantile slice of a zone before labelling.
type SubBin struct {
	Lower          float64
	Upper          float64
	DataPercentage float64
}

// SplitZone partitions a zone into zone.BinCount sub-bins over the values
// observed inside it. Percentages are relative to the whole distribution.
// closeLast marks the final zone of the variable, whose last sub-bin includes
// its upper edge.
func SplitZone(zone model.Zone, dist model.Distribution, closeLast bool) ([]SubBin, error) {
	if dist.IsEmpty() {
		return nil, common.ErrorEmptyDistribution
	}
	return splitZone(zone, newSample(dist.Values()), closeLast)
}

func splitZone(zone model.Zone, s sample, closeLast bool) ([]SubBin, error) {
	if zone.BinCount <= 0 {
		return nil, fmt.Errorf("zone [%v, %v] has %d bins: %w",
			zone.Lower, zone.Upper, zone.BinCount, common.ErrorInvalidBinCount)
	}

	zoneValues := s.between(zone.Lower, zone.Upper)
	if len(zoneValues) == 0 {
		return []SubBin{{Lower: zone.Lower, Upper: zone.Upper, DataPercentage: 0}}, nil
	}

	total := float64(len(s))
	if zone.BinCount == 1 {
		// the whole closed zone, shared edges included
		return []SubBin{{
			Lower:          zone.Lower,
			Upper:          zone.Upper,
			DataPercentage: float64(len(zoneValues)) / total * 100,
		}}, nil
	}

	edges := make([]float64, 0, zone.BinCount+1)
	edges = append(edges, zone.Lower)
	edges = append(edges, quantileCuts(zoneValues, zone.BinCount)...)
	edges = append(edges, zone.Upper)

	res := make([]SubBin, 0, len(edges)-1)
	for i := 0; i < len(edges)-1; i++ {
		lower, upper := edges[i], edges[i+1]
		closed := closeLast && i == len(edges)-2
		res = append(res, SubBin{
			Lower:          lower,
			Upper:          upper,
			DataPercentage: float64(s.count(lower, upper, closed)) / total * 100,
		})
	}
	return res, nil
}
