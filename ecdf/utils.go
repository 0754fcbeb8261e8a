package ecdf

import (
	"github.com/uyouii/clinical-tokenizer/model"
	"gonum.org/v1/gonum/stat"
)

func linspace(start, stop float64, num int) []float64 {
	if num < 2 {
		return []float64{start}
	}
	step := (stop - start) / float64(num-1)
	grid := make([]float64, num)
	for i := 0; i < num; i++ {
		grid[i] = start + float64(i)*step
	}
	grid[num-1] = stop
	return grid
}

// Clip keeps the values inside [clip.Lower, clip.Upper].
func Clip(x []float64, clip *model.Clip) []float64 {
	if clip == nil {
		return x
	}
	res := make([]float64, 0, len(x))
	for _, v := range x {
		if v >= clip.Lower && v <= clip.Upper {
			res = append(res, v)
		}
	}
	return res
}

// ZScoreClip returns mean ± zScore·stddev of x.
func ZScoreClip(x []float64, zScore float64) *model.Clip {
	mean, stddev := stat.MeanStdDev(x, nil)
	return &model.Clip{
		Lower: mean - stddev*zScore,
		Upper: mean + stddev*zScore,
	}
}
