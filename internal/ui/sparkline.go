package ui

import "strings"

var sparklineChars = []rune("  ▂▃▄▅▆▇█")

const sparklineDefaultWidth = 40

// Sparkline renders data as a fixed-height unicode strip. Longer series
// are downsampled to at most width points; a flat series renders as a
// run of the middle character.
func Sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	if width <= 0 {
		width = sparklineDefaultWidth
	}

	step := len(data) / width
	if step < 1 {
		step = 1
	}
	sampled := make([]float64, 0, width)
	for i := 0; i < len(data) && len(sampled) < width; i += step {
		sampled = append(sampled, data[i])
	}

	min, max := sampled[0], sampled[0]
	for _, v := range sampled[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	var sb strings.Builder
	if max == min {
		mid := sparklineChars[len(sparklineChars)/2]
		for range sampled {
			sb.WriteRune(mid)
		}
		return sb.String()
	}

	for _, v := range sampled {
		idx := int((v - min) / (max - min) * float64(len(sparklineChars)-1))
		if idx < 0 {
			idx = 0
		}
		if idx > len(sparklineChars)-1 {
			idx = len(sparklineChars) - 1
		}
		sb.WriteRune(sparklineChars[idx])
	}
	return sb.String()
}
