package console

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/nevconsole/internal/render"
)

// sparklineBlocks are block characters for 8-level vertical resolution (lowest to highest).
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// findMinMax returns the range to plot data against. Data that fits in 0-100
// is treated as a percentage and plotted on the fixed 0-100 range.
func findMinMax(data []float64) (minVal, maxVal float64, isPercentage bool) {
	if len(data) == 0 {
		return 0, 100, true
	}

	minVal, maxVal = data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	isPercentage = maxVal <= 100 && minVal >= 0
	if isPercentage {
		minVal = 0
		maxVal = 100
	}
	return minVal, maxVal, isPercentage
}

func normalizeValue(val, minVal, maxVal float64) float64 {
	if maxVal > minVal {
		return (val - minVal) / (maxVal - minVal)
	}
	return 0.5
}

func clampInt(val, maxVal int) int {
	if val < 0 {
		return 0
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// RenderSparkline renders a single-row sparkline using block characters.
func RenderSparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	minVal, maxVal, _ := findMinMax(data)
	return sparkline(data, width, minVal, maxVal)
}

// RenderScaledSparkline plots data against a fixed ceiling, which keeps
// small fluctuations flat instead of stretching them to full height.
func RenderScaledSparkline(data []float64, width int, ceiling float64) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	maxVal := ceiling
	for _, v := range data {
		if v > maxVal {
			maxVal = v
		}
	}
	return sparkline(data, width, 0, maxVal)
}

// RenderSeveritySparkline colors a sparkline by how its newest sample
// classifies against th.
func RenderSeveritySparkline(data []float64, width int, th render.Threshold) string {
	line := RenderScaledSparkline(data, width, th.Error)
	if line == "" {
		return ""
	}
	return SeverityStyle(th.Classify(data[len(data)-1])).Render(line)
}

// RenderAccentSparkline renders a sparkline in a single color.
func RenderAccentSparkline(data []float64, width int, color lipgloss.Color) string {
	line := RenderSparkline(data, width)
	if line == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(color).Render(line)
}

func sparkline(data []float64, width int, minVal, maxVal float64) string {
	resampled := data
	if len(data) > width {
		resampled = resampleData(data, width)
	}

	var result strings.Builder
	for _, val := range resampled {
		normalized := normalizeValue(val, minVal, maxVal)
		idx := clampInt(int(normalized*float64(len(sparklineBlocks)-1)), len(sparklineBlocks)-1)
		result.WriteRune(sparklineBlocks[idx])
	}
	return result.String()
}

// resampleData compresses data to targetSize buckets, keeping the max of each
// bucket so spikes stay visible.
func resampleData(data []float64, targetSize int) []float64 {
	if len(data) == 0 || targetSize <= 0 {
		return nil
	}
	if len(data) <= targetSize {
		return data
	}

	result := make([]float64, targetSize)
	bucketSize := float64(len(data)) / float64(targetSize)
	for i := 0; i < targetSize; i++ {
		start := int(float64(i) * bucketSize)
		end := int(float64(i+1) * bucketSize)
		if end > len(data) {
			end = len(data)
		}
		if start >= end {
			start = end - 1
		}

		maxVal := data[start]
		for j := start + 1; j < end; j++ {
			if data[j] > maxVal {
				maxVal = data[j]
			}
		}
		result[i] = maxVal
	}
	return result
}
