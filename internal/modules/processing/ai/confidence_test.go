package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateConfidenceBase(t *testing.T) {
	assert.InDelta(t, 0.5, EstimateConfidence("short answer", nil), 1e-9)
}

func TestEstimateConfidenceLength(t *testing.T) {
	medium := strings.Repeat("a", 201)
	long := strings.Repeat("a", 501)

	assert.InDelta(t, 0.6, EstimateConfidence(medium, nil), 1e-9)
	assert.InDelta(t, 0.7, EstimateConfidence(long, nil), 1e-9)
}

func TestEstimateConfidenceCodeMarker(t *testing.T) {
	assert.InDelta(t, 0.6, EstimateConfidence("use `fmt.Println`", nil), 1e-9)
	assert.InDelta(t, 0.6, EstimateConfidence("```go\nfmt.Println()\n```", nil), 1e-9)
}

func TestEstimateConfidenceCommonTag(t *testing.T) {
	assert.InDelta(t, 0.6, EstimateConfidence("short", []string{"JavaScript"}), 1e-9)
	assert.InDelta(t, 0.6, EstimateConfidence("short", []string{"node.js"}), 1e-9)
	assert.InDelta(t, 0.5, EstimateConfidence("short", []string{"golang"}), 1e-9)
}

func TestEstimateConfidenceCap(t *testing.T) {
	text := strings.Repeat("x", 600) + " ```code```"
	got := EstimateConfidence(text, []string{"python"})
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestEstimateConfidenceDeterministic(t *testing.T) {
	text := strings.Repeat("y", 300) + " `code`"
	tags := []string{"react"}
	first := EstimateConfidence(text, tags)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, EstimateConfidence(text, tags))
	}
}

func TestEstimateConfidenceMonotonicInLength(t *testing.T) {
	short := EstimateConfidence(strings.Repeat("a", 100), nil)
	medium := EstimateConfidence(strings.Repeat("a", 300), nil)
	long := EstimateConfidence(strings.Repeat("a", 700), nil)

	assert.LessOrEqual(t, short, medium)
	assert.LessOrEqual(t, medium, long)
}
