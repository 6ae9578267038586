package ai

import "strings"

// commonTags raise confidence for well-covered technical topics.
var commonTags = []string{"javascript", "python", "react", "node.js", "html", "css"}

// EstimateConfidence scores a generated answer in [0, 1]. Deterministic in
// the final text and the question tags: base 0.5, +0.1 for length over 200,
// +0.1 more over 500, +0.1 for a code marker, +0.1 for a common tag.
func EstimateConfidence(text string, tags []string) float64 {
	confidence := 0.5

	if len(text) > 200 {
		confidence += 0.1
	}
	if len(text) > 500 {
		confidence += 0.1
	}

	if strings.Contains(text, "```") || strings.Contains(text, "`") {
		confidence += 0.1
	}

	if hasCommonTag(tags) {
		confidence += 0.1
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

func hasCommonTag(tags []string) bool {
	for _, tag := range tags {
		lower := strings.ToLower(tag)
		for _, common := range commonTags {
			if lower == common {
				return true
			}
		}
	}
	return false
}
