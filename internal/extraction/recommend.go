package extraction

import (
	"fmt"
	"os"
	"strings"
)

// keywordRecommendation maps a lowercase keyword to advice.
type keywordRecommendation struct {
	keyword string
	advice  string
}

var keywordRecommendations = []keywordRecommendation{
	{"email", "Implement automated email processing with AI classification"},
	{"data entry", "Use OCR and data validation for automated data entry"},
	{"report", "Generate reports automatically from data sources"},
	{"approval", "Create automated approval workflows with conditional logic"},
}

var generalRecommendations = []string{
	"Implement API integrations to reduce manual data transfer",
	"Use AI for document processing and data extraction",
	"Create automated notification systems",
	"Build dashboard for monitoring automated processes",
}

// WorkflowAnalyzer produces rule-based automation recommendations from a
// workflow description. It never calls an LLM.
type WorkflowAnalyzer struct{}

// Recommend returns one recommendation per keyword found in content, in
// table order, or the general recommendations when no keyword matches.
func (WorkflowAnalyzer) Recommend(content string) []string {
	lower := strings.ToLower(content)
	var out []string
	for _, kr := range keywordRecommendations {
		if strings.Contains(lower, kr.keyword) {
			out = append(out, kr.advice)
		}
	}
	if len(out) == 0 {
		out = append(out, generalRecommendations...)
	}
	return out
}

// RecommendFile reads path and recommends from its content.
func (a WorkflowAnalyzer) RecommendFile(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}
	return a.Recommend(string(content)), nil
}
