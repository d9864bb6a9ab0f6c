package normalize

import (
	"strings"

	"github.com/amishk599/jobradius/internal/model"
)

// GeneralSkill is the sentinel used when no vocabulary keyword matches.
const GeneralSkill = "General"

// SkillVocabulary is scanned in order; matched keywords keep this order.
// Matching is plain substring search, so "java" also matches "javascript".
var SkillVocabulary = []string{
	"javascript", "react", "angular", "vue", "node", "python", "java",
	"c++", "c#", "typescript", "php", "ruby", "swift", "kotlin", "flutter",
	"react native", "aws", "azure", "gcp", "docker", "kubernetes", "sql",
	"mongodb", "nosql", "html", "css", "git", "figma", "sketch", "adobe",
	"photoshop", "illustrator", "xd", "ui", "ux",
}

// ExtractSkills returns the vocabulary keywords found in text, or
// []string{GeneralSkill} when none are.
func ExtractSkills(text string) []string {
	lower := strings.ToLower(text)
	var skills []string
	if lower != "" {
		for _, kw := range SkillVocabulary {
			if strings.Contains(lower, kw) {
				skills = append(skills, kw)
			}
		}
	}
	if len(skills) == 0 {
		return []string{GeneralSkill}
	}
	return skills
}

// InferJobType reads the title for internship and part-time signals.
// contractTime is the provider's own hint (Adzuna "contract_time") and only
// matters when the title says nothing.
func InferJobType(title, contractTime string) model.JobType {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "intern"):
		// also covers "internship"
		return model.Internship
	case strings.Contains(lower, "part-time"), strings.Contains(lower, "part time"):
		return model.PartTime
	}
	if strings.EqualFold(strings.TrimSpace(contractTime), "part_time") {
		return model.PartTime
	}
	return model.FullTime
}

// dedupe keeps the first occurrence of each skill, case-insensitively.
func dedupe(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
