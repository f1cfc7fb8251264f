package domain

import (
	"fmt"
	"strings"
)

// SkillMatch credits one candidate skill to one required skill.
type SkillMatch struct {
	Skill    string `json:"skill"`
	Required string `json:"required"`
	Exact    bool   `json:"exact"`
}

// NormalizeSkills lowercases and trims skills, dropping blanks and duplicates.
// Order of first occurrence is kept.
func NormalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		n := strings.ToLower(strings.TrimSpace(s))
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// ScoreSkillMatch returns the candidate skills that match any required skill.
//
// A candidate skill matches a required skill when they are equal or either
// contains the other. Each candidate skill is counted at most once. When it
// matches several required skills it is credited to an exact match if there is
// one, otherwise to the first substring match in required order.
func ScoreSkillMatch(required, candidate []string) []SkillMatch {
	req := NormalizeSkills(required)
	if len(req) == 0 {
		return nil
	}

	var matches []SkillMatch
	for _, skill := range NormalizeSkills(candidate) {
		credited := ""
		exact := false
		for _, r := range req {
			if skill == r {
				credited, exact = r, true
				break
			}
			if credited == "" && (strings.Contains(skill, r) || strings.Contains(r, skill)) {
				credited = r
			}
		}
		if credited != "" {
			matches = append(matches, SkillMatch{Skill: skill, Required: credited, Exact: exact})
		}
	}
	return matches
}

// MatchedSkillNames lists the candidate side of each match.
func MatchedSkillNames(matches []SkillMatch) []string {
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.Skill
	}
	return names
}

// JobMatchMessage renders the notification text for a skill match.
func JobMatchMessage(jobTitle, companyName string, matched []string) string {
	subject := jobTitle
	if companyName != "" {
		subject = fmt.Sprintf("%s at %s", jobTitle, companyName)
	}
	switch len(matched) {
	case 0:
		return subject
	case 1:
		return fmt.Sprintf("%s matches your skill: %s", subject, matched[0])
	case 2:
		return fmt.Sprintf("%s matches your skills: %s and %s", subject, matched[0], matched[1])
	default:
		return fmt.Sprintf("%s matches %d of your skills", subject, len(matched))
	}
}
