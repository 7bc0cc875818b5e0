package matching

import "strings"

// NormalizeSkills lowercases and trims each skill and drops empties and
// duplicates, returning a set.
func NormalizeSkills(skills []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		set[s] = struct{}{}
	}
	return set
}

// Overlap counts skills present in both lists, compared case-insensitively
// after trimming. An empty side always overlaps zero.
func Overlap(needed, offered []string) int {
	if len(needed) == 0 || len(offered) == 0 {
		return 0
	}

	neededSet := NormalizeSkills(needed)
	count := 0
	for s := range NormalizeSkills(offered) {
		if _, ok := neededSet[s]; ok {
			count++
		}
	}
	return count
}
