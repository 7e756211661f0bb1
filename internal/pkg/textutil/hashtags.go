package textutil

import (
	"regexp"
	"sort"
	"strings"
)

// hashtagRegex matches a # followed by one or more word characters.
var hashtagRegex = regexp.MustCompile(`#(\w+)`)

// ExtractHashtags parses hashtag tokens from message content.
// Tags are returned without the #, lowercased, deduplicated, and sorted
// for deterministic output. Text with no tags yields an empty slice.
func ExtractHashtags(text string) []string {
	matches := hashtagRegex.FindAllStringSubmatch(text, -1)

	tagMap := make(map[string]bool)
	for _, match := range matches {
		if len(match) > 1 {
			tagMap[strings.ToLower(match[1])] = true
		}
	}

	tags := make([]string, 0, len(tagMap))
	for tag := range tagMap {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	return tags
}
