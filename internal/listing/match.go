package listing

import (
	"strings"

	"github.com/sandeepkv93/contribd/internal/model"
)

func matchesAll(entry Entry, tokens []string) bool {
	for _, token := range tokens {
		if !matches(entry, token) {
			return false
		}
	}
	return true
}

// matches checks one filter token. "is:", "has:" and "not:" test a property
// of the entry. A colon token naming no known property matches everything
// since the user is most likely still typing it.
func matches(entry Entry, token string) bool {
	token = strings.ToLower(token)
	if token == "" {
		return true
	}
	if colon := strings.Index(token, ":"); colon != -1 {
		prefix := token[:colon]
		property := token[colon+1:]
		if !isProperty(property) {
			return true
		}
		switch prefix {
		case "is", "has":
			return hasProperty(entry, property)
		case "not":
			return !hasProperty(entry, property)
		}
	}
	c := entry.Contribution()
	if strings.Contains(strings.ToLower(c.Name), token) {
		return true
	}
	for _, author := range c.Authors {
		if strings.Contains(strings.ToLower(author), token) {
			return true
		}
	}
	if strings.Contains(strings.ToLower(c.Sentence), token) || strings.Contains(strings.ToLower(c.Paragraph), token) {
		return true
	}
	for _, category := range c.Categories {
		if strings.Contains(strings.ToLower(category), token) {
			return true
		}
	}
	return false
}

func isProperty(p string) bool {
	return strings.HasPrefix(p, "updat") || strings.HasPrefix(p, "upgrad") ||
		(strings.HasPrefix(p, "instal") && !strings.HasPrefix(p, "installabl")) ||
		p == "tool" || strings.HasPrefix(p, "lib") || p == "mode"
}

func hasProperty(entry Entry, p string) bool {
	switch {
	case strings.HasPrefix(p, "updat"), strings.HasPrefix(p, "upgrad"):
		return entry.HasUpdate()
	case strings.HasPrefix(p, "instal"):
		return entry.IsInstalled()
	case p == "tool":
		return entry.Contribution().Type == model.TypeTool
	case strings.HasPrefix(p, "lib"):
		return entry.Contribution().Type == model.TypeLibrary
	case p == "mode":
		return entry.Contribution().Type == model.TypeMode
	}
	return false
}
