package assets

import (
	"strings"

	"github.com/goccy/go-yaml"
)

// frontMatterDelimiter opens and closes a structured header block.
const frontMatterDelimiter = "---"

// frontMatter is the structured header carried at the top of an asset file
// between "---" delimiter lines.
type frontMatter struct {
	Description string   `yaml:"description"`
	Tags        tagList  `yaml:"tags"`
	ApplyTo     string   `yaml:"applyTo"`
	Mode        string   `yaml:"mode"`
	Tools       []string `yaml:"tools"`
}

// tagList accepts both a YAML sequence and a comma-separated scalar, since
// upstream asset headers use both spellings.
type tagList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *tagList) UnmarshalYAML(unmarshal func(any) error) error {
	var seq []string
	if err := unmarshal(&seq); err == nil {
		*t = seq
		return nil
	}
	var scalar string
	if err := unmarshal(&scalar); err != nil {
		return err
	}
	var tags []string
	for _, tag := range strings.Split(scalar, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	*t = tags
	return nil
}

// splitFrontMatter separates the header block from the body. The header is
// present only when the file starts with a delimiter line; the returned ok
// is false when no header exists, which is not an error.
func splitFrontMatter(content []byte) (header, body []byte, ok bool) {
	text := string(content)
	text = strings.TrimPrefix(text, "\uFEFF")

	first, rest, found := strings.Cut(text, "\n")
	if !found || strings.TrimRight(first, "\r") != frontMatterDelimiter {
		return nil, content, false
	}

	lines := strings.SplitAfter(rest, "\n")
	var headerBuilder strings.Builder
	offset := 0
	for _, line := range lines {
		if strings.TrimRight(line, "\r\n") == frontMatterDelimiter {
			return []byte(headerBuilder.String()), []byte(rest[offset+len(line):]), true
		}
		headerBuilder.WriteString(line)
		offset += len(line)
	}

	// Unterminated header block: treat the whole file as body.
	return nil, content, false
}

// parseFrontMatter decodes a header block.
func parseFrontMatter(header []byte) (*frontMatter, error) {
	var fm frontMatter
	if err := yaml.Unmarshal(header, &fm); err != nil {
		return nil, err
	}
	return &fm, nil
}

// firstHeading returns the text of the first "# " heading in the body,
// or "" when none exists.
func firstHeading(body []byte) string {
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimRight(line, "\r")
		if rest, found := strings.CutPrefix(line, "# "); found {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}
