package theme

import (
	"strings"
)

// SchemeMetadata is the metadata comment preceding a scheme block.
type SchemeMetadata struct {
	Scheme  string
	Display string
}

// SchemeBlock is one parsed scheme: its metadata and the declarations of the
// rule that follows it.
type SchemeBlock struct {
	SchemeMetadata
	Declarations string
}

const baseCSSMarker = "/* Base CSS"

// findBlockEnd finds the end of a CSS block (the matching closing brace)
func findBlockEnd(content string, startPos int) int {
	if startPos >= len(content) {
		return len(content)
	}

	openBrace := strings.Index(content[startPos:], "{")
	if openBrace == -1 {
		return len(content)
	}
	openBrace += startPos

	depth := 1
	pos := openBrace + 1
	for pos < len(content) && depth > 0 {
		switch content[pos] {
		case '{':
			depth++
		case '}':
			depth--
		}
		pos++
	}

	return pos
}

// ParseSchemeMetadata parses "Key: value" lines from a CSS comment block.
func ParseSchemeMetadata(comment string) SchemeMetadata {
	var meta SchemeMetadata

	startIdx := strings.Index(comment, "/*")
	if startIdx == -1 {
		return meta
	}
	endIdx := strings.Index(comment[startIdx:], "*/")
	if endIdx == -1 {
		return meta
	}

	for _, line := range strings.Split(comment[startIdx+2:startIdx+endIdx], "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "*"))
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Scheme":
			meta.Scheme = value
		case "Display":
			meta.Display = value
		}
	}

	return meta
}

// ParseSchemes splits a palette stylesheet into its scheme blocks and the base
// CSS that follows the "/* Base CSS */" marker. A comment without a Scheme key
// is skipped, as is a scheme whose name was already seen.
func ParseSchemes(content string) ([]SchemeBlock, string) {
	var schemes []SchemeBlock
	seen := make(map[string]bool)
	pos := 0
	lastSchemeEnd := 0

	baseStart := strings.Index(content, baseCSSMarker)
	limit := len(content)
	if baseStart != -1 {
		limit = baseStart
	}

	for pos < limit {
		metaStart := strings.Index(content[pos:limit], "/*")
		if metaStart == -1 {
			break
		}
		metaStart += pos
		metaEnd := strings.Index(content[metaStart:limit], "*/")
		if metaEnd == -1 {
			break
		}
		metaEnd += metaStart + 2

		meta := ParseSchemeMetadata(content[metaStart:metaEnd])
		if meta.Scheme == "" {
			pos = metaEnd
			continue
		}

		open := strings.Index(content[metaEnd:limit], "{")
		if open == -1 {
			break
		}
		open += metaEnd
		end := findBlockEnd(content, open)
		if end > limit {
			end = limit
		}

		body := content[open+1 : end]
		body = strings.TrimSuffix(strings.TrimSpace(body), "}")
		lastSchemeEnd = end
		pos = end

		if seen[meta.Scheme] {
			continue
		}
		seen[meta.Scheme] = true
		schemes = append(schemes, SchemeBlock{
			SchemeMetadata: meta,
			Declarations:   strings.TrimSpace(body),
		})
	}

	var base string
	if baseStart != -1 {
		if markerEnd := strings.Index(content[baseStart:], "*/"); markerEnd != -1 {
			base = content[baseStart+markerEnd+2:]
		}
	} else {
		base = content[lastSchemeEnd:]
	}

	return schemes, strings.TrimSpace(base)
}
