// Package frontmatter splits the YAML frontmatter block off markdown
// documents and writes it back.
package frontmatter

import (
	"fmt"
	"maps"
	"reflect"
	"strings"

	"github.com/taigrr/docvault/internal/types"
	"github.com/taigrr/docvault/internal/vaulterr"
	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Parse splits content into frontmatter and body. Content without a closed
// block, or whose block is not valid YAML, is returned whole as the body with
// empty frontmatter.
func Parse(content string) types.ParsedNote {
	note := types.ParsedNote{
		Frontmatter:     make(map[string]any),
		Content:         content,
		OriginalContent: content,
	}

	block, body, ok := split(content)
	if !ok {
		return note
	}

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return note
	}
	if fm != nil {
		note.Frontmatter = fm
	}
	note.Content = body
	return note
}

// split locates the block between an opening delimiter on the first line and
// the next delimiter line. CRLF line endings are accepted.
func split(content string) (block, body string, ok bool) {
	rest, found := strings.CutPrefix(content, delimiter+"\n")
	if !found {
		if rest, found = strings.CutPrefix(content, delimiter+"\r\n"); !found {
			return "", content, false
		}
	}

	offset := 0
	for offset <= len(rest) {
		var line string
		next := len(rest) + 1
		if end := strings.IndexByte(rest[offset:], '\n'); end == -1 {
			line = rest[offset:]
		} else {
			line = rest[offset : offset+end]
			next = offset + end + 1
		}
		if strings.TrimRight(line, "\r") == delimiter {
			if next <= len(rest) {
				body = rest[next:]
			}
			return rest[:offset], body, true
		}
		offset = next
	}
	return "", content, false
}

// Render joins frontmatter and body into a document. Empty frontmatter
// renders the body alone.
func Render(fm map[string]any, body string) (string, error) {
	if len(fm) == 0 {
		return body, nil
	}
	out, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("failed to render frontmatter: %w", err)
	}
	return delimiter + "\n" + string(out) + delimiter + "\n" + body, nil
}

// Validate reports values YAML cannot represent faithfully: functions,
// channels and non-string map keys.
func Validate(fm map[string]any) error {
	var problems []string
	check(fm, "", &problems)
	if len(problems) > 0 {
		return vaulterr.Invalid("frontmatter", "%s", strings.Join(problems, "; "))
	}
	if _, err := yaml.Marshal(fm); err != nil {
		return vaulterr.Invalid("frontmatter", "invalid YAML structure: %v", err)
	}
	return nil
}

func check(obj any, path string, problems *[]string) {
	if obj == nil {
		return
	}
	v := reflect.ValueOf(obj)
	switch v.Kind() {
	case reflect.Func, reflect.Chan:
		*problems = append(*problems, fmt.Sprintf("unsupported value at %s", path))
	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			check(v.Index(i).Interface(), fmt.Sprintf("%s[%d]", path, i), problems)
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			key := iter.Key()
			if key.Kind() != reflect.String {
				*problems = append(*problems, fmt.Sprintf("non-string key %v", key.Interface()))
				continue
			}
			child := key.String()
			if path != "" {
				child = path + "." + child
			}
			check(iter.Value().Interface(), child, problems)
		}
	}
}

// Merge applies updates on top of the frontmatter of content and returns the
// new document. A nil update value removes the key.
func Merge(content string, updates map[string]any) (string, error) {
	note := Parse(content)

	fm := make(map[string]any, len(note.Frontmatter)+len(updates))
	maps.Copy(fm, note.Frontmatter)
	for k, v := range updates {
		if v == nil {
			delete(fm, k)
			continue
		}
		fm[k] = v
	}

	if err := Validate(fm); err != nil {
		return "", err
	}
	return Render(fm, note.Content)
}

// Title returns the string "title" key of fm, if present.
func Title(fm map[string]any) (string, bool) {
	title, ok := fm["title"].(string)
	if !ok || strings.TrimSpace(title) == "" {
		return "", false
	}
	return title, true
}

// Tags returns the "tags" key of fm as strings. Both a YAML list and a single
// comma separated string are accepted.
func Tags(fm map[string]any) []string {
	var tags []string
	switch v := fm["tags"].(type) {
	case string:
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	case []any:
		for _, t := range v {
			if s, ok := t.(string); ok && s != "" {
				tags = append(tags, s)
			}
		}
	case []string:
		tags = append(tags, v...)
	}
	return tags
}
