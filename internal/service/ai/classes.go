package ai

import (
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
)

// ClassList maps network class-score indices to class names.
type ClassList []string

// LoadClassList reads a newline-separated class-name file.
func LoadClassList(path string) (ClassList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read class names: %w", err)
	}

	classes := ParseClassList(string(data))
	if len(classes) == 0 {
		return nil, fmt.Errorf("class names file %s is empty", path)
	}
	return classes, nil
}

// ParseClassList splits text into class names by line. Blank lines inside the
// list are kept so that indices stay aligned with the network output.
func ParseClassList(text string) ClassList {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return lo.Map(strings.Split(text, "\n"), func(line string, _ int) string {
		return strings.TrimSpace(line)
	})
}

// Name returns the class name for an index.
func (c ClassList) Name(id int) (string, bool) {
	if id < 0 || id >= len(c) {
		return "", false
	}
	return c[id], true
}
