package course

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_course.yaml
var defaultCourseYAML []byte

// Default returns the built-in course tree. Each call returns a fresh copy.
func Default() Tree {
	t, err := Parse(defaultCourseYAML)
	if err != nil {
		panic(fmt.Sprintf("course: built-in tree: %v", err))
	}
	return t
}

// Parse decodes a YAML list of topics and checks that it is well formed.
func Parse(data []byte) (Tree, error) {
	var t Tree
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode course yaml: %w", err)
	}
	if !t.WellFormed() {
		return nil, ErrMalformedTree
	}
	return t, nil
}

// Load reads a course tree from path. A file holds the whole tree as a YAML
// list. A directory holds one topic per .yaml file, ordered by file name.
func Load(path string) (Tree, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat course path: %w", err)
	}
	if !info.IsDir() {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read course file: %w", err)
		}
		return Parse(data)
	}

	var files []string
	err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
		if err != nil || fi.IsDir() {
			return nil
		}
		if strings.HasSuffix(p, ".yaml") || strings.HasSuffix(p, ".yml") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk course dir: %w", err)
	}
	sort.Strings(files)

	var t Tree
	for _, f := range files {
		topic, ok, err := loadTopic(f)
		if err != nil {
			return nil, err
		}
		if ok {
			t = append(t, topic)
		}
	}
	if !t.WellFormed() {
		return nil, fmt.Errorf("%w: %s", ErrMalformedTree, path)
	}
	return t, nil
}

func loadTopic(path string) (Topic, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Topic{}, false, err
	}

	var topic Topic
	if err := yaml.Unmarshal(data, &topic); err != nil {
		slog.Warn("skipping invalid topic YAML", "path", path, "error", err)
		return Topic{}, false, nil
	}
	if topic.Title == "" {
		return Topic{}, false, nil // Not a topic file
	}
	if !topic.WellFormed() {
		slog.Warn("skipping topic with empty subtopic list", "path", path, "title", topic.Title)
		return Topic{}, false, nil
	}
	return topic, true, nil
}
