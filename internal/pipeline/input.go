package pipeline

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Document is one text-like input file read fully into memory. Channel is
// decided later from content, never from the name or extension.
type Document struct {
	Name string
	Path string
	Text string
}

var supportedExts = map[string]bool{
	".txt":  true,
	".md":   true,
	".json": true,
}

// LoadDocuments walks the input directory and reads every supported file.
// An unreadable input location is the one fatal boundary condition; empty
// files are silently skipped.
func LoadDocuments(inputDir string) ([]Document, error) {
	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, fmt.Errorf("input dir not found: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path is not a directory: %s", inputDir)
	}

	var docs []Document
	err = filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !supportedExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		text := string(data)
		if strings.EqualFold(filepath.Ext(path), ".json") {
			text = textFromJSON(data)
		}

		text = strings.TrimSpace(text)
		if text == "" {
			return nil
		}

		docs = append(docs, Document{
			Name: d.Name(),
			Path: path,
			Text: text,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// WalkDir order is already lexical per directory; sort by path for a
	// stable order across the whole tree.
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })

	return docs, nil
}

// textFromJSON pulls usable text out of a JSON document: the "text" field of
// an object, the joined elements of an array, or the pretty-printed document
// as a fallback. Invalid JSON is kept verbatim.
func textFromJSON(data []byte) string {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return string(data)
	}

	switch v := value.(type) {
	case map[string]any:
		if text, ok := v["text"].(string); ok {
			return text
		}
	case []any:
		parts := make([]string, 0, len(v))
		for _, x := range v {
			parts = append(parts, fmt.Sprint(x))
		}
		return strings.Join(parts, "\n")
	}

	pretty, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return string(data)
	}
	return string(pretty)
}
