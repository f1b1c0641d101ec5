//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// docGlobs are the markdown files counted as documentation.
var docGlobs = []string{"*.md", "docs/*.md"}

// skipDir reports whether Stats should not descend into dir.
func skipDir(dir string) bool {
	switch dir {
	case "vendor", ".git", binaryDir, "magefiles":
		return true
	}
	return strings.HasPrefix(filepath.Base(dir), "_")
}

// Stats prints Go lines of code and documentation word counts as one JSON line.
func Stats() error {
	var prodLines, testLines int

	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != "." && skipDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		n := bytes.Count(data, []byte("\n"))
		if strings.HasSuffix(path, "_test.go") {
			testLines += n
		} else {
			prodLines += n
		}
		return nil
	})
	if err != nil {
		return err
	}

	docWords := 0
	for _, pattern := range docGlobs {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("glob %s: %w", pattern, err)
		}
		for _, path := range matches {
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			docWords += len(strings.Fields(string(data)))
		}
	}

	line, err := json.Marshal(map[string]int{
		"go_loc_prod": prodLines,
		"go_loc_test": testLines,
		"go_loc":      prodLines + testLines,
		"doc_wc":      docWords,
	})
	if err != nil {
		return err
	}
	fmt.Println(string(line))
	return nil
}
