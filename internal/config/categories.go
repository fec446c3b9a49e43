// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/faq-engine/pkg/types"
)

const categoriesKey = "categories"

// ReadCategories reads the categories section of the YAML file at path in
// declaration order. found is false when the file has no such section.
//
// Two shapes are accepted:
//
//	categories:
//	  Account Management: 20
//	  Online Banking: 15
//
//	categories:
//	  - name: Account Management
//	    count: 20
func ReadCategories(path string) (cats []types.CategoryTarget, found bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, &Error{Key: path, Msg: "reading categories", Err: err}
	}
	return parseCategories(path, data)
}

func parseCategories(path string, data []byte) ([]types.CategoryTarget, bool, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, false, &Error{Key: path, Msg: "parsing YAML", Err: err}
	}
	if len(doc.Content) == 0 {
		return nil, false, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, false, nil
	}

	var section *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == categoriesKey {
			section = root.Content[i+1]
			break
		}
	}
	if section == nil {
		return nil, false, nil
	}

	var cats []types.CategoryTarget
	switch section.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(section.Content); i += 2 {
			name := section.Content[i].Value
			var count int
			if err := section.Content[i+1].Decode(&count); err != nil {
				return nil, true, &Error{Key: categoriesKey, Msg: fmt.Sprintf("count for %q (line %d)", name, section.Content[i+1].Line), Err: err}
			}
			cats = append(cats, types.CategoryTarget{Name: name, Count: count})
		}
	case yaml.SequenceNode:
		if err := section.Decode(&cats); err != nil {
			return nil, true, &Error{Key: categoriesKey, Msg: fmt.Sprintf("decoding list (line %d)", section.Line), Err: err}
		}
	case yaml.ScalarNode:
		if section.Tag == "!!null" {
			return []types.CategoryTarget{}, true, nil
		}
		return nil, true, &Error{Key: categoriesKey, Msg: fmt.Sprintf("expected a mapping or list (line %d)", section.Line)}
	default:
		return nil, true, &Error{Key: categoriesKey, Msg: fmt.Sprintf("expected a mapping or list (line %d)", section.Line)}
	}

	if cats == nil {
		cats = []types.CategoryTarget{}
	}
	return cats, true, nil
}
