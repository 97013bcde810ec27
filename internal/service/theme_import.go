package service

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type themeFile struct {
	Themes []ThemeInput `yaml:"themes"`
}

// DecodeThemes reads a theme catalog. Both a bare YAML list and a document
// with a top-level "themes" key are accepted.
func DecodeThemes(r io.Reader) ([]ThemeInput, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read theme file: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("%w: theme file: %v", ErrInvalidInput, err)
	}
	if len(node.Content) == 0 {
		return nil, fmt.Errorf("%w: theme file is empty / 主题文件为空", ErrInvalidInput)
	}

	var themes []ThemeInput
	switch node.Content[0].Kind {
	case yaml.SequenceNode:
		err = node.Content[0].Decode(&themes)
	case yaml.MappingNode:
		var file themeFile
		err = node.Content[0].Decode(&file)
		themes = file.Themes
	default:
		err = errors.New("expected a list of themes")
	}
	if err != nil {
		return nil, fmt.Errorf("%w: theme file: %v", ErrInvalidInput, err)
	}
	if len(themes) == 0 {
		return nil, fmt.Errorf("%w: theme file lists no themes / 主题文件没有主题", ErrInvalidInput)
	}
	return themes, nil
}
