package script

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is the on-disk form of a generated script: the narration content
// plus the metadata needed to assemble the rest of the clip.
type Document struct {
	Title        string   `yaml:"title"`
	Script       Content  `yaml:"script"`
	ImagePrompts []string `yaml:"image_prompts,omitempty"`
	BGMPrompt    string   `yaml:"bgm_prompt,omitempty"`
}

// WriteDocument writes a script document to a YAML file.
func WriteDocument(doc *Document, path string) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadDocument reads a script document from a YAML file.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Script.Empty() {
		return nil, fmt.Errorf("script file %s has no narration text", path)
	}
	return &doc, nil
}
