package script

// Content holds the three structural parts of a short-form narration script.
type Content struct {
	Hook  string `yaml:"hook" json:"hook"`
	Body  string `yaml:"body" json:"body"`
	Outro string `yaml:"outro" json:"outro"`
}

// Empty reports whether the script has no narration text at all.
func (c Content) Empty() bool {
	return c.Hook == "" && c.Body == "" && c.Outro == ""
}
