package models

// Param is one validated keyword parameter. Raw keeps the literal token the
// caller supplied so the generated script reproduces it exactly; Value is the
// schema-typed form used by consumers that need the real type.
type Param struct {
	Name  string      `json:"name"`
	Raw   string      `json:"raw"`
	Value interface{} `json:"value"`
}

// KeywordInvocation is one validated keyword call. Created by the parser,
// consumed once by the script generator, never mutated afterwards.
type KeywordInvocation struct {
	Name          string   `json:"name"`
	Params        []Param  `json:"params"` // schema declaration order
	Documentation string   `json:"documentation,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Generated     bool     `json:"generated"`
}

// HasTag reports whether the invocation carries the given tag.
func (k KeywordInvocation) HasTag(tag string) bool {
	for _, t := range k.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// TestCase is an ordered keyword sequence with shared metadata. It exists
// only to produce a script artifact and is discarded afterwards.
type TestCase struct {
	Name          string              `json:"name"`
	Tags          []string            `json:"tags,omitempty"`
	Documentation string              `json:"documentation,omitempty"`
	Invocations   []KeywordInvocation `json:"invocations"`
}

// KeywordCallInput is the raw per-keyword input consumed by the parser.
type KeywordCallInput struct {
	Keyword       string            `json:"keyword" binding:"required"`
	Tags          []string          `json:"tags,omitempty"`
	Documentation string            `json:"documentation,omitempty"`
	Params        map[string]string `json:"params,omitempty"`
}
