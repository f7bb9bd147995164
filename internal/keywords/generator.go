package keywords

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ssbtech/hilService/internal/domain/models"
)

const sep = "    " // Robot Framework column separator

// Generator renders validated test cases into the external interpreter's
// script syntax. It is pure and idempotent for a fixed run id; it never
// touches devices or the transport lock.
type Generator struct {
	registry *Registry
}

func NewGenerator(registry *Registry) *Generator {
	return &Generator{registry: registry}
}

// Generate renders tc into a script artifact. Keyword calls appear in
// declaration order with their literal parameter tokens; runID is embedded
// into the case name and variables block so interpreter artifacts can be
// correlated with the run.
func (g *Generator) Generate(tc models.TestCase, runID string) []byte {
	var b strings.Builder

	b.WriteString("*** Settings ***\n")
	fmt.Fprintf(&b, "Documentation%s%s\n", sep, tc.Name)
	for _, lib := range g.libraries(tc) {
		fmt.Fprintf(&b, "Library%sLib.%s\n", sep, lib)
	}
	b.WriteString("\n")

	b.WriteString("*** Variables ***\n")
	fmt.Fprintf(&b, "${TIMEOUT}%s30s\n", sep)
	fmt.Fprintf(&b, "${RUN_ID}%s%s\n", sep, runID)
	b.WriteString("\n")

	b.WriteString("*** Test Cases ***\n")
	fmt.Fprintf(&b, "%s [id]%s\n", tc.Name, runID)

	tags := tc.Tags
	if len(tags) == 0 {
		tags = []string{"normal"}
	}
	fmt.Fprintf(&b, "%s[Tags]%s%s\n", sep, sep, strings.Join(tags, sep))

	if tc.Documentation != "" {
		writeDocumentation(&b, tc.Documentation)
	}

	for _, inv := range tc.Invocations {
		b.WriteString(sep)
		b.WriteString(inv.Name)
		for _, p := range inv.Params {
			if p.Raw == "" && p.Value == nil {
				continue // omitted optional without default
			}
			fmt.Fprintf(&b, "%s%s=%s", sep, p.Name, p.Raw)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	return []byte(b.String())
}

// libraries collects the sorted set of keyword libraries the case needs.
func (g *Generator) libraries(tc models.TestCase) []string {
	set := make(map[string]struct{})
	for _, inv := range tc.Invocations {
		if schema, ok := g.registry.Lookup(inv.Name); ok {
			set[schema.Library] = struct{}{}
		}
	}
	libs := make([]string, 0, len(set))
	for lib := range set {
		libs = append(libs, lib)
	}
	sort.Strings(libs)
	return libs
}

func writeDocumentation(b *strings.Builder, doc string) {
	lines := strings.Split(doc, "\n")
	fmt.Fprintf(b, "%s[Documentation]%s%s\n", sep, sep, lines[0])
	for _, line := range lines[1:] {
		fmt.Fprintf(b, "%s...%s%s\n", sep, sep, line)
	}
}
