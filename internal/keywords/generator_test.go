package keywords

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ssbtech/hilService/internal/domain/models"
)

func newTestGenerator(t *testing.T) (*Parser, *Generator) {
	t.Helper()
	registry, err := LoadRegistry()
	require.NoError(t, err)
	return NewParser(registry), NewGenerator(registry)
}

func TestGenerateScript(t *testing.T) {
	parser, gen := newTestGenerator(t)

	invs, err := parser.ParseSequence([]models.KeywordCallInput{
		{Keyword: "delay", Params: map[string]string{"seconds": "1.5"}},
		{Keyword: "send_can_message", Params: map[string]string{"can_id": "400", "payload": "50"}},
	})
	require.NoError(t, err)

	tc := models.TestCase{
		Name:        "Battery Charge Check",
		Tags:        []string{"smoke"},
		Invocations: invs,
	}

	script := string(gen.Generate(tc, "run-123"))

	require.Contains(t, script, "*** Settings ***\n")
	require.Contains(t, script, "Documentation    Battery Charge Check\n")
	require.Contains(t, script, "Library    Lib.CommonLibrary\n")
	require.Contains(t, script, "*** Variables ***\n")
	require.Contains(t, script, "${TIMEOUT}    30s\n")
	require.Contains(t, script, "${RUN_ID}    run-123\n")
	require.Contains(t, script, "*** Test Cases ***\n")
	require.Contains(t, script, "Battery Charge Check [id]run-123\n")
	require.Contains(t, script, "    [Tags]    smoke\n")
	require.Contains(t, script, "    delay    seconds=1.5\n")
	require.Contains(t, script, "    send_can_message    can_id=400    payload=50    node=1    can_type=0\n")

	// Keyword calls keep their declaration order.
	require.Less(t, strings.Index(script, "delay"), strings.Index(script, "send_can_message"))
}

func TestGenerateDefaultTag(t *testing.T) {
	parser, gen := newTestGenerator(t)

	invs, err := parser.ParseSequence([]models.KeywordCallInput{
		{Keyword: "load_on"},
	})
	require.NoError(t, err)

	script := string(gen.Generate(models.TestCase{Name: "Load Smoke", Invocations: invs}, "r1"))
	require.Contains(t, script, "    [Tags]    normal\n")
	require.Contains(t, script, "Library    Lib.LoaderLibrary\n")
}

func TestGenerateMultilineDocumentation(t *testing.T) {
	parser, gen := newTestGenerator(t)

	invs, err := parser.ParseSequence([]models.KeywordCallInput{
		{Keyword: "delay", Params: map[string]string{"seconds": "1"}},
	})
	require.NoError(t, err)

	tc := models.TestCase{
		Name:          "Doc Case",
		Documentation: "first line\nsecond line",
		Invocations:   invs,
	}

	script := string(gen.Generate(tc, "r2"))
	require.Contains(t, script, "    [Documentation]    first line\n")
	require.Contains(t, script, "    ...    second line\n")
}

func TestGenerateOmitsEmptyOptional(t *testing.T) {
	parser, gen := newTestGenerator(t)

	invs, err := parser.ParseSequence([]models.KeywordCallInput{
		{Keyword: "delay", Params: map[string]string{"seconds": "1"}},
	})
	require.NoError(t, err)

	script := string(gen.Generate(models.TestCase{Name: "No Reason", Invocations: invs}, "r3"))
	require.Contains(t, script, "    delay    seconds=1\n")
	require.NotContains(t, script, "reason=")
}

func TestGenerateCollectsLibrariesSorted(t *testing.T) {
	parser, gen := newTestGenerator(t)

	invs, err := parser.ParseSequence([]models.KeywordCallInput{
		{Keyword: "set_load_mode", Params: map[string]string{"mode": "CC"}},
		{Keyword: "power_output", Params: map[string]string{"state": "on"}},
		{Keyword: "delay", Params: map[string]string{"seconds": "1"}},
	})
	require.NoError(t, err)

	script := string(gen.Generate(models.TestCase{Name: "Mixed", Invocations: invs}, "r4"))

	common := strings.Index(script, "Library    Lib.CommonLibrary")
	loader := strings.Index(script, "Library    Lib.LoaderLibrary")
	power := strings.Index(script, "Library    Lib.PowerLibrary")
	require.True(t, common >= 0 && loader >= 0 && power >= 0)
	require.Less(t, common, loader)
	require.Less(t, loader, power)
}

func TestGenerateIdempotent(t *testing.T) {
	parser, gen := newTestGenerator(t)

	invs, err := parser.ParseSequence([]models.KeywordCallInput{
		{Keyword: "set_voltage", Params: map[string]string{"volts": "12.0"}},
	})
	require.NoError(t, err)

	tc := models.TestCase{Name: "Stable", Invocations: invs}
	require.Equal(t, gen.Generate(tc, "r5"), gen.Generate(tc, "r5"))
}
