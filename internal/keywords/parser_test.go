package keywords

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ssbtech/hilService/internal/domain/models"
	"github.com/ssbtech/hilService/pkg/errors"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	registry, err := LoadRegistry()
	require.NoError(t, err)
	return NewParser(registry)
}

func TestParseSendCanMessage(t *testing.T) {
	p := newTestParser(t)

	inv, err := p.Parse(models.KeywordCallInput{
		Keyword: "send_can_message",
		Params: map[string]string{
			"can_id":  "400",
			"payload": "50",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "send_can_message", inv.Name)

	// Parameters come back in schema order with defaults filled in.
	names := make([]string, 0, len(inv.Params))
	byName := make(map[string]models.Param)
	for _, param := range inv.Params {
		names = append(names, param.Name)
		byName[param.Name] = param
	}
	require.Equal(t, []string{"can_id", "payload", "node", "can_type"}, names)

	require.Equal(t, int64(400), byName["can_id"].Value)
	require.Equal(t, []byte{0x32}, byName["payload"].Value, "decimal payload encodes as its byte value")
	require.Equal(t, "1", byName["node"].Raw, "node falls back to its default")
	require.Equal(t, "0", byName["can_type"].Raw)
}

func TestParseHexCanID(t *testing.T) {
	p := newTestParser(t)

	inv, err := p.Parse(models.KeywordCallInput{
		Keyword: "send_can_message",
		Params:  map[string]string{"can_id": "0x190", "payload": "FF00"},
	})
	require.NoError(t, err)
	require.Equal(t, int64(0x190), inv.Params[0].Value)
	require.Equal(t, []byte{0xFF, 0x00}, inv.Params[1].Value)
}

func TestParseMissingRequiredParameter(t *testing.T) {
	p := newTestParser(t)

	_, err := p.Parse(models.KeywordCallInput{
		Keyword: "send_can_message",
		Params:  map[string]string{"payload": "50"},
	})
	require.ErrorIs(t, err, errors.ErrMissingParameter)
	require.Contains(t, err.Error(), "can_id")
}

func TestParseUnknownKeyword(t *testing.T) {
	p := newTestParser(t)

	_, err := p.Parse(models.KeywordCallInput{Keyword: "explode"})
	require.ErrorIs(t, err, errors.ErrUnknownKeyword)
}

func TestParseUnknownParameter(t *testing.T) {
	p := newTestParser(t)

	_, err := p.Parse(models.KeywordCallInput{
		Keyword: "delay",
		Params:  map[string]string{"seconds": "1", "bogus": "x"},
	})
	require.ErrorIs(t, err, errors.ErrValidation)
}

func TestParseEnumRejectsBadOption(t *testing.T) {
	p := newTestParser(t)

	_, err := p.Parse(models.KeywordCallInput{
		Keyword: "power_output",
		Params:  map[string]string{"state": "maybe"},
	})
	require.ErrorIs(t, err, errors.ErrValidation)
}

func TestParseBadInteger(t *testing.T) {
	p := newTestParser(t)

	_, err := p.Parse(models.KeywordCallInput{
		Keyword: "send_can_message",
		Params:  map[string]string{"can_id": "abc", "payload": "50"},
	})
	require.ErrorIs(t, err, errors.ErrValidation)
}

func TestParseOptionalWithoutDefault(t *testing.T) {
	p := newTestParser(t)

	inv, err := p.Parse(models.KeywordCallInput{
		Keyword: "delay",
		Params:  map[string]string{"seconds": "2.5"},
	})
	require.NoError(t, err)
	require.Equal(t, 2.5, inv.Params[0].Value)
	require.Nil(t, inv.Params[1].Value, "omitted optional reason resolves to empty")
}

func TestParseRequiredPriorityAddsTag(t *testing.T) {
	p := newTestParser(t)

	inv, err := p.Parse(models.KeywordCallInput{
		Keyword: "power_output",
		Params:  map[string]string{"state": "on"},
	})
	require.NoError(t, err)
	require.True(t, inv.HasTag("required"))
}

func TestParseSequenceFailsFast(t *testing.T) {
	p := newTestParser(t)

	_, err := p.ParseSequence([]models.KeywordCallInput{
		{Keyword: "delay", Params: map[string]string{"seconds": "1"}},
		{Keyword: "nope"},
		{Keyword: "delay", Params: map[string]string{"seconds": "2"}},
	})
	require.ErrorIs(t, err, errors.ErrUnknownKeyword)
	require.Contains(t, err.Error(), "keyword 1")
}

func TestParseSequencePreservesOrder(t *testing.T) {
	p := newTestParser(t)

	invs, err := p.ParseSequence([]models.KeywordCallInput{
		{Keyword: "power_output", Params: map[string]string{"state": "on"}},
		{Keyword: "delay", Params: map[string]string{"seconds": "1"}},
		{Keyword: "send_can_message", Params: map[string]string{"can_id": "400", "payload": "50"}},
	})
	require.NoError(t, err)
	require.Len(t, invs, 3)
	require.Equal(t, "power_output", invs[0].Name)
	require.Equal(t, "delay", invs[1].Name)
	require.Equal(t, "send_can_message", invs[2].Name)
}
