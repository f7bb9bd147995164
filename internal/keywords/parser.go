package keywords

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/ssbtech/hilService/internal/domain/models"
	"github.com/ssbtech/hilService/pkg/errors"
)

// Parser validates raw keyword input against the schema registry and
// produces typed invocations.
type Parser struct {
	registry *Registry
}

func NewParser(registry *Registry) *Parser {
	return &Parser{registry: registry}
}

// Parse validates one raw keyword call. The returned invocation carries its
// parameters in schema declaration order with both the literal token and the
// typed value.
func (p *Parser) Parse(in models.KeywordCallInput) (models.KeywordInvocation, error) {
	schema, ok := p.registry.Lookup(in.Keyword)
	if !ok {
		return models.KeywordInvocation{}, fmt.Errorf("%w: %q", errors.ErrUnknownKeyword, in.Keyword)
	}

	known := make(map[string]struct{}, len(schema.Params))
	for _, ps := range schema.Params {
		known[ps.Name] = struct{}{}
	}
	for name := range in.Params {
		if _, ok := known[name]; !ok {
			return models.KeywordInvocation{}, fmt.Errorf("%w: keyword %q has no parameter %q", errors.ErrValidation, in.Keyword, name)
		}
	}

	params := make([]models.Param, 0, len(schema.Params))
	for _, ps := range schema.Params {
		raw, supplied := in.Params[ps.Name]
		if !supplied {
			if ps.Default != nil {
				raw = *ps.Default
			} else if ps.Required {
				return models.KeywordInvocation{}, fmt.Errorf("%w: %q requires %q", errors.ErrMissingParameter, in.Keyword, ps.Name)
			} else {
				// Optional without a declared default resolves to empty.
				params = append(params, models.Param{Name: ps.Name, Raw: "", Value: nil})
				continue
			}
		}

		value, err := cast(ps, raw)
		if err != nil {
			return models.KeywordInvocation{}, fmt.Errorf("%w: keyword %q parameter %q: %v", errors.ErrValidation, in.Keyword, ps.Name, err)
		}
		params = append(params, models.Param{Name: ps.Name, Raw: raw, Value: value})
	}

	inv := models.KeywordInvocation{
		Name:          schema.Name,
		Params:        params,
		Documentation: in.Documentation,
		Tags:          append([]string(nil), in.Tags...),
		Generated:     true,
	}
	if schema.Priority == "required" && !inv.HasTag("required") {
		inv.Tags = append(inv.Tags, "required")
	}
	return inv, nil
}

// ParseSequence validates a whole test case, preserving keyword order.
// It fails on the first invalid call, before any hardware is involved.
func (p *Parser) ParseSequence(inputs []models.KeywordCallInput) ([]models.KeywordInvocation, error) {
	invocations := make([]models.KeywordInvocation, 0, len(inputs))
	for i, in := range inputs {
		inv, err := p.Parse(in)
		if err != nil {
			return nil, fmt.Errorf("keyword %d: %w", i, err)
		}
		invocations = append(invocations, inv)
	}
	return invocations, nil
}

func cast(ps ParamSchema, raw string) (interface{}, error) {
	switch ps.Type {
	case TypeInt:
		// Base 0 accepts both decimal and 0x-prefixed hex ids.
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 0, 64)
		if err != nil {
			return nil, fmt.Errorf("not an integer: %q", raw)
		}
		return v, nil
	case TypeFloat:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", raw)
		}
		return v, nil
	case TypeBool:
		v, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("not a boolean: %q", raw)
		}
		return v, nil
	case TypeString:
		return raw, nil
	case TypeEnum:
		for _, opt := range ps.Options {
			if raw == opt {
				return raw, nil
			}
		}
		return nil, fmt.Errorf("%q is not one of %v", raw, ps.Options)
	case TypeBytes:
		return castBytes(raw)
	}
	return nil, fmt.Errorf("unsupported parameter type %q", ps.Type)
}

// castBytes accepts either a decimal integer (encoded as its minimal byte
// sequence, so "50" becomes 0x32) or a hex byte string like "FF00".
func castBytes(raw string) ([]byte, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("empty payload")
	}

	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		out := []byte{byte(v)}
		for v >>= 8; v > 0; v >>= 8 {
			out = append([]byte{byte(v)}, out...)
		}
		return out, nil
	}

	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s)%2 != 0 {
		s = "0" + s
	}
	out, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("not an integer or hex byte string: %q", raw)
	}
	return out, nil
}
