// Package response decodes concept payloads out of noisy model output.
//
// Model output is treated as untrusted text: it may carry prose around the
// JSON object, wrap it in a fenced code block, omit optional fields or use
// the wrong types. Parse isolates the outermost object and decodes it
// against the concept wire schema, reporting failures as *domain.ParseError
// with a bounded preview of the offending JSON.
package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/custodia-labs/insight/internal/core/domain"
)

const fence = "```"

// Parse extracts and decodes the concept payload from raw model output.
func Parse(raw string) (*domain.AnalysisResponse, error) {
	span, err := Extract(raw)
	if err != nil {
		return nil, err
	}

	var envelope wireResponse
	if err := decodeStrict([]byte(span), &envelope); err != nil {
		return nil, classify(err, "", span)
	}

	if isNull(envelope.Concepts) {
		return nil, missing("concepts", span)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(envelope.Concepts, &items); err != nil {
		return nil, classify(err, "concepts", span)
	}

	concepts := make([]domain.RawConcept, 0, len(items))
	for i, item := range items {
		path := fmt.Sprintf("concepts[%d]", i)
		concept, err := decodeConcept(item, path, span)
		if err != nil {
			return nil, err
		}
		concepts = append(concepts, concept)
	}

	model, err := decodeMentalModel(envelope.MentalModel, span)
	if err != nil {
		return nil, err
	}

	return &domain.AnalysisResponse{Concepts: concepts, MentalModel: model}, nil
}

// Extract trims raw, strips a surrounding code fence and returns the span
// from the first '{' to the last '}'.
func Extract(raw string) (string, error) {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, fence) {
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			text = text[nl+1:]
		} else {
			text = strings.TrimPrefix(text, fence)
		}
		text = strings.TrimSpace(text)
		text = strings.TrimSuffix(text, fence)
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < 0 || end < start {
		return "", &domain.ParseError{
			Kind:    domain.ParseNoJSONFound,
			Preview: domain.Preview(strings.TrimSpace(raw)),
		}
	}

	return text[start : end+1], nil
}

// decodeStrict decodes a single JSON value and rejects trailing data.
func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after top-level object")
	}
	return nil
}

func decodeConcept(item json.RawMessage, path, span string) (domain.RawConcept, error) {
	if isNull(item) {
		return domain.RawConcept{}, &domain.ParseError{
			Kind:         domain.ParseTypeMismatch,
			FieldPath:    path,
			ExpectedType: "object",
			Preview:      domain.Preview(span),
		}
	}

	var wc wireConcept
	if err := json.Unmarshal(item, &wc); err != nil {
		return domain.RawConcept{}, classify(err, path, span)
	}

	if wc.ID == nil || strings.TrimSpace(*wc.ID) == "" {
		return domain.RawConcept{}, missing(path+".id", span)
	}
	// Only parent_id and excerpt context may be null or absent.
	required := []struct {
		field   string
		present bool
	}{
		{"title", wc.Title != nil},
		{"order", wc.Order != nil},
		{"one_line_summary", wc.OneLineSummary != nil},
		{"what_this_is", wc.WhatThisIs != nil},
		{"why_it_matters", wc.WhyItMatters != nil},
		{"key_points", wc.KeyPoints != nil},
		{"excerpts", wc.Excerpts != nil},
	}
	for _, r := range required {
		if !r.present {
			return domain.RawConcept{}, missing(path+"."+r.field, span)
		}
	}

	concept := domain.RawConcept{
		ExternalID:     *wc.ID,
		Title:          *wc.Title,
		Order:          *wc.Order,
		OneLineSummary: *wc.OneLineSummary,
		WhatThisIs:     *wc.WhatThisIs,
		WhyItMatters:   *wc.WhyItMatters,
		KeyPoints:      append([]string{}, wc.KeyPoints...),
		Excerpts:       make([]domain.RawExcerpt, 0, len(wc.Excerpts)),
	}
	if wc.ParentID != nil && strings.TrimSpace(*wc.ParentID) != "" {
		parent := *wc.ParentID
		concept.ParentExternalID = &parent
	}

	for j, we := range wc.Excerpts {
		excerptPath := fmt.Sprintf("%s.excerpts[%d]", path, j)
		if we.Text == nil {
			return domain.RawConcept{}, missing(excerptPath+".text", span)
		}
		if we.Location == nil {
			return domain.RawConcept{}, missing(excerptPath+".location", span)
		}
		excerpt := domain.RawExcerpt{
			Text:     *we.Text,
			Location: *we.Location,
		}
		if we.Context != nil {
			c := *we.Context
			excerpt.Context = &c
		}
		concept.Excerpts = append(concept.Excerpts, excerpt)
	}

	return concept, nil
}

func decodeMentalModel(raw json.RawMessage, span string) (*domain.MentalModel, error) {
	if isNull(raw) {
		return nil, nil
	}
	var wm wireMentalModel
	if err := json.Unmarshal(raw, &wm); err != nil {
		return nil, classify(err, "mental_model", span)
	}
	if wm.Name == nil {
		return nil, missing("mental_model.name", span)
	}
	if wm.Description == nil {
		return nil, missing("mental_model.description", span)
	}
	return &domain.MentalModel{Name: *wm.Name, Description: *wm.Description}, nil
}

// classify maps encoding/json errors onto ParseError kinds.
func classify(err error, path, span string) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &domain.ParseError{
			Kind:         domain.ParseTypeMismatch,
			FieldPath:    joinPath(path, typeErr.Field),
			ExpectedType: jsonTypeName(typeErr.Type),
			Detail:       fmt.Sprintf("got %s", typeErr.Value),
			Preview:      domain.Preview(span),
		}
	}

	detail := err.Error()
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		detail = fmt.Sprintf("%s at offset %d", syntaxErr.Error(), syntaxErr.Offset)
	}
	return &domain.ParseError{
		Kind:    domain.ParseMalformedJSON,
		Detail:  detail,
		Preview: domain.Preview(span),
	}
}

func missing(path, span string) error {
	return &domain.ParseError{
		Kind:      domain.ParseMissingField,
		FieldPath: path,
		Preview:   domain.Preview(span),
	}
}

func joinPath(prefix, field string) string {
	switch {
	case prefix == "":
		if field == "" {
			return "$"
		}
		return field
	case field == "":
		return prefix
	default:
		return prefix + "." + field
	}
}

// jsonTypeName names the JSON type that decodes into t.
func jsonTypeName(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Struct, reflect.Map:
		return "object"
	default:
		return t.String()
	}
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
