// Package intake turns raw request bodies into validated domain messages.
package intake

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/nfrund/intake/internal/domain"
)

// Request is the wire shape of an intake body. Pointer fields let the
// validator tell a missing or null field apart from an empty string.
type Request struct {
	Topic       *string `json:"topic" validate:"required"`
	Description *string `json:"description" validate:"required"`
}

// Topics reports whether a topic name is known.
type Topics interface {
	Has(name string) bool
}

// Parser decodes and validates intake bodies.
type Parser struct {
	validate *validator.Validate
	topics   Topics
}

// NewParser creates a Parser checking topics against the given registry.
func NewParser(topics Topics) *Parser {
	v := validator.New()
	// Report JSON field names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Parser{validate: v, topics: topics}
}

// Parse runs the structural checks, then the topic check, then the
// description check, returning the first failure.
func (p *Parser) Parse(raw []byte) (domain.Message, error) {
	req, err := p.Decode(raw)
	if err != nil {
		return domain.Message{}, err
	}

	msg := domain.Message{Topic: *req.Topic, Description: *req.Description}
	if !p.topics.Has(msg.Topic) {
		return domain.Message{}, &domain.UnknownTopicError{Topic: msg.Topic}
	}
	if isBlank(msg.Description) {
		return domain.Message{}, domain.ErrEmptyDescription
	}
	return msg, nil
}

// Decode performs only the structural checks: valid JSON object, both fields
// present, both strings. Keys are matched exactly; unknown fields are ignored.
func (p *Parser) Decode(raw []byte) (*Request, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, domain.MissingField("body")
	}

	// Decoding into a map first keeps key matching case-sensitive, which
	// encoding/json's struct decoding is not.
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, decodeError(err)
	}

	var req Request
	var typeErrs []domain.FieldError
	for _, f := range []struct {
		key string
		dst **string
	}{
		{"topic", &req.Topic},
		{"description", &req.Description},
	} {
		value, ok := obj[f.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, f.dst); err != nil {
			typeErrs = append(typeErrs, domain.FieldError{
				Loc:  []string{"body", f.key},
				Msg:  "str type expected",
				Type: "type_error.str",
			})
		}
	}
	if len(typeErrs) > 0 {
		return nil, &domain.StructuralError{Fields: typeErrs}
	}

	if err := p.validate.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		fields := make([]domain.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, domain.FieldError{
				Loc:  []string{"body", fe.Field()},
				Msg:  "field required",
				Type: "value_error.missing",
			})
		}
		return nil, &domain.StructuralError{Fields: fields}
	}
	return &req, nil
}

func decodeError(err error) *domain.StructuralError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &domain.StructuralError{Fields: []domain.FieldError{{
			Loc:  []string{"body"},
			Msg:  "value is not a valid object",
			Type: "type_error.dict",
		}}}
	}
	return &domain.StructuralError{Fields: []domain.FieldError{{
		Loc:  []string{"body"},
		Msg:  "invalid JSON: " + err.Error(),
		Type: "value_error.jsondecode",
	}}}
}

// isBlank reports whether s holds only whitespace. Besides unicode.IsSpace it
// treats the ASCII information separators U+001C..U+001F as whitespace.
func isBlank(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsSpace(r) && (r < 0x1c || r > 0x1f)
	}) < 0
}
