package arrangementhub

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/Duck-and-Squid/arrangement-hub/internal/diff"
)

// EditType classifies how a node differs between the two documents.
type EditType string

const (
	EditInsert EditType = "INSERT"
	EditDelete EditType = "DELETE"
	EditChange EditType = "CHANGE"
)

// NodeType identifies which part of an element a token addresses.
type NodeType string

const (
	NodeElement   NodeType = "ELEMENT"
	NodeAttribute NodeType = "ATTRIBUTE"
	NodeContent   NodeType = "CONTENT"
)

// ErrInvalidToken is returned when a wire token fails validation.
var ErrInvalidToken = errors.New("invalid diff token")

// Token is one elementary edit addressed by an absolute XPath locator of the
// form /tag or /tag[k] per segment, optionally terminated by /@attr or
// /text(). Old and new values are pointers so the wire form can distinguish
// an absent value from an empty string.
type Token struct {
	EditType EditType `json:"editType" validate:"required,oneof=INSERT DELETE CHANGE"`
	NodeType NodeType `json:"nodeType" validate:"required,oneof=ELEMENT ATTRIBUTE CONTENT"`
	XPath    string   `json:"xpath" validate:"required,startswith=/"`
	Name     string   `json:"name,omitempty"`
	OldValue *string  `json:"oldValue,omitempty"`
	NewValue *string  `json:"newValue,omitempty"`
}

var validate = validator.New()

// ParseTokens decodes and validates a JSON token array.
func ParseTokens(data []byte) ([]Token, error) {
	var tokens []Token
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	for i, tok := range tokens {
		if err := tok.Validate(); err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
	}
	return tokens, nil
}

// MarshalTokens encodes a token stream as a JSON array.
func MarshalTokens(tokens []Token) ([]byte, error) {
	if tokens == nil {
		tokens = []Token{}
	}
	return json.Marshal(tokens)
}

// Validate checks the field constraints plus the structural rules the tags
// cannot express.
func (t Token) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if t.NodeType == NodeElement && t.EditType == EditChange {
		return fmt.Errorf("%w: element tokens never carry CHANGE", ErrInvalidToken)
	}
	if (t.NodeType == NodeElement || t.NodeType == NodeAttribute) && t.Name == "" {
		return fmt.Errorf("%w: %s token requires a name", ErrInvalidToken, t.NodeType)
	}
	if t.EditType == EditInsert && t.OldValue != nil {
		return fmt.Errorf("%w: INSERT carries no oldValue", ErrInvalidToken)
	}
	if t.EditType == EditDelete && t.NewValue != nil {
		return fmt.Errorf("%w: DELETE carries no newValue", ErrInvalidToken)
	}
	if t.EditType == EditChange {
		if t.OldValue == nil || t.NewValue == nil {
			return fmt.Errorf("%w: CHANGE carries both values", ErrInvalidToken)
		}
		if *t.OldValue == *t.NewValue {
			return fmt.Errorf("%w: CHANGE with identical values", ErrInvalidToken)
		}
	}
	return nil
}

func toInternalTokens(tokens []Token) []diff.Token {
	out := make([]diff.Token, len(tokens))
	for i, t := range tokens {
		out[i] = diff.Token{
			EditType: diff.EditType(t.EditType),
			NodeType: diff.NodeType(t.NodeType),
			XPath:    t.XPath,
			Name:     t.Name,
			OldValue: t.OldValue,
			NewValue: t.NewValue,
		}
	}
	return out
}

func fromInternalTokens(tokens []diff.Token) []Token {
	out := make([]Token, len(tokens))
	for i, t := range tokens {
		out[i] = Token{
			EditType: EditType(t.EditType),
			NodeType: NodeType(t.NodeType),
			XPath:    t.XPath,
			Name:     t.Name,
			OldValue: t.OldValue,
			NewValue: t.NewValue,
		}
	}
	return out
}
