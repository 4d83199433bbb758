// Package locator resolves a cursor position inside a GraphQL query document to the
// operation or fragment definition that encloses it, and names the explorer anchor
// for that definition.
package locator

import (
	"fmt"

	"go.uber.org/zap"
)

// RootSelector scopes anchor lookups to the explorer panel.
const RootSelector = ".graphiql-explorer-root"

// Range is the rune offset range of the token under the cursor. Start <= End.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type Kind string

const (
	KindQuery        Kind = "query"
	KindMutation     Kind = "mutation"
	KindSubscription Kind = "subscription"
	KindFragment     Kind = "fragment"
	KindUnknown      Kind = "unknown"
)

const unknownName = "unknown"

// Anchor identifies the explorer element of a definition.
type Anchor struct {
	Kind Kind
	Name string
}

func (a Anchor) String() string {
	return fmt.Sprintf("%s-%s", a.Kind, a.Name)
}

// Selector returns the DOM selector of the anchor element inside the explorer.
func (a Anchor) Selector() string {
	return RootSelector + " #" + a.String()
}

// AnchorFor derives the anchor of a definition.
func AnchorFor(def Definition) Anchor {
	var (
		kind Kind
		name string
	)
	switch d := def.(type) {
	case *OperationDefinition:
		kind, name = Kind(d.Operation), d.Name
	case *FragmentDefinition:
		kind, name = KindFragment, d.Name
	default:
		kind = KindUnknown
	}
	if kind == "" {
		kind = KindQuery
	}
	if name == "" {
		name = unknownName
	}
	return Anchor{Kind: kind, Name: name}
}

// Locator resolves cursor ranges. The zero value is not usable, use New.
type Locator struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Locator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Locator{logger: logger}
}

var std = New(nil)

// Locate resolves r within text using a silent Locator.
func Locate(text string, r Range) (Anchor, error) {
	return std.Locate(text, r)
}

// Locate parses text and returns the anchor of the first definition, in document
// order, whose span contains r.
func (l *Locator) Locate(text string, r Range) (Anchor, error) {
	if r.Start > r.End {
		return Anchor{}, ErrInvalidRange
	}
	doc, err := Parse(text)
	if err != nil {
		l.logger.Debug("couldn't parse query document", zap.Error(err))
		return Anchor{}, err
	}
	def, err := l.find(doc, r)
	if err != nil {
		l.logger.Debug("unable to find definition corresponding to cursor",
			zap.Int("start", r.Start), zap.Int("end", r.End))
		return Anchor{}, err
	}
	return AnchorFor(def), nil
}

// Find returns the first definition whose span contains r. Definitions without
// location information are skipped.
func (d *Document) Find(r Range) (Definition, error) {
	return std.find(d, r)
}

func (l *Locator) find(doc *Document, r Range) (Definition, error) {
	for _, def := range doc.Definitions {
		span := def.Location()
		if span == nil {
			a := AnchorFor(def)
			l.logger.Debug("missing location information for definition",
				zap.String("kind", string(a.Kind)), zap.String("name", a.Name))
			continue
		}
		if span.Contains(r) {
			return def, nil
		}
	}
	return nil, ErrNotFound
}
