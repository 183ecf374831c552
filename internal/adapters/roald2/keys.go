package roald2

import (
	"fmt"

	"github.com/FAU-CDI/roald/internal/resource"
)

// handler applies a single value to the current concept of p.
type handler func(p *parser, value string) error

// keys maps record keys to their handlers.
var keys = map[string]handler{
	"id": scalar(resource.FieldID),
	"te": func(p *parser, value string) error {
		return p.current.SetLabel(resource.FieldPrefLabel, p.lang, resource.NewLabel(value))
	},
	"bf": func(p *parser, value string) error {
		return p.current.AddLabel(resource.FieldAltLabel, p.lang, resource.NewLabel(value))
	},
	"en": translation("en"),
	"nn": translation("nn"),
	"la": translation("la"),

	"ak": func(p *parser, value string) error {
		p.acronyms = append(p.acronyms, value)
		return nil
	},

	"ms": list(resource.FieldMSC),
	"dw": list(resource.FieldDDC),
	"so": list(resource.FieldRelated),
	"ot": list(resource.FieldBroader),

	"de": func(p *parser, value string) error {
		if _, ok := p.current.Text(resource.FieldDefinition, p.lang); ok {
			p.st.LogWarn("ignoring second definition", "id", p.current.ID(), "line", p.line)
			return nil
		}
		return p.current.SetText(resource.FieldDefinition, p.lang, value)
	},
	"no": func(p *parser, value string) error {
		return p.current.AddText(resource.FieldScopeNote, p.lang, value)
	},

	"tio": timestamp(resource.FieldCreated),
	"tie": timestamp(resource.FieldModified),

	"da": list(resource.FieldComponent),
	"db": list(resource.FieldComponent),
	"dx": virtualComponent,
	"dy": virtualComponent,
	"dz": virtualComponent,

	// known, but not imported
	"ut": ignore,
	"ba": ignore,
	"st": ignore,
}

func scalar(f resource.Field) handler {
	return func(p *parser, value string) error {
		return p.current.Set(f, value)
	}
}

func list(f resource.Field) handler {
	return func(p *parser, value string) error {
		return p.current.Add(f, value)
	}
}

// translation stores the first value as preferred label, and further values as alternative labels.
func translation(lang string) handler {
	return func(p *parser, value string) error {
		if _, ok := p.current.Label(resource.FieldPrefLabel, lang); ok {
			return p.current.AddLabel(resource.FieldAltLabel, lang, resource.NewLabel(value))
		}
		return p.current.SetLabel(resource.FieldPrefLabel, lang, resource.NewLabel(value))
	}
}

func timestamp(f resource.Field) handler {
	return func(p *parser, value string) error {
		normal, err := resource.NormalizeTime(value)
		if err != nil {
			p.st.LogWarn("keeping unparsable timestamp", "field", f, "value", value, "line", p.line)
		}
		return p.current.Set(f, normal)
	}
}

func virtualComponent(p *parser, value string) error {
	if err := p.current.Add(resource.FieldComponent, value); err != nil {
		return err
	}
	if err := p.current.SetType(resource.TypeVirtualCompoundHeading); err != nil {
		return fmt.Errorf("failed to mark virtual compound heading: %w", err)
	}
	return nil
}

func ignore(*parser, string) error { return nil }
