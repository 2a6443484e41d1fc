package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/quietwm/internal/bindings"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawMargins struct {
	Top    *int `yaml:"top" toml:"top"`
	Bottom *int `yaml:"bottom" toml:"bottom"`
	Left   *int `yaml:"left" toml:"left"`
	Right  *int `yaml:"right" toml:"right"`
}

type RawBindings struct {
	Keys  map[string]string `yaml:"keys" toml:"keys"`
	Mouse map[string]string `yaml:"mouse" toml:"mouse"`
}

type RawColors struct {
	Active         *string `yaml:"active" toml:"active"`
	Inactive       *string `yaml:"inactive" toml:"inactive"`
	Group          *string `yaml:"group" toml:"group"`
	Ungroup        *string `yaml:"ungroup" toml:"ungroup"`
	MenuBackground *string `yaml:"menu_bg" toml:"menu_bg"`
	MenuForeground *string `yaml:"menu_fg" toml:"menu_fg"`
	MenuSelection  *string `yaml:"menu_sel" toml:"menu_sel"`
}

type RawLoggingConfig struct {
	Level *string `yaml:"level" toml:"level"`
}

// RawConfig is one configuration file as written. Unset fields are nil so
// later files only override what they name.
type RawConfig struct {
	Include      IncludeList       `yaml:"include" toml:"include"`
	Gap          *RawMargins       `yaml:"gap" toml:"gap"`
	SnapDist     *int              `yaml:"snap_dist" toml:"snap_dist"`
	BorderWidth  *int              `yaml:"border_width" toml:"border_width"`
	MoveAmount   *int              `yaml:"move_amount" toml:"move_amount"`
	StickyGroups *bool             `yaml:"sticky_groups" toml:"sticky_groups"`
	Terminal     *string           `yaml:"terminal" toml:"terminal"`
	Lock         *string           `yaml:"lock" toml:"lock"`
	Commands     []Command         `yaml:"commands" toml:"commands"`
	Ignore       []string          `yaml:"ignore" toml:"ignore"`
	Autogroup    []AutogroupRule   `yaml:"autogroup" toml:"autogroup"`
	Bindings     *RawBindings      `yaml:"bindings" toml:"bindings"`
	Colors       *RawColors        `yaml:"colors" toml:"colors"`
	Logging      *RawLoggingConfig `yaml:"logging" toml:"logging"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Gap != nil {
		if out.Gap == nil {
			out.Gap = &RawMargins{}
		}
		merged := mergeRawMargins(*out.Gap, *overlay.Gap)
		out.Gap = &merged
	}
	if overlay.SnapDist != nil {
		out.SnapDist = overlay.SnapDist
	}
	if overlay.BorderWidth != nil {
		out.BorderWidth = overlay.BorderWidth
	}
	if overlay.MoveAmount != nil {
		out.MoveAmount = overlay.MoveAmount
	}
	if overlay.StickyGroups != nil {
		out.StickyGroups = overlay.StickyGroups
	}
	if overlay.Terminal != nil {
		out.Terminal = overlay.Terminal
	}
	if overlay.Lock != nil {
		out.Lock = overlay.Lock
	}

	// Lists accumulate across files.
	if overlay.Commands != nil {
		out.Commands = append(append([]Command(nil), out.Commands...), overlay.Commands...)
	}
	if overlay.Ignore != nil {
		out.Ignore = append(append([]string(nil), out.Ignore...), overlay.Ignore...)
	}
	if overlay.Autogroup != nil {
		out.Autogroup = append(append([]AutogroupRule(nil), out.Autogroup...), overlay.Autogroup...)
	}

	if overlay.Bindings != nil {
		if out.Bindings == nil {
			out.Bindings = &RawBindings{}
		}
		merged := RawBindings{
			Keys:  overlayBindings(out.Bindings.Keys, overlay.Bindings.Keys, bindings.ParseKey),
			Mouse: overlayBindings(out.Bindings.Mouse, overlay.Bindings.Mouse, bindings.ParseButton),
		}
		out.Bindings = &merged
	}

	if overlay.Colors != nil {
		if out.Colors == nil {
			out.Colors = &RawColors{}
		}
		merged := mergeRawColors(*out.Colors, *overlay.Colors)
		out.Colors = &merged
	}

	if overlay.Logging != nil {
		if out.Logging == nil {
			out.Logging = &RawLoggingConfig{}
		}
		if overlay.Logging.Level != nil {
			level := *overlay.Logging.Level
			out.Logging = &RawLoggingConfig{Level: &level}
		}
	}

	return out
}

// overlayBindings lays overlay over base. Entries naming the same
// combination in different spellings ("CM-a" and "MC-a") replace each
// other.
func overlayBindings(base, overlay map[string]string, parse func(string) (string, error)) map[string]string {
	if base == nil && overlay == nil {
		return nil
	}
	out := make(map[string]string, len(base)+len(overlay))
	for spec, fn := range base {
		out[spec] = fn
	}
	for spec, fn := range overlay {
		canon := canonical(spec, parse)
		for existing := range out {
			if canonical(existing, parse) == canon {
				delete(out, existing)
			}
		}
		out[spec] = fn
	}
	return out
}

func mergeRawMargins(base RawMargins, overlay RawMargins) RawMargins {
	out := base
	if overlay.Top != nil {
		out.Top = overlay.Top
	}
	if overlay.Bottom != nil {
		out.Bottom = overlay.Bottom
	}
	if overlay.Left != nil {
		out.Left = overlay.Left
	}
	if overlay.Right != nil {
		out.Right = overlay.Right
	}
	return out
}

func mergeRawColors(base RawColors, overlay RawColors) RawColors {
	out := base
	for _, f := range []struct{ dst, src **string }{
		{&out.Active, &overlay.Active},
		{&out.Inactive, &overlay.Inactive},
		{&out.Group, &overlay.Group},
		{&out.Ungroup, &overlay.Ungroup},
		{&out.MenuBackground, &overlay.MenuBackground},
		{&out.MenuForeground, &overlay.MenuForeground},
		{&out.MenuSelection, &overlay.MenuSelection},
	} {
		if *f.src != nil {
			*f.dst = *f.src
		}
	}
	return out
}
