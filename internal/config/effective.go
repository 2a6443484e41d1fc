package config

import (
	"fmt"

	"github.com/1broseidon/quietwm/internal/bindings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig lays raw over DefaultConfig. Bindings set to
// "unmap" remove the matching default.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Gap != nil {
		if raw.Gap.Top != nil {
			cfg.Gap.Top = *raw.Gap.Top
		}
		if raw.Gap.Bottom != nil {
			cfg.Gap.Bottom = *raw.Gap.Bottom
		}
		if raw.Gap.Left != nil {
			cfg.Gap.Left = *raw.Gap.Left
		}
		if raw.Gap.Right != nil {
			cfg.Gap.Right = *raw.Gap.Right
		}
	}
	if raw.SnapDist != nil {
		cfg.SnapDist = *raw.SnapDist
	}
	if raw.BorderWidth != nil {
		cfg.BorderWidth = *raw.BorderWidth
	}
	if raw.MoveAmount != nil {
		cfg.MoveAmount = *raw.MoveAmount
	}
	if raw.StickyGroups != nil {
		cfg.StickyGroups = *raw.StickyGroups
	}
	if raw.Terminal != nil {
		cfg.Terminal = *raw.Terminal
	}
	if raw.Lock != nil {
		cfg.Lock = *raw.Lock
	}
	if raw.Commands != nil {
		cfg.Commands = append([]Command(nil), raw.Commands...)
	}
	if raw.Ignore != nil {
		cfg.Ignore = append([]string(nil), raw.Ignore...)
	}
	if raw.Autogroup != nil {
		cfg.Autogroup = append([]AutogroupRule(nil), raw.Autogroup...)
	}

	if raw.Bindings != nil {
		keys, err := applyBindings(cfg.Bindings.Keys, raw.Bindings.Keys, "bindings.keys", bindings.ParseKey)
		if err != nil {
			return nil, err
		}
		mouse, err := applyBindings(cfg.Bindings.Mouse, raw.Bindings.Mouse, "bindings.mouse", bindings.ParseButton)
		if err != nil {
			return nil, err
		}
		cfg.Bindings.Keys = keys
		cfg.Bindings.Mouse = mouse
	}

	if raw.Colors != nil {
		c := raw.Colors
		for _, f := range []struct {
			dst *string
			src *string
		}{
			{&cfg.Colors.Active, c.Active},
			{&cfg.Colors.Inactive, c.Inactive},
			{&cfg.Colors.Group, c.Group},
			{&cfg.Colors.Ungroup, c.Ungroup},
			{&cfg.Colors.MenuBackground, c.MenuBackground},
			{&cfg.Colors.MenuForeground, c.MenuForeground},
			{&cfg.Colors.MenuSelection, c.MenuSelection},
		} {
			if f.src != nil {
				*f.dst = *f.src
			}
		}
	}

	if raw.Logging != nil && raw.Logging.Level != nil {
		cfg.Logging.Level = *raw.Logging.Level
	}

	return cfg, nil
}

func applyBindings(defaults, overlay map[string]string, path string, parse func(string) (string, error)) (map[string]string, error) {
	out := make(map[string]string, len(defaults))
	for spec, fn := range defaults {
		out[spec] = fn
	}
	for _, spec := range sortedKeys(overlay) {
		canon, err := parse(spec)
		if err != nil {
			return nil, &ValidationError{Path: path + "." + spec, Err: err}
		}
		for existing := range out {
			if c, err := parse(existing); err == nil && c == canon {
				delete(out, existing)
			}
		}
		if fn := overlay[spec]; fn != Unmap {
			out[spec] = fn
		}
	}
	return out, nil
}
