package registry

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Args are the validated arguments handed to a Handler, one Value per
// declared parameter.
type Args map[string]Value

func (a Args) Str(name string) string { return a[name].Str() }
func (a Args) Num(name string) float64 { return a[name].Num() }
func (a Args) Bool(name string) bool { return a[name].Bool() }

// Map returns the arguments as plain Go values.
func (a Args) Map() map[string]any {
	out := make(map[string]any, len(a))
	for k, v := range a {
		out[k] = v.Any()
	}
	return out
}

// Decode copies the arguments into the struct pointed to by out, matching
// fields by their mapstructure tag.
func (a Args) Decode(out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "mapstructure",
		Result:      out,
		ErrorUnused: false,
	})
	if err != nil {
		return fmt.Errorf("creating argument decoder: %w", err)
	}
	if err := decoder.Decode(a.Map()); err != nil {
		return fmt.Errorf("decoding arguments: %w", err)
	}
	return nil
}
