// Package output describes the synthetic output advertised to clients in
// place of a physical monitor.
package output

import "fmt"

// Mode is a display mode. Refresh is in millihertz.
type Mode struct {
	Width     int
	Height    int
	Refresh   int
	Preferred bool
	Current   bool
}

// Output is what clients are told about the screen they render for.
type Output struct {
	Make     string
	Model    string
	Name     string
	WidthMM  int
	HeightMM int
	Scale    int
	Modes    []Mode
}

// Synthetic returns the headset's stand-in output.
func Synthetic() Output {
	return Output{
		Make:     "xrdesk",
		Model:    "xrdesk",
		Name:     "XR-1",
		WidthMM:  1200,
		HeightMM: 1200,
		Scale:    1,
		Modes: []Mode{
			{Width: 1920, Height: 1080, Refresh: 144000, Preferred: true, Current: true},
		},
	}
}

// CurrentMode returns the mode flagged current.
func (o Output) CurrentMode() (Mode, bool) {
	for _, m := range o.Modes {
		if m.Current {
			return m, true
		}
	}
	return Mode{}, false
}

func (o Output) String() string {
	m, ok := o.CurrentMode()
	if !ok {
		return fmt.Sprintf("%s %s (%s, no mode)", o.Make, o.Model, o.Name)
	}
	return fmt.Sprintf("%s %s (%s, %dx%d@%.3fHz, %dx%dmm)",
		o.Make, o.Model, o.Name, m.Width, m.Height, float64(m.Refresh)/1000, o.WidthMM, o.HeightMM)
}
