package cli

import (
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/exp/charmtone"
)

// ColorSchemeFunc returns the help and error colors, based on fang's
// defaults with kubectl-style accents.
func ColorSchemeFunc(c lipgloss.LightDarkFunc) fang.ColorScheme {
	cs := fang.DefaultColorScheme(c)

	cs.Title = c(charmtone.Malibu, charmtone.Sardine)
	cs.Program = c(charmtone.Malibu, charmtone.Sardine)
	cs.Command = c(charmtone.Charple, charmtone.Hazy)
	cs.Flag = c(charmtone.Guac, charmtone.Julep)

	return cs
}
