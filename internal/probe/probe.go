// Package probe derives the installation state of the package manager.
package probe

import "encoding/json"

// State is derived on demand and never stored.
type State int

const (
	NotInstalled State = iota
	InstalledNotInitialized
	InstalledAndInitialized
)

func (s State) String() string {
	switch s {
	case InstalledNotInitialized:
		return "installed-not-initialized"
	case InstalledAndInitialized:
		return "installed-and-initialized"
	default:
		return "not-installed"
	}
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Derive maps the two independent facts onto a State. Initialization only
// counts once the executable resolves.
func Derive(installed, initialized bool) State {
	switch {
	case !installed:
		return NotInstalled
	case !initialized:
		return InstalledNotInitialized
	default:
		return InstalledAndInitialized
	}
}

// Source answers the two questions the probe asks.
type Source interface {
	IsExecutableAvailable() bool
	InitMarkerPresent() bool
}

type Prober struct {
	src Source
}

func New(src Source) *Prober {
	return &Prober{src: src}
}

// Probe checks executable resolution first and only then the marker.
func (p *Prober) Probe() State {
	if !p.src.IsExecutableAvailable() {
		return NotInstalled
	}
	return Derive(true, p.src.InitMarkerPresent())
}

// Initialized reports the marker fact on its own.
func (p *Prober) Initialized() bool {
	return p.src.InitMarkerPresent()
}
