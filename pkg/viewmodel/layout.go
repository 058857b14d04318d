package viewmodel

// Position represents a 2D coordinate
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Layout assigns fixed positions. Table entries are node centres; Place returns
// the top-left corner of the node box.
type Layout struct {
	Centers    map[string]Position
	NodeWidth  float64
	NodeHeight float64
	Fallback   Position
}

// DefaultLayout is the hand-tuned placement of the reference dataset: the domain
// controller on top, privilege tiers flowing downward.
func DefaultLayout() Layout {
	return Layout{
		Centers: map[string]Position{
			"DC01":          {X: 750, Y: 80},
			"DomainAdmins":  {X: 380, Y: 260},
			"Sultan":        {X: 1100, Y: 260},
			"Mutaz":         {X: 180, Y: 480},
			"ServerAdmins":  {X: 430, Y: 680},
			"FileServer":    {X: 130, Y: 820},
			"Arselan":       {X: 780, Y: 560},
			"HelpDesk":      {X: 480, Y: 930},
			"Workstation01": {X: 1150, Y: 780},
			"Mudrek":        {X: 960, Y: 1080},
		},
		NodeWidth:  190,
		NodeHeight: 78,
		Fallback:   Position{X: 1300, Y: 500},
	}
}

// WithOverrides returns a copy whose table is extended (or replaced per name) by centers
func (l Layout) WithOverrides(centers map[string]Position) Layout {
	merged := make(map[string]Position, len(l.Centers)+len(centers))
	for k, v := range l.Centers {
		merged[k] = v
	}
	for k, v := range centers {
		merged[k] = v
	}
	l.Centers = merged
	return l
}

// Place returns the position for a render id. Unknown ids, cluster ids included,
// get the fallback.
func (l Layout) Place(id string) (Position, bool) {
	c, ok := l.Centers[id]
	if !ok {
		return l.Fallback, false
	}
	return Position{X: c.X - l.NodeWidth/2, Y: c.Y - l.NodeHeight/2}, true
}
