package viewmodel

// Colour palette shared by every renderer
const (
	ColorDefaultEdge = "#64748b"
	ColorRemoved     = "#ef4444"
	ColorAnimating   = "#00ff88"
	ColorHighlighted = "#facc15"
	ColorLabel       = "#e1e4ed"
	ColorLabelDimmed = "#94a3b8"
	ColorSubnet      = "#475569"

	DimmedOpacity = 0.12
	RemovedDash   = "8 4"
)

var edgeColors = map[string]string{
	"MemberOf":            "#10b981",
	"AdminTo":             "#ef4444",
	"HasSession":          "#f59e0b",
	"CanRDP":              "#8b5cf6",
	"GenericAll":          "#ec4899",
	"WriteDacl":           "#f97316",
	"WriteDACL":           "#f97316",
	"Owns":                "#14b8a6",
	"ForceChangePassword": "#6366f1",
	"ReadLAPSPassword":    "#a855f7",
	"AllExtendedRights":   "#e11d48",
	"DCSync":              "#dc2626",
}

var subnetColors = map[string]string{
	"subnet-1": "#2563eb",
	"subnet-2": "#059669",
	"subnet-3": "#d97706",
	"subnet-4": "#8b5cf6",
	"subnet-5": "#dc2626",
}

// EdgeColor returns the base colour for a relation
func EdgeColor(relation string) string {
	if c, ok := edgeColors[relation]; ok {
		return c
	}
	return ColorDefaultEdge
}

// SubnetColor returns the accent colour for a subnet cluster
func SubnetColor(subnetID string) string {
	if c, ok := subnetColors[subnetID]; ok {
		return c
	}
	return ColorSubnet
}

// EdgeStyle is the resolved visual treatment of one edge
type EdgeStyle struct {
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
	Opacity     float64 `json:"opacity"`
	Dashed      string  `json:"dashed,omitempty"`
	Animated    bool    `json:"animated"`
	MarkerColor string  `json:"markerColor"`
	LabelColor  string  `json:"labelColor"`
}

// edgeFlags is the per-edge emphasis membership
type edgeFlags struct {
	highlighted bool
	removed     bool
	animating   bool
	anyActive   bool
}

// resolveEdgeStyle applies removed > animating > highlighted > relation colour
func resolveEdgeStyle(relation string, f edgeFlags) EdgeStyle {
	base := EdgeColor(relation)
	s := EdgeStyle{
		Stroke:      base,
		StrokeWidth: 2.5,
		Opacity:     1,
		Animated:    f.highlighted || f.animating,
		MarkerColor: base,
		LabelColor:  ColorLabel,
	}

	switch {
	case f.removed:
		s.Stroke = ColorRemoved
	case f.animating:
		s.Stroke = ColorAnimating
	case f.highlighted:
		s.Stroke = ColorHighlighted
	}

	switch {
	case f.animating:
		s.StrokeWidth = 5
	case f.highlighted:
		s.StrokeWidth = 4
	case f.removed:
		s.StrokeWidth = 3
	}

	switch {
	case f.removed:
		s.MarkerColor = ColorRemoved
		s.Dashed = RemovedDash
	case f.highlighted:
		s.MarkerColor = ColorHighlighted
	}

	if f.anyActive && !f.highlighted && !f.removed {
		s.Opacity = DimmedOpacity
		s.LabelColor = ColorLabelDimmed
	}
	return s
}
