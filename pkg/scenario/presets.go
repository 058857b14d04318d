package scenario

import (
	"fmt"
)

// Category separates attacker-gain scenarios from remediation scenarios
type Category string

const (
	Offensive Category = "offensive"
	Defensive Category = "defensive"
)

// Preset is a named what-if scenario
type Preset struct {
	ID        string     `json:"id" yaml:"id" validate:"required"`
	Category  Category   `json:"category" yaml:"category" validate:"oneof=offensive defensive"`
	Label     string     `json:"label" yaml:"label" validate:"required"`
	Desc      string     `json:"desc" yaml:"desc"`
	Detail    string     `json:"detail" yaml:"detail"`
	Mutations []Mutation `json:"mutations" yaml:"mutations" validate:"required,min=1"`
}

// Presets returns the built-in scenarios for the reference dataset
func Presets() []Preset {
	return []Preset{
		{
			ID:       "A",
			Category: Offensive,
			Label:    "What if Mudrek joins ServerAdmins?",
			Desc:     "Mudrek → MemberOf → ServerAdmins → AdminTo → DC01",
			Detail: "Mudrek joins ServerAdmins, gaining AdminTo on FileServer and DC01. " +
				"Opens a direct 3-hop escalation path.",
			Mutations: []Mutation{NewAddEdge("Mudrek", "MemberOf", "ServerAdmins", 3)},
		},
		{
			ID:       "B",
			Category: Offensive,
			Label:    "What if Arselan has GenericAll on DomainAdmins?",
			Desc:     "Arselan → GenericAll → DomainAdmins → AdminTo → DC01",
			Detail: "Arselan gets GenericAll on DomainAdmins and can add himself to DA " +
				"and DCSync the domain without needing Mutaz.",
			Mutations: []Mutation{NewAddEdge("Arselan", "GenericAll", "DomainAdmins", 9)},
		},
		{
			ID:       "C",
			Category: Offensive,
			Label:    "What if Workstation01 has a session of Mutaz?",
			Desc:     "WS01 → HasSession → Mutaz → GenericAll → DomainAdmins",
			Detail: "Mutaz logs into Workstation01. Anyone with AdminTo on WS01 " +
				"can steal its creds and reach DomainAdmins.",
			Mutations: []Mutation{NewAddEdge("Workstation01", "HasSession", "Mutaz", 6)},
		},
		{
			ID:       "D",
			Category: Defensive,
			Label:    "What if we revoke Mutaz → GenericAll → DomainAdmins?",
			Desc:     "Remove critical ACE (E13), blocking the main escalation",
			Detail: "Revoke Mutaz GenericAll ACE on DomainAdmins. This is the single " +
				"most dangerous edge. Expected ≥60% risk reduction.",
			Mutations: []Mutation{NewRemoveEdge("E13")},
		},
		{
			ID:       "E",
			Category: Defensive,
			Label:    "What if we disable Mutaz entirely?",
			Desc:     "Remove service account and all its edges",
			Detail: "Disable the over-privileged service account. Eliminates every " +
				"path that chains through Mutaz.",
			Mutations: []Mutation{NewRemoveNode("Mutaz")},
		},
		{
			ID:       "F",
			Category: Defensive,
			Label:    "What if we remove Arselan → WriteDACL → Mutaz?",
			Desc:     "Remove E14, a low-impact fix",
			Detail: "Remove Arselan's WriteDACL on Mutaz. Blocks one intermediate " +
				"link but leaves other paths open. Expected <15% reduction.",
			Mutations: []Mutation{NewRemoveEdge("E14")},
		},
	}
}

// Find returns the preset with the given id
func Find(presets []Preset, id string) (Preset, error) {
	for _, p := range presets {
		if p.ID == id {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("unknown scenario %q", id)
}
