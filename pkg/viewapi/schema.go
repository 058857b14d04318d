package viewapi

import (
	"fmt"

	"github.com/dd0wney/cluso-pathview/pkg/controller"
	"github.com/dd0wney/cluso-pathview/pkg/dataset"
	"github.com/dd0wney/cluso-pathview/pkg/scenario"
	"github.com/dd0wney/cluso-pathview/pkg/viewmodel"
	"github.com/graphql-go/graphql"
)

var positionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Position",
	Fields: graphql.Fields{
		"x": &graphql.Field{Type: graphql.Float},
		"y": &graphql.Field{Type: graphql.Float},
	},
})

var viewNodeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ViewNode",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"label":       &graphql.Field{Type: graphql.String},
		"type":        &graphql.Field{Type: graphql.String},
		"highValue":   &graphql.Field{Type: graphql.Boolean},
		"highlighted": &graphql.Field{Type: graphql.Boolean},
		"animActive":  &graphql.Field{Type: graphql.Boolean},
		"dimmed":      &graphql.Field{Type: graphql.Boolean},
		"isCluster":   &graphql.Field{Type: graphql.Boolean},
		"subnetId":    &graphql.Field{Type: graphql.String},
		"memberCount": &graphql.Field{Type: graphql.Int},
		"color":       &graphql.Field{Type: graphql.String},
		"position":    &graphql.Field{Type: positionType},
	},
})

var edgeStyleType = graphql.NewObject(graphql.ObjectConfig{
	Name: "EdgeStyle",
	Fields: graphql.Fields{
		"stroke":      &graphql.Field{Type: graphql.String},
		"strokeWidth": &graphql.Field{Type: graphql.Float},
		"opacity":     &graphql.Field{Type: graphql.Float},
		"dashed":      &graphql.Field{Type: graphql.String},
		"animated":    &graphql.Field{Type: graphql.Boolean},
		"markerColor": &graphql.Field{Type: graphql.String},
		"labelColor":  &graphql.Field{Type: graphql.String},
	},
})

var viewEdgeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ViewEdge",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"source":      &graphql.Field{Type: graphql.String},
		"target":      &graphql.Field{Type: graphql.String},
		"label":       &graphql.Field{Type: graphql.String},
		"weight":      &graphql.Field{Type: graphql.Float},
		"highlighted": &graphql.Field{Type: graphql.Boolean},
		"removed":     &graphql.Field{Type: graphql.Boolean},
		"animActive":  &graphql.Field{Type: graphql.Boolean},
		"dimmed":      &graphql.Field{Type: graphql.Boolean},
		"style":       &graphql.Field{Type: edgeStyleType},
	},
})

var statsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ViewStats",
	Fields: graphql.Fields{
		"nodes":       &graphql.Field{Type: graphql.Int},
		"edges":       &graphql.Field{Type: graphql.Int},
		"highlighted": &graphql.Field{Type: graphql.Int},
		"clusters":    &graphql.Field{Type: graphql.Int},
	},
})

var viewType = graphql.NewObject(graphql.ObjectConfig{
	Name: "View",
	Fields: graphql.Fields{
		"nodes": &graphql.Field{Type: graphql.NewList(viewNodeType)},
		"edges": &graphql.Field{Type: graphql.NewList(viewEdgeType)},
		"highlightSource": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return string(p.Source.(*viewmodel.Model).Highlight), nil
			},
		},
		"stats": &graphql.Field{Type: statsType},
	},
})

var pathType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Path",
	Fields: graphql.Fields{
		"pathId":           &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"nodes":            &graphql.Field{Type: graphql.NewList(graphql.String)},
		"edgeTypes":        &graphql.Field{Type: graphql.NewList(graphql.String)},
		"hops":             &graphql.Field{Type: graphql.Int},
		"sumWeights":       &graphql.Field{Type: graphql.Float},
		"risk":             &graphql.Field{Type: graphql.Float},
		"normalizedScore":  &graphql.Field{Type: graphql.Float},
		"impactEstimation": &graphql.Field{Type: graphql.String},
		"throughCritical":  &graphql.Field{Type: graphql.Boolean},
	},
})

var presetType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ScenarioPreset",
	Fields: graphql.Fields{
		"id": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"category": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return string(p.Source.(scenario.Preset).Category), nil
			},
		},
		"label":  &graphql.Field{Type: graphql.String},
		"desc":   &graphql.Field{Type: graphql.String},
		"detail": &graphql.Field{Type: graphql.String},
	},
})

// stateType flattens the controller snapshot to the fields a renderer polls
var stateType = graphql.NewObject(graphql.ObjectConfig{
	Name: "State",
	Fields: graphql.Fields{
		"datasetVersion": &graphql.Field{
			Type: graphql.Int,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return int(p.Source.(controller.State).DatasetVersion), nil
			},
		},
		"startOptions":     &graphql.Field{Type: graphql.NewList(graphql.String)},
		"selectedPathId":   &graphql.Field{Type: graphql.String},
		"scenarioLabel":    &graphql.Field{Type: graphql.String},
		"explanation":      &graphql.Field{Type: graphql.String},
		"showExplanation":  &graphql.Field{Type: graphql.Boolean},
		"loading":          &graphql.Field{Type: graphql.Boolean},
		"datasetUploading": &graphql.Field{Type: graphql.Boolean},
		"error":            &graphql.Field{Type: graphql.String},
		"clusterView":      &graphql.Field{Type: graphql.Boolean},
		"expandedSubnets": &graphql.Field{
			Type: graphql.NewList(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(controller.State).Expanded(), nil
			},
		},
		"focusNode": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(controller.State).Focus.Node, nil
			},
		},
		"focusRadius": &graphql.Field{
			Type: graphql.Int,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(controller.State).Focus.Radius, nil
			},
		},
		"animationStatus": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(controller.State).Animation.Status, nil
			},
		},
		"animationPathId": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(controller.State).Animation.PathID, nil
			},
		},
		"animationStep": &graphql.Field{
			Type: graphql.Int,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(controller.State).Animation.Step, nil
			},
		},
	},
})

// eventArgs mirrors the scalar fields of Event
var eventArgs = graphql.FieldConfigArgument{
	"type":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	"pathId":     &graphql.ArgumentConfig{Type: graphql.String},
	"nodeName":   &graphql.ArgumentConfig{Type: graphql.String},
	"subnetId":   &graphql.ArgumentConfig{Type: graphql.String},
	"relation":   &graphql.ArgumentConfig{Type: graphql.String},
	"scenarioId": &graphql.ArgumentConfig{Type: graphql.String},
	"target":     &graphql.ArgumentConfig{Type: graphql.String},
	"startNodes": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
	"radius":     &graphql.ArgumentConfig{Type: graphql.Int},
	"step":       &graphql.ArgumentConfig{Type: graphql.Int},
	"speedMs":    &graphql.ArgumentConfig{Type: graphql.Int},
}

func eventFromArgs(args map[string]any) Event {
	str := func(k string) string {
		s, _ := args[k].(string)
		return s
	}
	num := func(k string) int {
		n, _ := args[k].(int)
		return n
	}
	ev := Event{
		Type:       str("type"),
		PathID:     str("pathId"),
		NodeName:   str("nodeName"),
		SubnetID:   str("subnetId"),
		Relation:   str("relation"),
		ScenarioID: str("scenarioId"),
		Target:     str("target"),
		Radius:     num("radius"),
		Step:       num("step"),
		SpeedMs:    num("speedMs"),
	}
	if list, ok := args["startNodes"].([]any); ok {
		for _, v := range list {
			if s, ok := v.(string); ok {
				ev.StartNodes = append(ev.StartNodes, s)
			}
		}
	}
	return ev
}

// NewSchema builds the GraphQL schema over ctrl
func NewSchema(ctrl *controller.Controller) (graphql.Schema, error) {
	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"health": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return "ok", nil
				},
			},
			"view": &graphql.Field{
				Type: viewType,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return ctrl.View(), nil
				},
			},
			"state": &graphql.Field{
				Type: stateType,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return ctrl.Snapshot(), nil
				},
			},
			"paths": &graphql.Field{
				Type: graphql.NewList(pathType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					a := ctrl.Snapshot().Analysis
					if a == nil {
						return []dataset.PathInfo{}, nil
					}
					return a.Paths, nil
				},
			},
			"path": &graphql.Field{
				Type: pathType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(string)
					path, ok := ctrl.Snapshot().Analysis.FindPath(id)
					if !ok {
						return nil, nil
					}
					return path, nil
				},
			},
			"presets": &graphql.Field{
				Type: graphql.NewList(presetType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return scenario.Presets(), nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"dispatch": &graphql.Field{
				Type:        stateType,
				Description: "Apply a UI event and return the resulting state",
				Args:        eventArgs,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if err := Dispatch(p.Context, ctrl, eventFromArgs(p.Args)); err != nil {
						return nil, err
					}
					return ctrl.Snapshot(), nil
				},
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}
	return schema, nil
}
