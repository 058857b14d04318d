package viewapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-pathview/pkg/controller"
	"github.com/dd0wney/cluso-pathview/pkg/scenario"
	"github.com/dd0wney/cluso-pathview/pkg/validation"
)

// Event types accepted by POST /events and the GraphQL dispatch mutation
const (
	EventLoadGraph         = "loadGraph"
	EventRunAnalysis       = "runAnalysis"
	EventSelectPath        = "selectPath"
	EventRunPreset         = "runPreset"
	EventRunScenario       = "runScenario"
	EventLoadExplanation   = "loadExplanation"
	EventCloseExplanation  = "closeExplanation"
	EventResetDataset      = "resetDataset"
	EventToggleCluster     = "toggleCluster"
	EventToggleSubnet      = "toggleSubnet"
	EventSetNodeFilters    = "setNodeFilters"
	EventSetEdgeFilters    = "setEdgeFilters"
	EventToggleEdgeType    = "toggleEdgeType"
	EventResetFilters      = "resetFilters"
	EventSetFocus          = "setFocus"
	EventSetRadius         = "setRadius"
	EventStartAnimation    = "startAnimation"
	EventStopAnimation     = "stopAnimation"
	EventPauseAnimation    = "pauseAnimation"
	EventResumeAnimation   = "resumeAnimation"
	EventReplayAnimation   = "replayAnimation"
	EventSetAnimationStep  = "setAnimationStep"
	EventSetAnimationSpeed = "setAnimationSpeed"
	EventClearError        = "clearError"
)

// ErrUnknownEvent is returned for an unrecognised event type
var ErrUnknownEvent = errors.New("unknown event type")

// Event is one UI interaction. Only the fields its Type reads need be set.
type Event struct {
	Type string `json:"type" validate:"required"`

	PathID     string `json:"pathId,omitempty"`
	NodeName   string `json:"nodeName,omitempty"`
	SubnetID   string `json:"subnetId,omitempty"`
	Relation   string `json:"relation,omitempty"`
	ScenarioID string `json:"scenarioId,omitempty"`
	Label      string `json:"label,omitempty"`

	StartNodes []string            `json:"startNodes,omitempty"`
	Target     string              `json:"target,omitempty"`
	Mutations  []scenario.Mutation `json:"mutations,omitempty"`

	Radius  int `json:"radius,omitempty"`
	Step    int `json:"step,omitempty"`
	SpeedMs int `json:"speedMs,omitempty"`

	NodeFilters *controller.NodeFilterPatch `json:"nodeFilters,omitempty"`
	EdgeFilters *controller.EdgeFilterPatch `json:"edgeFilters,omitempty"`
}

// Dispatch applies ev to ctrl. Backend-bound events block until the request
// settles; their failures are also surfaced in the state's error banner.
func Dispatch(ctx context.Context, ctrl *controller.Controller, ev Event) error {
	if err := validation.Struct(ev); err != nil {
		return err
	}

	switch ev.Type {
	case EventLoadGraph:
		return ctrl.LoadGraph(ctx)
	case EventRunAnalysis:
		return ctrl.RunAnalysis(ctx, ev.StartNodes, ev.Target)
	case EventSelectPath:
		if ev.PathID != "" {
			if err := validation.ValidatePathID(ev.PathID); err != nil {
				return err
			}
		}
		ctrl.SelectPath(ev.PathID)
	case EventRunPreset:
		return ctrl.RunPreset(ctx, ev.ScenarioID)
	case EventRunScenario:
		if ev.ScenarioID == "" || len(ev.Mutations) == 0 {
			return fmt.Errorf("%s: scenarioId and mutations are required", ev.Type)
		}
		return ctrl.RunScenario(ctx, ev.ScenarioID, ev.Label, ev.Mutations)
	case EventLoadExplanation:
		if err := validation.ValidatePathID(ev.PathID); err != nil {
			return err
		}
		return ctrl.LoadExplanation(ctx, ev.PathID)
	case EventCloseExplanation:
		ctrl.CloseExplanation()
	case EventResetDataset:
		return ctrl.ResetDataset(ctx)
	case EventToggleCluster:
		ctrl.ToggleClusterView()
	case EventToggleSubnet:
		if ev.SubnetID == "" {
			return fmt.Errorf("%s: subnetId is required", ev.Type)
		}
		ctrl.ToggleSubnet(ev.SubnetID)
	case EventSetNodeFilters:
		if ev.NodeFilters == nil {
			return fmt.Errorf("%s: nodeFilters is required", ev.Type)
		}
		ctrl.SetNodeFilters(*ev.NodeFilters)
	case EventSetEdgeFilters:
		if ev.EdgeFilters == nil {
			return fmt.Errorf("%s: edgeFilters is required", ev.Type)
		}
		return ctrl.SetEdgeFilters(*ev.EdgeFilters)
	case EventToggleEdgeType:
		if ev.Relation == "" {
			return fmt.Errorf("%s: relation is required", ev.Type)
		}
		ctrl.ToggleEdgeType(ev.Relation)
	case EventResetFilters:
		ctrl.ResetFilters()
	case EventSetFocus:
		if ev.NodeName != "" {
			if err := validation.ValidateNodeName(ev.NodeName); err != nil {
				return err
			}
		}
		ctrl.SetFocusNode(ctx, ev.NodeName)
	case EventSetRadius:
		return ctrl.SetFocusRadius(ctx, ev.Radius)
	case EventStartAnimation:
		if err := validation.ValidatePathID(ev.PathID); err != nil {
			return err
		}
		return ctrl.StartAnimation(ev.PathID)
	case EventStopAnimation:
		ctrl.StopAnimation()
	case EventPauseAnimation:
		ctrl.PauseAnimation()
	case EventResumeAnimation:
		return ctrl.ResumeAnimation()
	case EventReplayAnimation:
		return ctrl.ReplayAnimation()
	case EventSetAnimationStep:
		return ctrl.SetAnimationStep(ev.Step)
	case EventSetAnimationSpeed:
		return ctrl.SetAnimationSpeed(ev.SpeedMs)
	case EventClearError:
		ctrl.ClearError()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
	return nil
}
