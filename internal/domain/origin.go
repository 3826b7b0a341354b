package domain

import (
	"fmt"
	"strings"
)

// OriginKind distinguishes what entity a scheduled check is about.
type OriginKind string

const (
	OriginProject   OriginKind = "PROJECT"
	OriginMilestone OriginKind = "MILESTONE"
)

// Origin identifies the entity a scheduled check and resulting notification
// are about. A milestone origin always carries its owning project id so the
// fire path can resolve recipients without an extra lookup chain.
type Origin struct {
	Kind        OriginKind
	ProjectID   string
	MilestoneID string
}

func NewProjectOrigin(projectID string) Origin {
	return Origin{Kind: OriginProject, ProjectID: projectID}
}

func NewMilestoneOrigin(projectID, milestoneID string) Origin {
	return Origin{Kind: OriginMilestone, ProjectID: projectID, MilestoneID: milestoneID}
}

// ID returns the identifier used for job identity: the milestone id for
// milestone origins, the project id otherwise.
func (o Origin) ID() string {
	if o.Kind == OriginMilestone {
		return o.MilestoneID
	}
	return o.ProjectID
}

func (o Origin) Validate() error {
	switch o.Kind {
	case OriginProject:
		if strings.TrimSpace(o.ProjectID) == "" {
			return fmt.Errorf("%w: project origin requires a project id", ErrValidation)
		}
	case OriginMilestone:
		if strings.TrimSpace(o.ProjectID) == "" || strings.TrimSpace(o.MilestoneID) == "" {
			return fmt.Errorf("%w: milestone origin requires project and milestone ids", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: invalid origin kind %q", ErrValidation, o.Kind)
	}
	return nil
}
