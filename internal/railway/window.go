package railway

import (
	"context"
	"fmt"
	"time"
)

// Action is what the deployment window asks for at a given moment
type Action string

const (
	ActionNone   Action = "none"
	ActionDeploy Action = "deploy"
	ActionRemove Action = "remove"
)

// Window is a daily start/stop policy expressed as UTC hours
type Window struct {
	DeployHour int // e.g. 5 = 08:00 Kyiv summer time
	RemoveHour int
}

// DefaultWindow runs the bot from 05:00 to 19:00 UTC.
func DefaultWindow() Window {
	return Window{DeployHour: 5, RemoveHour: 19}
}

// Decide maps a moment to the action for that hour. Removal is checked first.
func (w Window) Decide(now time.Time) Action {
	hour := now.UTC().Hour()
	switch {
	case hour == w.RemoveHour:
		return ActionRemove
	case hour == w.DeployHour:
		return ActionDeploy
	default:
		return ActionNone
	}
}

// Deployer is the slice of the Railway API the reconciler uses
type Deployer interface {
	ActiveDeployment(ctx context.Context) (string, error)
	RemoveDeployment(ctx context.Context, id string) error
	TriggerDeployment(ctx context.Context) error
}

// Reconcile applies the window's decision for now and describes what it did.
func Reconcile(ctx context.Context, d Deployer, w Window, now time.Time) (string, error) {
	switch w.Decide(now) {
	case ActionRemove:
		id, err := d.ActiveDeployment(ctx)
		if err != nil {
			return "", fmt.Errorf("get active deployment: %w", err)
		}
		if id == "" {
			return "No active deployment found", nil
		}
		if err := d.RemoveDeployment(ctx, id); err != nil {
			return "", fmt.Errorf("remove deployment %s: %w", id, err)
		}
		return fmt.Sprintf("Deployment %s removed", id), nil
	case ActionDeploy:
		if err := d.TriggerDeployment(ctx); err != nil {
			return "", fmt.Errorf("trigger deployment: %w", err)
		}
		return "New deployment triggered", nil
	default:
		return "No action required at this time", nil
	}
}
