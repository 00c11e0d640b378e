package workflow

import (
	"context"

	"fiber-erp/models"

	"golang.org/x/exp/slices"
)

// Directory is the organizational lookup the engine depends on. The concrete
// implementation lives in repositories.
type Directory interface {
	BranchExists(ctx context.Context, id uint) (bool, error)
	ActorExists(ctx context.Context, id uint) (bool, error)
	ActorBranchIDs(ctx context.Context, actorID uint) ([]uint, error)
}

// CapabilityEvaluator answers whether an actor holds a capability code.
type CapabilityEvaluator interface {
	HasCapability(ctx context.Context, actorID uint, code string) (bool, error)
}

type BranchScope int

const (
	// ScopeNone: any branch may perform the action.
	ScopeNone BranchScope = iota
	// ScopeFromBranch: the actor must belong to the sending branch.
	ScopeFromBranch
	// ScopeToBranch: the actor must belong to the receiving branch.
	ScopeToBranch
)

// ScopePolicy maps each action to the branch association it requires.
// It is a configuration point, not a hardcoded rule.
type ScopePolicy map[models.TransferAction]BranchScope

func DefaultScopePolicy() ScopePolicy {
	return ScopePolicy{
		models.TransferActionApprove:  ScopeNone,
		models.TransferActionReject:   ScopeNone,
		models.TransferActionDispatch: ScopeFromBranch,
		models.TransferActionReceive:  ScopeToBranch,
		models.TransferActionCancel:   ScopeNone,
	}
}

var actionCapabilities = map[models.TransferAction]string{
	models.TransferActionApprove:  "TRANSFER.APPROVE",
	models.TransferActionReject:   "TRANSFER.REJECT",
	models.TransferActionDispatch: "TRANSFER.DISPATCH",
	models.TransferActionReceive:  "TRANSFER.RECEIVE",
	models.TransferActionCancel:   "TRANSFER.CANCEL",
}

// Gate decides whether an actor may perform a transition. It holds no state
// of its own and is safe for concurrent use.
type Gate struct {
	caps   CapabilityEvaluator
	dir    Directory
	policy ScopePolicy
}

func NewGate(caps CapabilityEvaluator, dir Directory, policy ScopePolicy) *Gate {
	if policy == nil {
		policy = DefaultScopePolicy()
	}
	return &Gate{caps: caps, dir: dir, policy: policy}
}

// CanPerform returns nil when the actor is allowed to apply action to the
// transfer. Denials are forbidden errors, never invalid_transition, so the
// caller can render the right response.
func (g *Gate) CanPerform(ctx context.Context, actorID uint, transfer *models.Transfer, action models.TransferAction) error {
	code, ok := actionCapabilities[action]
	if !ok {
		return NewError(KindForbidden, "no capability is mapped to action %s", action)
	}

	allowed, err := g.caps.HasCapability(ctx, actorID, code)
	if err != nil {
		return WrapError(KindUnavailable, err, "capability check for %s failed", code)
	}
	if !allowed {
		return NewError(KindForbidden, "actor %d lacks capability %s", actorID, code)
	}

	switch g.policy[action] {
	case ScopeFromBranch:
		return g.requireBranch(ctx, actorID, transfer.FromBranchID, action)
	case ScopeToBranch:
		return g.requireBranch(ctx, actorID, transfer.ToBranchID, action)
	}

	return nil
}

func (g *Gate) requireBranch(ctx context.Context, actorID, branchID uint, action models.TransferAction) error {
	branches, err := g.dir.ActorBranchIDs(ctx, actorID)
	if err != nil {
		return WrapError(KindUnavailable, err, "branch membership lookup for actor %d failed", actorID)
	}
	if !slices.Contains(branches, branchID) {
		return NewError(KindForbidden, "actor %d is not associated with branch %d required for %s",
			actorID, branchID, action)
	}
	return nil
}
