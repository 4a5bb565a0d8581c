package service

import (
	"vendly/internal/domain"
	"vendly/internal/errors"
	"vendly/internal/outbox"
)

type Action string

const (
	ActionRequestService Action = "request_service"
	ActionSendProposal   Action = "send_proposal"
	ActionAcceptProposal Action = "accept_proposal"
	ActionCancel         Action = "cancel"
	ActionPayAdvance     Action = "pay_advance"
	ActionDeliver        Action = "deliver"
	ActionAcceptDelivery Action = "accept_delivery"
	ActionPayRemaining   Action = "pay_remaining"
)

type edge struct {
	role domain.Role
	from map[domain.Status]bool
	to   domain.Status
}

func statuses(ss ...domain.Status) map[domain.Status]bool {
	set := make(map[domain.Status]bool, len(ss))
	for _, s := range ss {
		set[s] = true
	}
	return set
}

// transitions is the full actor-gated state machine. Any (status, action,
// role) triple outside this table is an invalid transition; terminal
// states appear in no edge's from-set, so they reject every action.
var transitions = map[Action]edge{
	ActionSendProposal: {
		role: domain.RoleVendor,
		from: statuses(domain.StatusNew),
		to:   domain.StatusProposalSent,
	},
	ActionAcceptProposal: {
		role: domain.RoleClient,
		from: statuses(domain.StatusProposalSent),
		to:   domain.StatusAwaitingPayment,
	},
	ActionCancel: {
		role: domain.RoleClient,
		from: statuses(domain.StatusNew, domain.StatusProposalSent, domain.StatusAwaitingPayment),
		to:   domain.StatusCancelled,
	},
	ActionPayAdvance: {
		role: domain.RoleClient,
		from: statuses(domain.StatusAwaitingPayment),
		to:   domain.StatusInProgress,
	},
	ActionDeliver: {
		role: domain.RoleVendor,
		from: statuses(domain.StatusInProgress),
		to:   domain.StatusDelivered,
	},
	ActionAcceptDelivery: {
		role: domain.RoleClient,
		from: statuses(domain.StatusDelivered),
		to:   domain.StatusAwaitingRemainingPayment,
	},
	ActionPayRemaining: {
		role: domain.RoleClient,
		from: statuses(domain.StatusAwaitingRemainingPayment),
		to:   domain.StatusCompleted,
	},
}

var eventTypes = map[Action]string{
	ActionSendProposal:   outbox.EventProposalSent,
	ActionAcceptProposal: outbox.EventProposalAccepted,
	ActionCancel:         outbox.EventOrderCancelled,
	ActionPayAdvance:     outbox.EventAdvancePaid,
	ActionDeliver:        outbox.EventWorkDelivered,
	ActionAcceptDelivery: outbox.EventDeliveryAccepted,
	ActionPayRemaining:   outbox.EventRemainingPaid,
}

// nextStatus resolves the target status for an action, or rejects it.
func nextStatus(current domain.Status, action Action, actor domain.Actor) (domain.Status, error) {
	e, ok := transitions[action]
	if !ok || e.role != actor.Role || !e.from[current] {
		return "", errors.NewInvalidTransitionError(string(current), string(action), string(actor.Role))
	}
	return e.to, nil
}
