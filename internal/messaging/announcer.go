package messaging

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vendly/internal/domain"
	"vendly/internal/outbox"
)

type ProposalFinder interface {
	FindByID(ctx context.Context, id string) (*domain.Proposal, error)
}

type MessageSender interface {
	Send(ctx context.Context, messageID, conversationID, senderID, content string, metadata map[string]string) (string, error)
}

// ProposalAnnouncer posts the chat message referencing a newly sent
// proposal. It runs from the outbox relay, so a messaging failure is
// retried there and never reaches the proposal caller.
type ProposalAnnouncer struct {
	proposals ProposalFinder
	messenger MessageSender
	logger    *zap.Logger
}

func NewProposalAnnouncer(proposals ProposalFinder, messenger MessageSender, logger *zap.Logger) *ProposalAnnouncer {
	return &ProposalAnnouncer{proposals: proposals, messenger: messenger, logger: logger}
}

// Handle implements outbox.Handler.
func (a *ProposalAnnouncer) Handle(ctx context.Context, evt outbox.Event, intent outbox.Intent) error {
	if evt.Type != outbox.EventProposalSent || intent.ProposalID == "" {
		return nil
	}

	proposal, err := a.proposals.FindByID(ctx, intent.ProposalID)
	if err != nil {
		return err
	}

	content := fmt.Sprintf("Proposal: %s (%s, delivery in %s)",
		proposal.Title, proposal.Price.StringFixed(2), proposal.DeliveryTime)
	metadata := map[string]string{
		"type":        "proposal",
		"proposal_id": proposal.ID,
	}

	// The message id is derived from the event, so a replayed event
	// collides on the primary key instead of posting a duplicate message.
	messageID := uuid.NewSHA1(uuid.NameSpaceOID, []byte("chat:"+evt.ID)).String()

	conversationID, err := a.messenger.Send(ctx, messageID, proposal.ConversationID, proposal.VendorID, content, metadata)
	if err != nil {
		return err
	}

	a.logger.Debug("proposal announced in conversation",
		zap.String("proposalId", proposal.ID),
		zap.String("conversationId", conversationID))
	return nil
}
