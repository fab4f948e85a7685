package api

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rileyhilliard/nevconsole/internal/errors"
)

// SessionDescription is an SDP blob and its type ("offer" or "answer").
type SessionDescription struct {
	SDP  string `json:"sdp"`
	Type string `json:"type"`
}

// Offer posts a local offer to the negotiation endpoint and returns the
// remote answer. Every failure is a NEGOTIATION error.
func (c *Client) Offer(ctx context.Context, offer SessionDescription) (SessionDescription, error) {
	var answer SessionDescription
	if err := c.PostJSON(ctx, PathOffer, uuid.NewString(), offer, &answer); err != nil {
		return SessionDescription{}, errors.WrapWithCode(err, errors.ErrNegotiation,
			"Media offer was not accepted",
			"The backend may not have a camera source available")
	}
	if answer.SDP == "" {
		return SessionDescription{}, errors.New(errors.ErrNegotiation,
			"Media answer has no SDP", "")
	}
	if answer.Type != "answer" && answer.Type != "pranswer" {
		return SessionDescription{}, errors.New(errors.ErrNegotiation,
			fmt.Sprintf("Media answer has unexpected type %q", answer.Type), "")
	}
	return answer, nil
}
