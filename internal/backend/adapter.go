package backend

import (
	"context"
	"fmt"

	"github.com/raptorflow/raptorflow/internal/positioning"
	"github.com/raptorflow/raptorflow/internal/wizard"
)

// PositioningGenerator adapts the client to the wizard's Generator port.
type PositioningGenerator struct {
	client *Client
}

// NewPositioningGenerator wraps a client for use by the workshop wizard.
func NewPositioningGenerator(client *Client) *PositioningGenerator {
	return &PositioningGenerator{client: client}
}

// Generate implements wizard.Generator.
func (g *PositioningGenerator) Generate(ctx context.Context, fields map[string]string) (any, error) {
	m, err := g.client.GeneratePositioning(ctx, fields)
	if err != nil {
		return nil, err
	}
	return m, nil
}

var _ wizard.Generator = (*PositioningGenerator)(nil)

// PositioningSaver adapts the client to the wizard's Saver port, stamping
// each save with the draft GUID it was created for.
type PositioningSaver struct {
	client *Client
	guid   string
}

// NewPositioningSaver wraps a client for saving a specific draft.
func NewPositioningSaver(client *Client, guid string) *PositioningSaver {
	return &PositioningSaver{client: client, guid: guid}
}

// Save implements wizard.Saver.
func (s *PositioningSaver) Save(ctx context.Context, fields map[string]string, result any) error {
	m, ok := result.(positioning.Map)
	if !ok {
		return fmt.Errorf("unexpected result type %T", result)
	}
	return s.client.SavePositioning(ctx, s.guid, fields, m)
}

var _ wizard.Saver = (*PositioningSaver)(nil)
