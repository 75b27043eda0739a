package welltrend

import (
	"context"

	"github.com/google/uuid"

	"welltrend/internal/catalog"
)

// --------------------
// Trend item DTOs
// --------------------

type TrendItem struct {
	StandardType int    `json:"standard_type"`
	Address      int    `json:"address"`
	Description  string `json:"description"`
	UnitType     int    `json:"unit_type"`
	// Source is "catalog" or "override".
	Source string `json:"source"`
}

func fromTrendItems(items []catalog.TrendItem) []TrendItem {
	out := make([]TrendItem, 0, len(items))
	for _, it := range items {
		out = append(out, TrendItem{
			StandardType: it.StandardType,
			Address:      it.Address,
			Description:  it.Description,
			UnitType:     it.UnitType,
			Source:       it.Source.String(),
		})
	}
	return out
}

// --------------------
// Trend item operations
// --------------------

// TrendItems returns the parameters of nodeID that have recorded history.
func (c *Client) TrendItems(ctx context.Context, nodeID string) ([]TrendItem, error) {
	items, err := c.svc.Engine.ResolveTrendItems(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	return fromTrendItems(items), nil
}

func (c *Client) TrendItemsForAsset(ctx context.Context, assetID uuid.UUID) ([]TrendItem, error) {
	items, err := c.svc.Engine.ResolveTrendItemsForAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	return fromTrendItems(items), nil
}

func (c *Client) TrendItemsForType(ctx context.Context, nodeID string, standardType int) ([]TrendItem, error) {
	items, err := c.svc.Engine.TrendItemsForType(ctx, nodeID, standardType)
	if err != nil {
		return nil, err
	}
	return fromTrendItems(items), nil
}

// TrendItemsAsync is TrendItems on a separate goroutine.
func (c *Client) TrendItemsAsync(ctx context.Context, nodeID string) <-chan Result[[]TrendItem] {
	return async(ctx, func(ctx context.Context) ([]TrendItem, error) { return c.TrendItems(ctx, nodeID) })
}

func (c *Client) TrendItemsForAssetAsync(ctx context.Context, assetID uuid.UUID) <-chan Result[[]TrendItem] {
	return async(ctx, func(ctx context.Context) ([]TrendItem, error) { return c.TrendItemsForAsset(ctx, assetID) })
}
