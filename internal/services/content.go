package services

import "github.com/elenaruiz/attribution-engine/internal/models"

// ResolveContent returns the content association of an event by checking its
// associations in priority order: quote, then asset, then product.
// Returns ok=false when the event carries none of the three.
func ResolveContent(event *models.AttributionEvent) (contentType, contentID string, ok bool) {
	switch {
	case event.QuoteID != "":
		return models.ContentQuote, event.QuoteID, true
	case event.AssetID != "":
		return models.ContentAsset, event.AssetID, true
	case event.ProductID != "":
		return models.ContentProduct, event.ProductID, true
	default:
		return "", "", false
	}
}

// ResolveContentOrSource resolves content like ResolveContent but falls back
// to the event's source id under the "unknown" content type. Used by the
// attribution calculator, which must credit every weighted touchpoint even
// when it has no direct content association.
func ResolveContentOrSource(event *models.AttributionEvent) (contentType, contentID string) {
	if ct, id, ok := ResolveContent(event); ok {
		return ct, id
	}
	return models.ContentUnknown, event.SourceID
}
