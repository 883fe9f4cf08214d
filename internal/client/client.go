// Package client talks to the generative enrichment service that fills in
// products missing from the catalog and explains health scores.
package client

import (
	"context"

	"shoppa/internal/model"
)

const (
	MsgNoCredentials = "AI insights unavailable (Missing API Key)."
	MsgExplainFailed = "Unable to fetch AI health insights at this moment."
	MsgNoExplanation = "Could not generate explanation."
)

// Enricher is the enrichment collaborator. Every failure wraps
// model.ErrUnavailable. ExplainScore returns a displayable message even
// when it fails.
type Enricher interface {
	IdentifyFromImage(ctx context.Context, image []byte, mimeType string) (string, error)
	// GenerateFromQuery returns an unscored draft with a generated id and
	// mock prices.
	GenerateFromQuery(ctx context.Context, query string) (model.Product, error)
	ExplainScore(ctx context.Context, p model.ScoredProduct) (string, error)
}

type logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}
