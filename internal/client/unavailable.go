package client

import (
	"context"

	"github.com/pkg/errors"

	"shoppa/internal/model"
)

// Unavailable is the Enricher used when no project is configured.
type Unavailable struct{}

func (Unavailable) IdentifyFromImage(context.Context, []byte, string) (string, error) {
	return "", errors.Wrap(model.ErrUnavailable, "enrichment not configured")
}

func (Unavailable) GenerateFromQuery(context.Context, string) (model.Product, error) {
	return model.Product{}, errors.Wrap(model.ErrUnavailable, "enrichment not configured")
}

func (Unavailable) ExplainScore(context.Context, model.ScoredProduct) (string, error) {
	return MsgNoCredentials, errors.Wrap(model.ErrUnavailable, "enrichment not configured")
}
