// Package server exposes the shopping assistant as a local JSON API for a
// single session.
package server

import (
	"time"

	"shoppa/internal/catalog"
	"shoppa/internal/identity"
	"shoppa/internal/resolver"
	"shoppa/internal/shoplist"
)

type Server struct {
	Catalog  *catalog.Catalog
	Resolver *resolver.Service
	Lists    *shoplist.Store
	Users    *identity.Provider
	Logger   logger
	// EnrichmentTimeout bounds every call that may reach the enricher.
	EnrichmentTimeout time.Duration
}

type logger interface {
	Tracef(format string, v ...any)
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}
