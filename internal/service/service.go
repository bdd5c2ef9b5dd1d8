package service

import (
	"github.com/carson-networks/ledger-forensics/internal/engine"
	"github.com/carson-networks/ledger-forensics/internal/storage"
)

// Service holds all business logic services.
type Service struct {
	Analysis *AnalysisService
}

// NewService creates a new Service. store may be nil when no Postgres
// source is configured.
func NewService(eng *engine.Engine, store *storage.Storage) *Service {
	return &Service{
		Analysis: NewAnalysisService(eng, store),
	}
}
