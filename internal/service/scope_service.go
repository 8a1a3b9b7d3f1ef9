package service

import (
	"sync"

	"github.com/isaackcz/Edsight-sub000/internal/geo"
	"github.com/isaackcz/Edsight-sub000/internal/models"
	"github.com/isaackcz/Edsight-sub000/internal/repository"
	"github.com/isaackcz/Edsight-sub000/internal/scope"
)

// ScopeService resolves administrator access scopes against a shared snapshot
// of the geographic tree. The hierarchy changes rarely, so the snapshot is
// cached until a geographic write invalidates it.
type ScopeService struct {
	geoRepo *repository.GeoRepository

	mu   sync.RWMutex
	tree *geo.Tree
}

// NewScopeService creates a new scope service
func NewScopeService(geoRepo *repository.GeoRepository) *ScopeService {
	return &ScopeService{geoRepo: geoRepo}
}

// Tree returns the cached geographic tree, loading it on first use
func (s *ScopeService) Tree() (*geo.Tree, error) {
	s.mu.RLock()
	tree := s.tree
	s.mu.RUnlock()

	if tree != nil {
		return tree, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tree == nil {
		tree, err := s.geoRepo.LoadTree()
		if err != nil {
			return nil, err
		}
		s.tree = tree
	}

	return s.tree, nil
}

// Invalidate drops the cached tree after a geographic write
func (s *ScopeService) Invalidate() {
	s.mu.Lock()
	s.tree = nil
	s.mu.Unlock()
}

// ResolveFor resolves the access scope of an administrator
func (s *ScopeService) ResolveFor(admin *models.Admin) (*scope.Scope, error) {
	tree, err := s.Tree()
	if err != nil {
		return nil, err
	}
	return scope.Resolve(admin, tree)
}
