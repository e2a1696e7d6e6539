// AngelaMos | 2026
// service.go

package project

import (
	"context"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListProjects(ctx context.Context) ([]Project, error) {
	return s.repo.List(ctx)
}

// EnsureProjects trims names, drops blanks and repeats, and creates the
// projects that are missing.
func (s *Service) EnsureProjects(
	ctx context.Context,
	names []string,
) (int64, error) {
	seen := make(map[string]struct{}, len(names))
	clean := make([]string, 0, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		clean = append(clean, name)
	}

	if len(clean) == 0 {
		return 0, nil
	}

	return s.repo.EnsureProjects(ctx, clean)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) CountAssignments(ctx context.Context) (int64, error) {
	return s.repo.CountAssignments(ctx)
}
