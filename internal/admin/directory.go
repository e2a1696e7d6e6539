// AngelaMos | 2026
// directory.go

package admin

import (
	"context"
)

type UserCounter interface {
	CountByRole(ctx context.Context) (map[string]int64, error)
}

type ProjectCounter interface {
	Count(ctx context.Context) (int64, error)
	CountAssignments(ctx context.Context) (int64, error)
}

type directory struct {
	users    UserCounter
	projects ProjectCounter
}

// NewDirectory joins the user and project services into a DirectoryCounter.
func NewDirectory(users UserCounter, projects ProjectCounter) DirectoryCounter {
	return &directory{users: users, projects: projects}
}

func (d *directory) CountUsersByRole(ctx context.Context) (map[string]int64, error) {
	return d.users.CountByRole(ctx)
}

func (d *directory) CountProjects(ctx context.Context) (int64, error) {
	return d.projects.Count(ctx)
}

func (d *directory) CountAssignments(ctx context.Context) (int64, error) {
	return d.projects.CountAssignments(ctx)
}
