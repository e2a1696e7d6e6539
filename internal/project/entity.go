// AngelaMos | 2026
// entity.go

package project

import (
	"time"
)

type Project struct {
	ID        int64     `db:"project_id"`
	Name      string    `db:"project_name"`
	CreatedAt time.Time `db:"created_at"`
}

type ProjectResponse struct {
	ProjectID   int64  `json:"project_id"`
	ProjectName string `json:"project_name"`
}

type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

func ToProjectResponseList(projects []Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, ProjectResponse{
			ProjectID:   p.ID,
			ProjectName: p.Name,
		})
	}
	return out
}
