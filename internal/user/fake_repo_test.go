// AngelaMos | 2026
// fake_repo_test.go

package user

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/carterperez-dev/templates/admin-console/internal/core"
)

// fakeRepo is an in-memory Repository. Writes are all-or-nothing like the
// transactional store.
type fakeRepo struct {
	mu          sync.Mutex
	nextID      int64
	clock       time.Time
	users       map[int64]*User
	projects    map[int64]string
	assignments map[int64][]Assignment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		users: map[int64]*User{},
		projects: map[int64]string{
			1: "Apollo",
			2: "Borealis",
			3: "Cygnus",
		},
		assignments: map[int64][]Assignment{},
	}
}

func (f *fakeRepo) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeRepo) buildAssignments(projects []ProjectInput) ([]Assignment, error) {
	out := make([]Assignment, 0, len(projects))
	for _, p := range projects {
		name, ok := f.projects[p.ProjectID]
		if !ok {
			return nil, &ProjectNotFoundError{ProjectID: p.ProjectID}
		}
		out = append(out, Assignment{
			ProjectID:   p.ProjectID,
			ProjectName: name,
			SupportType: p.SupportType,
		})
	}
	return out, nil
}

func (f *fakeRepo) uniqueViolation(username, email string, excludeID int64) error {
	for id, u := range f.users {
		if id == excludeID {
			continue
		}
		if u.Username == username {
			return fmt.Errorf("create user: %w", ErrUsernameTaken)
		}
		if u.Email == email {
			return fmt.Errorf("create user: %w", ErrEmailTaken)
		}
	}
	return nil
}

func (f *fakeRepo) CreateWithProjects(
	_ context.Context,
	user *User,
	projects []ProjectInput,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.uniqueViolation(user.Username, user.Email, 0); err != nil {
		return err
	}

	assignments, err := f.buildAssignments(projects)
	if err != nil {
		return err
	}

	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = f.tick()
	user.UpdatedAt = user.CreatedAt

	stored := *user
	f.users[user.ID] = &stored
	f.assignments[user.ID] = assignments
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	cp := *u
	cp.PasswordHash = ""
	return &cp, nil
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
}

func (f *fakeRepo) GetAssignments(_ context.Context, userID int64) ([]Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := append([]Assignment{}, f.assignments[userID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].ProjectName < out[j].ProjectName })
	return out, nil
}

func (f *fakeRepo) List(_ context.Context, params ListUsersParams) ([]User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	search := strings.ToLower(params.Search)
	out := []User{}
	for _, u := range f.users {
		if params.Role != "" && u.Role != params.Role {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Username), search) &&
			!strings.Contains(strings.ToLower(u.FullName), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		out = append(out, *u)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *fakeRepo) FindConflicts(
	_ context.Context,
	username, email string,
	excludeID int64,
) (Conflicts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var c Conflicts
	for id, u := range f.users {
		if id == excludeID {
			continue
		}
		if username != "" && u.Username == username {
			c.Username = true
		}
		if email != "" && u.Email == email {
			c.Email = true
		}
	}
	return c, nil
}

func (f *fakeRepo) Update(
	_ context.Context,
	id int64,
	changes Changes,
	projects []ProjectInput,
) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("update user: %w", core.ErrNotFound)
	}

	next := *current
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&next.Username, changes.Username)
	apply(&next.FullName, changes.FullName)
	apply(&next.Email, changes.Email)
	apply(&next.Mobile, changes.Mobile)
	apply(&next.Role, changes.Role)

	if err := f.uniqueViolation(next.Username, next.Email, id); err != nil {
		return nil, err
	}

	var assignments []Assignment
	if projects != nil {
		var err error
		if assignments, err = f.buildAssignments(projects); err != nil {
			return nil, err
		}
	}

	next.UpdatedAt = f.tick()
	f.users[id] = &next
	if projects != nil {
		f.assignments[id] = assignments
	}

	cp := next
	cp.PasswordHash = ""
	return &cp, nil
}

func (f *fakeRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[id]; !ok {
		return fmt.Errorf("delete user: %w", core.ErrNotFound)
	}
	delete(f.assignments, id)
	delete(f.users, id)
	return nil
}

func (f *fakeRepo) CountByRole(_ context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	counts := map[string]int64{}
	for _, role := range Roles {
		counts[role] = 0
	}
	for _, u := range f.users {
		counts[u.Role]++
	}
	return counts, nil
}

// racyRepo hides existing rows from the pre-check, as if another request
// inserted them after it ran.
type racyRepo struct {
	*fakeRepo
}

func (racyRepo) FindConflicts(context.Context, string, string, int64) (Conflicts, error) {
	return Conflicts{}, nil
}
