package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"campaignsmith/internal/apperr"
	"campaignsmith/internal/contextutil"
	"campaignsmith/internal/files"
	"campaignsmith/internal/storage"
)

// ProjectService manages the project registry and the on-disk project
// directories it points at.
type ProjectService struct {
	registry *storage.Registry
	root     string
}

func NewProjectService(registry *storage.Registry, projectsRoot string) *ProjectService {
	return &ProjectService{registry: registry, root: projectsRoot}
}

// CreateProjectInput carries the fields accepted when creating a project.
type CreateProjectInput struct {
	Name   string `json:"name"`
	System string `json:"system"`
}

// projectDescriptor is the project.json written at each project root. Its
// presence marks a directory as one of ours before destructive operations.
type projectDescriptor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	System    string `json:"system"`
	CreatedAt string `json:"created_at"`
}

func (s *ProjectService) List(ctx context.Context) ([]storage.Project, error) {
	projects, err := s.registry.List(ctx)
	if err != nil {
		return nil, apperr.Storage(err, "failed to list projects")
	}
	return projects, nil
}

func (s *ProjectService) Get(ctx context.Context, id string) (*storage.Project, error) {
	project, err := s.registry.GetByID(ctx, id)
	if err != nil {
		if err == storage.ErrNotFound {
			return nil, apperr.NotFound("project")
		}
		return nil, apperr.Storage(err, "failed to load project")
	}
	return project, nil
}

// Create allocates a directory under the projects root, initializes the
// project database and subdirectories, writes the descriptor, and only then
// registers the project. A failure partway leaves at worst an unregistered
// directory.
func (s *ProjectService) Create(ctx context.Context, input CreateProjectInput) (*storage.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || len(name) > 120 {
		return nil, apperr.Validation("INVALID_PROJECT_NAME", "name")
	}
	system := input.System
	if system == "" {
		system = "generic"
	}
	if !contains(storage.GameSystems, system) {
		return nil, apperr.Validation("INVALID_SYSTEM", "system")
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return nil, apperr.Storage(err, "failed to create projects root")
	}

	dir, err := s.allocateDir(name)
	if err != nil {
		return nil, err
	}
	for _, sub := range []string{storage.MapAssetDir, storage.NoteDir, storage.CharacterDir} {
		if err := os.MkdirAll(filepath.Join(dir, filepath.FromSlash(sub)), 0o755); err != nil {
			return nil, apperr.Storage(err, "failed to create project subdirectories")
		}
	}

	store, err := storage.OpenProject(dir)
	if err != nil {
		return nil, apperr.Storage(err, "failed to initialize project database")
	}
	if err := store.Close(); err != nil {
		return nil, apperr.Storage(err, "failed to close project database")
	}

	project := &storage.Project{
		ID:        uuid.New().String(),
		Name:      name,
		Path:      dir,
		System:    system,
		CreatedAt: storage.NowISO(),
	}
	if err := s.writeDescriptor(dir, project); err != nil {
		return nil, err
	}
	if err := s.registry.Insert(ctx, project); err != nil {
		return nil, apperr.Storage(err, "failed to register project")
	}

	contextutil.LoggerFromContext(ctx).Info("project created",
		"project_id", project.ID, "path", dir)
	return project, nil
}

// Delete removes the registry entry and, when requested, the project
// directory. File removal refuses to run unless the path is absolute, deep
// enough to not be a filesystem root, and carries our descriptor.
func (s *ProjectService) Delete(ctx context.Context, id string, deleteFiles bool) error {
	project, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if deleteFiles {
		if !filepath.IsAbs(project.Path) || len(project.Path) < 3 {
			return apperr.UnsafePath(project.Path)
		}
		if _, err := os.Stat(filepath.Join(project.Path, storage.DescriptorName)); err != nil {
			return apperr.Validation("NOT_A_PROJECT_DIR", "path")
		}
	}

	if err := s.registry.Delete(ctx, id); err != nil {
		if err == storage.ErrNotFound {
			return apperr.NotFound("project")
		}
		return apperr.Storage(err, "failed to deregister project")
	}

	if deleteFiles {
		if err := os.RemoveAll(project.Path); err != nil {
			return apperr.Storage(err, "failed to remove project directory")
		}
	}

	contextutil.LoggerFromContext(ctx).Info("project deleted",
		"project_id", id, "files_removed", deleteFiles)
	return nil
}

// allocateDir picks a fresh directory for a new project: the slug of its
// name, with a numeric suffix when the slug is already taken.
func (s *ProjectService) allocateDir(name string) (string, error) {
	slug := files.Slugify(name, "project")
	for n := 0; n < 1000; n++ {
		candidate := slug
		if n > 0 {
			candidate = fmt.Sprintf("%s-%d", slug, n+1)
		}
		dir := filepath.Join(s.root, candidate)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", apperr.Storage(err, "failed to create project directory")
			}
			return dir, nil
		}
	}
	return "", apperr.Validation("PROJECT_DIR_EXHAUSTED", "name")
}

func (s *ProjectService) writeDescriptor(dir string, project *storage.Project) error {
	desc := projectDescriptor{
		ID:        project.ID,
		Name:      project.Name,
		System:    project.System,
		CreatedAt: project.CreatedAt,
	}
	data, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		return apperr.Storage(err, "failed to encode project descriptor")
	}
	if err := files.WriteAtomic(filepath.Join(dir, storage.DescriptorName), data); err != nil {
		return apperr.Storage(err, "failed to write project descriptor")
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
