package policy

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"moodr-backend/internal/models"
)

type fakeCounter struct {
	role     models.Role
	roleErr  error
	projects int
	countErr error
	project  *models.Project
	getErr   error
	images   int
}

func (f *fakeCounter) GetUserRole(id uuid.UUID) (models.Role, error) {
	return f.role, f.roleErr
}

func (f *fakeCounter) CountProjects(userID uuid.UUID) (int, error) {
	return f.projects, f.countErr
}

func (f *fakeCounter) GetProject(id uuid.UUID) (*models.Project, error) {
	return f.project, f.getErr
}

func (f *fakeCounter) CountImages(projectID uuid.UUID) (int, error) {
	return f.images, f.countErr
}

func TestLimitsFor(t *testing.T) {
	assert.Equal(t, 3, LimitsFor(models.RoleFree).MaxProjects)
	assert.Equal(t, 10, LimitsFor(models.RoleFree).MaxImagesPerProject)
	assert.Equal(t, Unlimited, LimitsFor(models.RolePro).MaxProjects)
	assert.Equal(t, Unlimited, LimitsFor(models.RoleAdmin).MaxImagesPerProject)

	// Unknown roles get the most restrictive limits.
	assert.Equal(t, LimitsFor(models.RoleFree), LimitsFor(models.Role("mystery")))
}

func TestCanCreateProject_FreeUnderLimit(t *testing.T) {
	gate := NewGate(&fakeCounter{role: models.RoleFree, projects: 2})
	assert.True(t, gate.CanCreateProject(uuid.New()))
}

func TestCanCreateProject_FreeAtLimit(t *testing.T) {
	gate := NewGate(&fakeCounter{role: models.RoleFree, projects: 3})
	assert.False(t, gate.CanCreateProject(uuid.New()))
}

func TestCanCreateProject_ProUnlimited(t *testing.T) {
	gate := NewGate(&fakeCounter{role: models.RolePro, projects: 1000})
	assert.True(t, gate.CanCreateProject(uuid.New()))
}

func TestCanCreateProject_RoleFailureFallsBackToFree(t *testing.T) {
	gate := NewGate(&fakeCounter{roleErr: errors.New("boom"), projects: 3})
	assert.False(t, gate.CanCreateProject(uuid.New()))

	gate = NewGate(&fakeCounter{roleErr: errors.New("boom"), projects: 0})
	assert.True(t, gate.CanCreateProject(uuid.New()))
}

func TestCanCreateProject_CountFailureDenies(t *testing.T) {
	gate := NewGate(&fakeCounter{role: models.RolePro, countErr: errors.New("boom")})
	assert.False(t, gate.CanCreateProject(uuid.New()))
}

func TestCanAddImage_OwnerRoleGoverns(t *testing.T) {
	owner := uuid.New()
	project := &models.Project{ID: uuid.New(), UserID: owner}

	gate := NewGate(&fakeCounter{role: models.RoleFree, project: project, images: 10})
	assert.False(t, gate.CanAddImage(project.ID))

	gate = NewGate(&fakeCounter{role: models.RolePro, project: project, images: 10})
	assert.True(t, gate.CanAddImage(project.ID))
}

func TestCanAddImage_MissingProjectDenies(t *testing.T) {
	gate := NewGate(&fakeCounter{getErr: errors.New("not found")})
	assert.False(t, gate.CanAddImage(uuid.New()))
}
