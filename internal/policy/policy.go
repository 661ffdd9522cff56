package policy

import (
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"moodr-backend/internal/models"
)

// Unlimited disables a limit.
const Unlimited = -1

// Limits is a pure function of role, not stored state. Roles can change
// after resources are created; existing excess is grandfathered, never
// retroactively deleted.
type Limits struct {
	MaxProjects         int
	MaxImagesPerProject int
}

var roleLimits = map[models.Role]Limits{
	models.RoleFree:  {MaxProjects: 3, MaxImagesPerProject: 10},
	models.RolePro:   {MaxProjects: Unlimited, MaxImagesPerProject: Unlimited},
	models.RoleAdmin: {MaxProjects: Unlimited, MaxImagesPerProject: Unlimited},
}

// LimitsFor returns the usage limits for a role. Unknown roles get the
// most restrictive limits.
func LimitsFor(role models.Role) Limits {
	if limits, ok := roleLimits[role]; ok {
		return limits
	}
	return roleLimits[models.RoleFree]
}

// Counter is what the gate needs from the resource store.
type Counter interface {
	GetUserRole(id uuid.UUID) (models.Role, error)
	CountProjects(userID uuid.UUID) (int, error)
	GetProject(id uuid.UUID) (*models.Project, error)
	CountImages(projectID uuid.UUID) (int, error)
}

// Gate enforces creation limits with read-then-decide checks. The checks
// are deliberately advisory, not transactionally atomic: two concurrent
// creations can both pass and both succeed, overshooting the limit by at
// most the request parallelism minus one.
type Gate struct {
	store Counter
}

func NewGate(store Counter) *Gate {
	return &Gate{store: store}
}

// CanCreateProject reports whether the user is under their project
// limit. Returns false, not an error, at or over the limit. Role
// resolution failure never grants privilege: it falls back to the most
// restrictive role.
func (g *Gate) CanCreateProject(userID uuid.UUID) bool {
	role := g.resolveRole(userID)

	count, err := g.store.CountProjects(userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("quota check failed, denying")
		return false
	}

	limits := LimitsFor(role)
	return limits.MaxProjects == Unlimited || count < limits.MaxProjects
}

// CanAddImage reports whether the project's owner is under the per
// project image limit. The owner's role governs, not the caller's.
func (g *Gate) CanAddImage(projectID uuid.UUID) bool {
	project, err := g.store.GetProject(projectID)
	if err != nil {
		return false
	}

	role := g.resolveRole(project.UserID)

	count, err := g.store.CountImages(projectID)
	if err != nil {
		log.WithError(err).WithField("project_id", projectID).Warn("quota check failed, denying")
		return false
	}

	limits := LimitsFor(role)
	return limits.MaxImagesPerProject == Unlimited || count < limits.MaxImagesPerProject
}

func (g *Gate) resolveRole(userID uuid.UUID) models.Role {
	role, err := g.store.GetUserRole(userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("role resolution failed, defaulting to free")
		return models.RoleFree
	}
	return role
}
