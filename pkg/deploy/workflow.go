// Copyright 2025 The Yourssu Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package deploy

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/errors"
	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/log"
	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/manifest"
	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/models"
)

// ResourceSpec is the workload shape carried on every deployment request.
type ResourceSpec struct {
	DomainName     string `json:"domain_name"`
	CPURequests    string `json:"cpu_requests"`
	MemoryRequests string `json:"memory_requests"`
	CPULimits      string `json:"cpu_limits"`
	MemoryLimits   string `json:"memory_limits"`
	Port           int32  `json:"port"`
	ImageURL       string `json:"image_url"`
	Replicas       int32  `json:"replicas"`
}

type RequestInput struct {
	ApplicationID uint                `json:"application_id"`
	UserID        uint                `json:"user_id"`
	Spec          ResourceSpec        `json:"spec"`
	Message       string              `json:"message"`
	Manifests     []manifest.Manifest `json:"manifests"`
}

// Request opens a new review workflow for the application. An application
// has one review slot: while a deployment sits in REQUEST or RETURN no new
// one may be created.
func (s *Service) Request(ctx context.Context, in RequestInput) (*models.Deployment, error) {
	app, err := s.repos.Application.Get(ctx, in.ApplicationID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.Deployment.GetInFlight(ctx, app.ID); err == nil {
		return nil, errors.Newf(errors.InvalidState, "application %s already has a deployment under review", app.Name)
	} else if !errors.IsKind(err, errors.NotFound) {
		return nil, err
	}

	deployment := &models.Deployment{
		DomainName:     in.Spec.DomainName,
		CPURequests:    in.Spec.CPURequests,
		MemoryRequests: in.Spec.MemoryRequests,
		CPULimits:      in.Spec.CPULimits,
		MemoryLimits:   in.Spec.MemoryLimits,
		Port:           in.Spec.Port,
		ImageURL:       in.Spec.ImageURL,
		Replicas:       in.Spec.Replicas,
		Message:        in.Message,
		State:          models.StateRequest,
		ApplicationID:  app.ID,
		UserID:         in.UserID,
	}
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		repos := s.repos.WithTransaction(tx)
		if err := repos.Deployment.Create(ctx, deployment); err != nil {
			return err
		}
		return repos.Manifest.ReplaceForDeployment(ctx, deployment.ID, toStoredManifests(in.Manifests))
	}); err != nil {
		return nil, err
	}

	s.notifyAdmins(ctx, fmt.Sprintf("[인프라] %s 배포 요청", app.Name),
		fmt.Sprintf("%s 애플리케이션에 새 배포 요청이 등록되었습니다.\n%s", app.Name, s.reviewLink(deployment.ID)))
	return deployment, nil
}

type UpdateInput struct {
	UserID    uint                `json:"user_id"`
	Spec      ResourceSpec        `json:"spec"`
	Message   string              `json:"message"`
	Manifests []manifest.Manifest `json:"manifests"`
}

// Update resubmits an in flight deployment: the spec and the whole manifest
// set are replaced and the state returns to REQUEST. A RETURN-ed deployment
// re-enters review this way.
func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) (*models.Deployment, error) {
	deployment, err := s.repos.Deployment.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !deployment.InFlight() {
		return nil, errors.Newf(errors.InvalidState, "deployment %d is not under review", id)
	}

	deployment.DomainName = in.Spec.DomainName
	deployment.CPURequests = in.Spec.CPURequests
	deployment.MemoryRequests = in.Spec.MemoryRequests
	deployment.CPULimits = in.Spec.CPULimits
	deployment.MemoryLimits = in.Spec.MemoryLimits
	deployment.Port = in.Spec.Port
	deployment.ImageURL = in.Spec.ImageURL
	deployment.Replicas = in.Spec.Replicas
	deployment.Message = in.Message
	deployment.State = models.StateRequest

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		repos := s.repos.WithTransaction(tx)
		if err := repos.Deployment.Update(ctx, deployment); err != nil {
			return err
		}
		return repos.Manifest.ReplaceForDeployment(ctx, deployment.ID, toStoredManifests(in.Manifests))
	}); err != nil {
		return nil, err
	}

	appName := ""
	if deployment.Application != nil {
		appName = deployment.Application.Name
	}
	s.notifyAdmins(ctx, fmt.Sprintf("[인프라] %s 배포 재요청", appName),
		fmt.Sprintf("%s 애플리케이션의 배포 요청이 수정되었습니다.\n%s", appName, s.reviewLink(deployment.ID)))
	return deployment, nil
}

type ReviewInput struct {
	AdminID uint                   `json:"admin_id"`
	State   models.DeploymentState `json:"state"`
	Comment string                 `json:"comment"`
}

// Review records an admin decision. RETURN only persists the decision with a
// mandatory comment. APPROVAL applies the manifests to the cluster first and
// aborts on any apply failure, then flips the applied flag pair, the state
// and the application's approval mark in one transaction.
func (s *Service) Review(ctx context.Context, id uint, in ReviewInput) (*models.Deployment, error) {
	admin, err := s.repos.User.Get(ctx, in.AdminID)
	if err != nil {
		return nil, err
	}
	if !admin.IsAdmin() {
		return nil, errors.Newf(errors.PermissionDenied, "user %d is not an admin", in.AdminID)
	}

	deployment, err := s.repos.Deployment.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if deployment.State != models.StateRequest {
		return nil, errors.Newf(errors.InvalidState, "deployment %d is not in REQUEST state", id)
	}

	switch in.State {
	case models.StateReturn:
		if in.Comment == "" {
			return nil, errors.New(errors.ValidationError, "a comment is required when returning a deployment")
		}
		if err := s.repos.Deployment.UpdateState(ctx, id, models.StateReturn, in.Comment, &in.AdminID); err != nil {
			return nil, err
		}
	case models.StateApproval:
		if err := s.approve(ctx, deployment, in); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Newf(errors.InvalidState, "cannot transition a deployment to %s", in.State)
	}

	deployment, err = s.repos.Deployment.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notifyRequester(ctx, deployment, in.State)
	return deployment, nil
}

// approve applies first, persists second. A cluster failure leaves every row
// untouched. A persistence failure after a successful apply rolls the rows
// back and surfaces Unexpected: the cluster is then ahead of the recorded
// state, which is logged loudly for the operator.
func (s *Service) approve(ctx context.Context, deployment *models.Deployment, in ReviewInput) error {
	logger := log.FromContextOrDiscard(ctx)

	stored, err := s.repos.Manifest.ListByDeployment(ctx, deployment.ID)
	if err != nil {
		return err
	}
	applied, err := s.cluster.Apply(ctx, toManifests(stored))
	if err != nil {
		logger.Error(err, "apply aborted approval", "deployment", deployment.ID, "applied_files", applied)
		return err
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		repos := s.repos.WithTransaction(tx)
		if err := repos.Deployment.SetApplied(ctx, deployment.ApplicationID, deployment.ID); err != nil {
			return err
		}
		if err := repos.Deployment.UpdateState(ctx, deployment.ID, models.StateApproval, in.Comment, &in.AdminID); err != nil {
			return err
		}
		return repos.Application.Approve(ctx, deployment.ApplicationID)
	}); err != nil {
		logger.Error(err, "cluster applied but persistence failed, recorded state is behind the cluster",
			"deployment", deployment.ID, "application", deployment.ApplicationID)
		return errors.Wrapf(errors.Unexpected, err, "record approval of deployment %d", deployment.ID)
	}
	return nil
}

// Rollback re-applies the manifest set of a previously approved deployment
// and moves the applied flag onto it. The workflow state is left untouched,
// rollback only changes which manifest set is live.
func (s *Service) Rollback(ctx context.Context, id uint) (*models.Deployment, error) {
	target, err := s.repos.Deployment.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if target.State != models.StateApproval {
		return nil, errors.Newf(errors.InvalidState, "deployment %d was never approved", id)
	}
	current, err := s.repos.Deployment.GetApplied(ctx, target.ApplicationID)
	if err != nil {
		if errors.IsKind(err, errors.NotFound) {
			return nil, errors.Newf(errors.InvalidState, "application %d has no applied deployment to roll back from", target.ApplicationID)
		}
		return nil, err
	}
	if current.ID == target.ID {
		return nil, errors.Newf(errors.InvalidState, "deployment %d is already applied", id)
	}

	stored, err := s.repos.Manifest.ListByDeployment(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	if _, err := s.cluster.Apply(ctx, toManifests(stored)); err != nil {
		return nil, err
	}
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.repos.WithTransaction(tx).Deployment.SetApplied(ctx, target.ApplicationID, target.ID)
	}); err != nil {
		return nil, err
	}
	return target, nil
}

type UpdateImageInput struct {
	ApplicationID uint   `json:"application_id"`
	ImageURL      string `json:"image_url"`
	CommitSHA     string `json:"commit_sha"`
	Token         string `json:"-"`
}

// UpdateImage is the CI hook: authorized by a shared secret only, it clones
// the applied deployment's manifests with the new image, applies them and
// records a new deployment already in APPROVAL state. Human review is
// bypassed on purpose.
func (s *Service) UpdateImage(ctx context.Context, in UpdateImageInput) (*models.Deployment, error) {
	if s.options.CIToken == "" || in.Token != s.options.CIToken {
		return nil, errors.New(errors.PermissionDenied, "invalid ci token")
	}

	applied, err := s.repos.Deployment.GetApplied(ctx, in.ApplicationID)
	if err != nil {
		return nil, err
	}
	stored, err := s.repos.Manifest.ListByDeployment(ctx, applied.ID)
	if err != nil {
		return nil, err
	}
	updated, err := manifest.WithImage(toManifests(stored), in.ImageURL)
	if err != nil {
		return nil, err
	}
	if _, err := s.cluster.Apply(ctx, updated); err != nil {
		return nil, err
	}

	next := &models.Deployment{
		DomainName:     applied.DomainName,
		CPURequests:    applied.CPURequests,
		MemoryRequests: applied.MemoryRequests,
		CPULimits:      applied.CPULimits,
		MemoryLimits:   applied.MemoryLimits,
		Port:           applied.Port,
		ImageURL:       in.ImageURL,
		Replicas:       applied.Replicas,
		Message:        applied.Message,
		Comment:        fmt.Sprintf("automated image update for commit %s", in.CommitSHA),
		State:          models.StateApproval,
		ApplicationID:  applied.ApplicationID,
		UserID:         applied.UserID,
	}
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		repos := s.repos.WithTransaction(tx)
		if err := repos.Deployment.Create(ctx, next); err != nil {
			return err
		}
		if err := repos.Manifest.ReplaceForDeployment(ctx, next.ID, toStoredManifests(updated)); err != nil {
			return err
		}
		return repos.Deployment.SetApplied(ctx, applied.ApplicationID, next.ID)
	}); err != nil {
		log.FromContextOrDiscard(ctx).Error(err, "cluster applied but persistence failed, recorded state is behind the cluster",
			"application", in.ApplicationID)
		return nil, errors.Wrapf(errors.Unexpected, err, "record image update of application %d", in.ApplicationID)
	}
	return next, nil
}

// Teardown removes the application's live cluster resources in reverse
// dependency order and soft deletes the application. An application that was
// never applied is deleted without touching the cluster. Teardown failures on
// individual resources surface as one aggregate error and leave the
// application record in place.
func (s *Service) Teardown(ctx context.Context, applicationID uint) error {
	app, err := s.repos.Application.Get(ctx, applicationID)
	if err != nil {
		return err
	}
	applied, err := s.repos.Deployment.GetApplied(ctx, app.ID)
	if err == nil {
		stored, err := s.repos.Manifest.ListByDeployment(ctx, applied.ID)
		if err != nil {
			return err
		}
		if err := s.cluster.Delete(ctx, toManifests(stored)); err != nil {
			return err
		}
	} else if !errors.IsKind(err, errors.NotFound) {
		return err
	}
	return s.repos.Application.Delete(ctx, app.ID)
}

func (s *Service) notifyAdmins(ctx context.Context, subject, body string) {
	emails, err := s.repos.User.ListAdminEmails(ctx)
	if err != nil {
		log.FromContextOrDiscard(ctx).Error(err, "list admin emails")
		return
	}
	s.notifier.Send(ctx, emails, subject, body)
}

func (s *Service) notifyRequester(ctx context.Context, deployment *models.Deployment, state models.DeploymentState) {
	requester, err := s.repos.User.Get(ctx, deployment.UserID)
	if err != nil {
		log.FromContextOrDiscard(ctx).Error(err, "get requester", "deployment", deployment.ID)
		return
	}
	subject := "[인프라] 배포 요청이 반려되었습니다"
	if state == models.StateApproval {
		subject = "[인프라] 배포 요청이 승인되었습니다"
	}
	s.notifier.Send(ctx, []string{requester.Email},
		subject, s.reviewLink(deployment.ID))
}
