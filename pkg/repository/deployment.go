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

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/errors"
	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/models"
)

type DeploymentRepository struct {
	db *gorm.DB
}

func (r *DeploymentRepository) Create(ctx context.Context, deployment *models.Deployment) error {
	if err := r.db.WithContext(ctx).Create(deployment).Error; err != nil {
		return errors.FromStorage(err, "deployment")
	}
	return nil
}

func (r *DeploymentRepository) Get(ctx context.Context, id uint) (*models.Deployment, error) {
	deployment := &models.Deployment{}
	if err := r.db.WithContext(ctx).
		Preload("Application").
		First(deployment, id).Error; err != nil {
		return nil, errors.FromStorage(err, "deployment")
	}
	return deployment, nil
}

func (r *DeploymentRepository) List(ctx context.Context, q Query) ([]models.Deployment, error) {
	deployments := []models.Deployment{}
	if err := q.apply(r.db.WithContext(ctx).Preload("Application")).
		Find(&deployments).Error; err != nil {
		return nil, errors.FromStorage(err, "deployment")
	}
	return deployments, nil
}

// Filter narrows deployment listings; nil fields match everything.
type Filter struct {
	ApplicationID *uint
	UserID        *uint
	State         *models.DeploymentState
}

// ListFiltered returns one page of deployments plus the total match count.
func (r *DeploymentRepository) ListFiltered(ctx context.Context, f Filter, q Query) ([]models.Deployment, int64, error) {
	conds := func(db *gorm.DB) *gorm.DB {
		if f.ApplicationID != nil {
			db = db.Where("application_id = ?", *f.ApplicationID)
		}
		if f.UserID != nil {
			db = db.Where("user_id = ?", *f.UserID)
		}
		if f.State != nil {
			db = db.Where("state = ?", *f.State)
		}
		return db
	}
	var total int64
	if err := conds(r.db.WithContext(ctx).Model(&models.Deployment{})).
		Count(&total).Error; err != nil {
		return nil, 0, errors.FromStorage(err, "deployment")
	}
	deployments := []models.Deployment{}
	if err := q.apply(conds(r.db.WithContext(ctx).Preload("Application"))).
		Find(&deployments).Error; err != nil {
		return nil, 0, errors.FromStorage(err, "deployment")
	}
	return deployments, total, nil
}

func (r *DeploymentRepository) ListByApplication(ctx context.Context, applicationID uint, q Query) ([]models.Deployment, error) {
	deployments := []models.Deployment{}
	if err := q.apply(r.db.WithContext(ctx).Where("application_id = ?", applicationID)).
		Find(&deployments).Error; err != nil {
		return nil, errors.FromStorage(err, "deployment")
	}
	return deployments, nil
}

// GetInFlight returns the deployment currently occupying the application's
// review slot, i.e. in REQUEST or RETURN state. NotFound when the slot is
// free.
func (r *DeploymentRepository) GetInFlight(ctx context.Context, applicationID uint) (*models.Deployment, error) {
	deployment := &models.Deployment{}
	if err := r.db.WithContext(ctx).
		Where("application_id = ? AND state IN ?", applicationID,
			[]models.DeploymentState{models.StateRequest, models.StateReturn}).
		First(deployment).Error; err != nil {
		return nil, errors.FromStorage(err, "deployment")
	}
	return deployment, nil
}

// GetApplied returns the deployment whose manifests are live on the cluster.
// NotFound when the application has never been applied.
func (r *DeploymentRepository) GetApplied(ctx context.Context, applicationID uint) (*models.Deployment, error) {
	deployment := &models.Deployment{}
	if err := r.db.WithContext(ctx).
		Where("application_id = ? AND is_applied = ?", applicationID, true).
		First(deployment).Error; err != nil {
		return nil, errors.FromStorage(err, "deployment")
	}
	return deployment, nil
}

// ListApplied returns every live deployment together with its application,
// for cluster-wide status aggregation.
func (r *DeploymentRepository) ListApplied(ctx context.Context) ([]models.Deployment, error) {
	deployments := []models.Deployment{}
	if err := r.db.WithContext(ctx).
		Preload("Application").
		Where("is_applied = ?", true).
		Find(&deployments).Error; err != nil {
		return nil, errors.FromStorage(err, "deployment")
	}
	return deployments, nil
}

// SetApplied moves the application's applied flag onto the given deployment.
// Run inside a transaction: clearing the previous holder and setting the new
// one must be atomic so at most one deployment per application is ever
// applied.
func (r *DeploymentRepository) SetApplied(ctx context.Context, applicationID uint, deploymentID uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Deployment{}).
		Where("application_id = ? AND is_applied = ?", applicationID, true).
		Update("is_applied", false).Error; err != nil {
		return errors.FromStorage(err, "deployment")
	}
	if err := db.Model(&models.Deployment{}).
		Where("id = ?", deploymentID).
		Update("is_applied", true).Error; err != nil {
		return errors.FromStorage(err, "deployment")
	}
	return nil
}

func (r *DeploymentRepository) Update(ctx context.Context, deployment *models.Deployment) error {
	if err := r.db.WithContext(ctx).Save(deployment).Error; err != nil {
		return errors.FromStorage(err, "deployment")
	}
	return nil
}

// UpdateState records an admin decision on the deployment.
func (r *DeploymentRepository) UpdateState(ctx context.Context, id uint, state models.DeploymentState, comment string, adminID *uint) error {
	updates := map[string]interface{}{
		"state":   state,
		"comment": comment,
	}
	if adminID != nil {
		updates["admin_id"] = *adminID
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Deployment{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return errors.FromStorage(err, "deployment")
	}
	return nil
}
