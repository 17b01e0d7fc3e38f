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

type ManifestRepository struct {
	db *gorm.DB
}

func (r *ManifestRepository) ListByDeployment(ctx context.Context, deploymentID uint) ([]models.Manifest, error) {
	manifests := []models.Manifest{}
	if err := r.db.WithContext(ctx).
		Where("deployment_id = ?", deploymentID).
		Order("id asc").
		Find(&manifests).Error; err != nil {
		return nil, errors.FromStorage(err, "manifest")
	}
	return manifests, nil
}

// ReplaceForDeployment swaps the deployment's manifest set wholesale.
// Manifests are immutable rows; an update always replaces the full set.
func (r *ManifestRepository) ReplaceForDeployment(ctx context.Context, deploymentID uint, manifests []models.Manifest) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("deployment_id = ?", deploymentID).
		Delete(&models.Manifest{}).Error; err != nil {
		return errors.FromStorage(err, "manifest")
	}
	for i := range manifests {
		manifests[i].ID = 0
		manifests[i].DeploymentID = deploymentID
	}
	if len(manifests) == 0 {
		return nil
	}
	if err := db.Create(&manifests).Error; err != nil {
		return errors.FromStorage(err, "manifest")
	}
	return nil
}
