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
	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/models/validate"
)

type ApplicationRepository struct {
	db *gorm.DB
}

// Create inserts the application after validating its name and checking that
// no live application holds the same name. The name column has no unique
// index so that soft deleted applications release their name for reuse;
// uniqueness among live rows is enforced here.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if !validate.AppName(app.Name) {
		return errors.Newf(errors.ValidationError,
			"application name %q must match lowercase letters, digits and hyphens, starting with a letter", app.Name)
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("name = ?", app.Name).
		Count(&count).Error; err != nil {
		return errors.FromStorage(err, "application")
	}
	if count > 0 {
		return errors.Newf(errors.Conflict, "application %s already exists", app.Name)
	}
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		return errors.FromStorage(err, "application")
	}
	return nil
}

func (r *ApplicationRepository) Get(ctx context.Context, id uint) (*models.Application, error) {
	app := &models.Application{}
	if err := r.db.WithContext(ctx).Preload("User").First(app, id).Error; err != nil {
		return nil, errors.FromStorage(err, "application")
	}
	return app, nil
}

func (r *ApplicationRepository) GetByName(ctx context.Context, name string) (*models.Application, error) {
	app := &models.Application{}
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(app).Error; err != nil {
		return nil, errors.FromStorage(err, "application")
	}
	return app, nil
}

func (r *ApplicationRepository) List(ctx context.Context, q Query) ([]models.Application, error) {
	apps := []models.Application{}
	if err := q.apply(r.db.WithContext(ctx)).Find(&apps).Error; err != nil {
		return nil, errors.FromStorage(err, "application")
	}
	return apps, nil
}

func (r *ApplicationRepository) ListByUser(ctx context.Context, userID uint, q Query) ([]models.Application, error) {
	apps := []models.Application{}
	if err := q.apply(r.db.WithContext(ctx).Where("user_id = ?", userID)).Find(&apps).Error; err != nil {
		return nil, errors.FromStorage(err, "application")
	}
	return apps, nil
}

// Approve marks the application as having had at least one approved
// deployment. Idempotent.
func (r *ApplicationRepository) Approve(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("id = ?", id).
		Update("is_approved", true).Error; err != nil {
		return errors.FromStorage(err, "application")
	}
	return nil
}

func (r *ApplicationRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Application{}, id).Error; err != nil {
		return errors.FromStorage(err, "application")
	}
	return nil
}
