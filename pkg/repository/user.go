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

type UserRepository struct {
	db *gorm.DB
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return errors.FromStorage(err, "user")
	}
	return nil
}

func (r *UserRepository) Get(ctx context.Context, id uint) (*models.User, error) {
	user := &models.User{}
	if err := r.db.WithContext(ctx).First(user, id).Error; err != nil {
		return nil, errors.FromStorage(err, "user")
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(user).Error; err != nil {
		return nil, errors.FromStorage(err, "user")
	}
	return user, nil
}

func (r *UserRepository) List(ctx context.Context, q Query) ([]models.User, error) {
	users := []models.User{}
	if err := q.apply(r.db.WithContext(ctx)).Find(&users).Error; err != nil {
		return nil, errors.FromStorage(err, "user")
	}
	return users, nil
}

// ListAdminEmails returns the notification targets for review events.
func (r *UserRepository) ListAdminEmails(ctx context.Context) ([]string, error) {
	emails := []string{}
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ? AND is_active = ?", models.RoleAdmin, true).
		Pluck("email", &emails).Error; err != nil {
		return nil, errors.FromStorage(err, "user")
	}
	return emails, nil
}
