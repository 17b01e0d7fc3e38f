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

// Package repository wraps database access for the deployment workflow.
// All methods translate storage errors into the closed error kinds of
// pkg/errors before returning.
package repository

import (
	"gorm.io/gorm"

	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/models"
)

// Query carries pagination and ordering for list operations. A zero Limit
// means no limit.
type Query struct {
	Skip    int
	Limit   int
	OrderBy models.OrderBy
}

func (q Query) apply(db *gorm.DB) *gorm.DB {
	switch q.OrderBy {
	case models.OrderCreatedAtAsc:
		db = db.Order("created_at asc")
	case models.OrderUpdatedAtDesc:
		db = db.Order("updated_at desc")
	case models.OrderUpdatedAtAsc:
		db = db.Order("updated_at asc")
	default:
		db = db.Order("created_at desc")
	}
	if q.Skip > 0 {
		db = db.Offset(q.Skip)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	return db
}

type Repositories struct {
	Application *ApplicationRepository
	Deployment  *DeploymentRepository
	Manifest    *ManifestRepository
	User        *UserRepository
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Application: &ApplicationRepository{db: db},
		Deployment:  &DeploymentRepository{db: db},
		Manifest:    &ManifestRepository{db: db},
		User:        &UserRepository{db: db},
	}
}

// WithTransaction returns repositories bound to tx so workflow steps can
// share one transaction.
func (r *Repositories) WithTransaction(tx *gorm.DB) *Repositories {
	return New(tx)
}
