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

package models

import (
	"time"

	"gorm.io/gorm"
)

// Manifest holds one raw declarative document of a deployment. Manifests are
// replaced wholesale on deployment edit: the old rows are soft-deleted and a
// fresh set created, keeping every historical revision addressable for
// rollback.
type Manifest struct {
	ID       uint   `gorm:"primarykey"`
	FileName string `gorm:"type:varchar(256)"`
	Content  string `gorm:"type:text"`

	DeploymentID uint `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
