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

// Deployment 배포 요청 테이블
//
// At most one deployment per application may have IsApplied set; the flag
// tracks which manifest set is live on the cluster and is flipped inside a
// transaction together with its predecessor.
type Deployment struct {
	ID uint `gorm:"primarykey"`

	DomainName     string `gorm:"type:varchar(32)"`
	CPURequests    string `gorm:"type:varchar(16)"`
	MemoryRequests string `gorm:"type:varchar(16)"`
	CPULimits      string `gorm:"type:varchar(16)"`
	MemoryLimits   string `gorm:"type:varchar(16)"`
	Port           int32
	ImageURL       string `gorm:"type:varchar(2048)"`
	Replicas       int32  `gorm:"default:1"`

	// Message is the requester's note, Comment the admin's decision note.
	Message string `gorm:"type:text"`
	Comment string `gorm:"type:text"`

	State     DeploymentState `gorm:"type:varchar(16);default:REQUEST;index"`
	IsApplied bool            `gorm:"default:false;index"`

	ApplicationID uint `gorm:"index"`
	Application   *Application
	UserID        uint `gorm:"index"`
	AdminID       *uint

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// InFlight reports whether the deployment still occupies the application's
// single review slot.
func (d *Deployment) InFlight() bool {
	return d.State == StateRequest || d.State == StateReturn
}
