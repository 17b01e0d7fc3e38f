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

// Application 애플리케이션 테이블
//
// Name doubles as the kubernetes namespace of the application, so it follows
// namespace naming rules and never changes after creation. Uniqueness among
// non-deleted rows is enforced by the repository; a plain unique index would
// also lock out names of soft-deleted rows.
type Application struct {
	ID          uint   `gorm:"primarykey"`
	Name        string `gorm:"type:varchar(256);index;<-:create" binding:"required,appname"`
	Description string `gorm:"type:text"`
	IsApproved  bool   `gorm:"default:false"`

	UserID uint `gorm:"index"`
	User   *User

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
