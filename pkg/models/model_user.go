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

// User 사용자 테이블
type User struct {
	ID       uint     `gorm:"primarykey"`
	Email    string   `gorm:"type:varchar(128);uniqueIndex" binding:"required"`
	Nickname string   `gorm:"type:varchar(64)" binding:"required"`
	Password string   `gorm:"type:varchar(256)" json:"-"`
	Role     UserRole `gorm:"type:varchar(16);default:USER"`
	IsActive *bool    `sql:"DEFAULT:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
