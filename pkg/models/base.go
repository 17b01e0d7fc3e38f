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
	"errors"

	"gorm.io/gorm"
)

func MigrateModels(db *gorm.DB) error {
	return db.AutoMigrate(
		// 사용자 테이블
		&User{},
		// 애플리케이션 테이블
		&Application{},
		// 배포 요청 테이블
		&Deployment{},
		// manifest 테이블
		&Manifest{},
	)
}

// InitBaseData seeds the admin account used before any real user exists.
func InitBaseData(db *gorm.DB) error {
	active := true
	admin := User{
		ID:       1,
		Email:    "admin@yourssu.com",
		Nickname: "admin",
		Role:     RoleAdmin,
		IsActive: &active,
		// 초기 비밀번호 htpasswd -bnBC 10 "" 'infra!@#admin' | tr -d ':\n'
		Password: "$2y$10$n3GZNQIB8jTMJS//1DY04eoRC7dQiPVp8MbFP/vPcaNJU96/MmPci",
	}
	return db.FirstOrCreate(&admin, admin.ID).Error
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
