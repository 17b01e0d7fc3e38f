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

type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleUser  UserRole = "USER"
)

// DeploymentState is the workflow state of a deployment request.
// REQUEST is set at creation and on resubmission, RETURN and APPROVAL are
// admin decisions; APPROVAL additionally drives the cluster apply.
type DeploymentState string

const (
	StateRequest  DeploymentState = "REQUEST"
	StateReturn   DeploymentState = "RETURN"
	StateApproval DeploymentState = "APPROVAL"
)

type OrderBy string

const (
	OrderCreatedAtDesc OrderBy = "CREATED_AT_DESC"
	OrderCreatedAtAsc  OrderBy = "CREATED_AT_ASC"
	OrderUpdatedAtDesc OrderBy = "UPDATED_AT_DESC"
	OrderUpdatedAtAsc  OrderBy = "UPDATED_AT_ASC"
)
