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

package deploy

import (
	"context"

	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/cluster"
	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/log"
	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/models"
	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/repository"
)

// Detail is a deployment together with its manifest set.
type Detail struct {
	Deployment models.Deployment `json:"deployment"`
	Manifests  []models.Manifest `json:"manifests"`
}

func (s *Service) Get(ctx context.Context, id uint) (*Detail, error) {
	deployment, err := s.repos.Deployment.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	manifests, err := s.repos.Manifest.ListByDeployment(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{Deployment: *deployment, Manifests: manifests}, nil
}

type ListInput struct {
	ApplicationID *uint                   `json:"application_id,omitempty"`
	UserID        *uint                   `json:"user_id,omitempty"`
	State         *models.DeploymentState `json:"state,omitempty"`
	Skip          int                     `json:"skip"`
	Limit         int                     `json:"limit"`
	OrderBy       models.OrderBy          `json:"order_by"`
}

type ListResult struct {
	Total int64               `json:"total"`
	Items []models.Deployment `json:"items"`
}

func (s *Service) List(ctx context.Context, in ListInput) (*ListResult, error) {
	filter := repository.Filter{
		ApplicationID: in.ApplicationID,
		UserID:        in.UserID,
		State:         in.State,
	}
	query := repository.Query{Skip: in.Skip, Limit: in.Limit, OrderBy: in.OrderBy}
	items, total, err := s.repos.Deployment.ListFiltered(ctx, filter, query)
	if err != nil {
		return nil, err
	}
	return &ListResult{Total: total, Items: items}, nil
}

// Status reports the live workload of one application. NotFound surfaces
// both for an unknown application and for a missing cluster workload.
func (s *Service) Status(ctx context.Context, applicationID uint) (*cluster.ApplicationStatus, error) {
	app, err := s.repos.Application.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	return s.cluster.Status(ctx, app.Name)
}

// StatusAll aggregates the live workload of every application with an
// applied deployment. Failing applications are logged and skipped; the
// batch never fails as a whole.
func (s *Service) StatusAll(ctx context.Context) ([]cluster.ApplicationStatus, error) {
	deployments, err := s.repos.Deployment.ListApplied(ctx)
	if err != nil {
		return nil, err
	}
	names := []string{}
	for _, d := range deployments {
		if d.Application != nil {
			names = append(names, d.Application.Name)
		}
	}

	logger := log.FromContextOrDiscard(ctx)
	statuses := []cluster.ApplicationStatus{}
	for _, result := range s.cluster.BatchStatus(ctx, names) {
		if result.Err != nil {
			logger.Error(result.Err, "skip application status", "application", result.Application)
			continue
		}
		statuses = append(statuses, *result.Status)
	}
	return statuses, nil
}
