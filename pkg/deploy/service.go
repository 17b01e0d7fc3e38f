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

// Package deploy implements the deployment review workflow: a user requests
// a deployment with a manifest set, an admin returns or approves it, and an
// approval drives the ordered cluster apply. The single invariant guarded
// throughout is that each application has at most one applied deployment.
package deploy

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"gorm.io/gorm"

	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/cluster"
	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/manifest"
	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/models"
	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/repository"
	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/utils"
)

// Cluster is the part of pkg/cluster the workflow depends on.
type Cluster interface {
	Apply(ctx context.Context, manifests []manifest.Manifest) ([]string, error)
	Delete(ctx context.Context, manifests []manifest.Manifest) error
	Status(ctx context.Context, name string) (*cluster.ApplicationStatus, error)
	BatchStatus(ctx context.Context, names []string) []cluster.StatusResult
}

// Notifier sends review mails, best effort.
type Notifier interface {
	Send(ctx context.Context, to []string, subject, body string) bool
}

type Options struct {
	CIToken      string `json:"ciToken,omitempty" description:"shared secret for the ci image update hook"`
	LinkTemplate string `json:"linkTemplate,omitempty" description:"review link template, {id} is replaced with the deployment id"`
}

func NewDefaultOptions() *Options {
	return &Options{
		CIToken:      "",
		LinkTemplate: "https://infra.yourssu.com/deployments/{id}",
	}
}

func (o *Options) RegistFlags(prefix string, fs *pflag.FlagSet) {
	fs.StringVar(&o.CIToken, utils.JoinFlagName(prefix, "citoken"), o.CIToken, "shared secret for the ci image update hook")
	fs.StringVar(&o.LinkTemplate, utils.JoinFlagName(prefix, "linktemplate"), o.LinkTemplate, "review link template, {id} is replaced with the deployment id")
}

type Service struct {
	db       *gorm.DB
	cluster  Cluster
	notifier Notifier
	repos    *repository.Repositories
	options  *Options
}

func NewService(db *gorm.DB, cluster Cluster, notifier Notifier, options *Options) *Service {
	return &Service{
		db:       db,
		cluster:  cluster,
		notifier: notifier,
		repos:    repository.New(db),
		options:  options,
	}
}

func (s *Service) reviewLink(deploymentID uint) string {
	return strings.ReplaceAll(s.options.LinkTemplate, "{id}", fmt.Sprint(deploymentID))
}

func toManifests(stored []models.Manifest) []manifest.Manifest {
	out := make([]manifest.Manifest, 0, len(stored))
	for _, m := range stored {
		out = append(out, manifest.Manifest{FileName: m.FileName, Content: m.Content})
	}
	return out
}

func toStoredManifests(manifests []manifest.Manifest) []models.Manifest {
	out := make([]models.Manifest, 0, len(manifests))
	for _, m := range manifests {
		out = append(out, models.Manifest{FileName: m.FileName, Content: m.Content})
	}
	return out
}
