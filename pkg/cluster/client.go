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

// Package cluster talks to the kubernetes apiserver: ordered manifest apply
// and delete, workload status aggregation and readiness waiting. All errors
// leave this package classified by pkg/errors.
package cluster

import (
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

type Cluster struct {
	client  client.Client
	options *Options
}

func NewCluster(options *Options) (*Cluster, error) {
	cfg, err := options.RestConfig()
	if err != nil {
		return nil, err
	}
	cli, err := newRuntimeClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Cluster{client: cli, options: options}, nil
}

// NewClusterWithClient wires an existing client, used by tests.
func NewClusterWithClient(cli client.Client, options *Options) *Cluster {
	return &Cluster{client: cli, options: options}
}

func newRuntimeClient(config *rest.Config) (client.Client, error) {
	dc, err := discovery.NewDiscoveryClientForConfig(config)
	if err != nil {
		return nil, err
	}
	mapper := restmapper.NewDeferredDiscoveryRESTMapper(memory.NewMemCacheClient(dc))
	return client.New(config, client.Options{Scheme: scheme.Scheme, Mapper: mapper})
}
