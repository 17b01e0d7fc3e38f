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

package cluster

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/errors"
)

// ApplicationStatus is the live workload view of one application. The
// application's workload convention is fixed: the deployment and its
// namespace are both named after the application, and pods carry the
// app=<name> label.
type ApplicationStatus struct {
	Application       string      `json:"application"`
	Replicas          int32       `json:"replicas"`
	ReadyReplicas     int32       `json:"ready_replicas"`
	AvailableReplicas int32       `json:"available_replicas"`
	Age               string      `json:"age"`
	Conditions        []string    `json:"conditions,omitempty"`
	Pods              []PodStatus `json:"pods"`
}

type PodStatus struct {
	Name     string `json:"name"`
	Phase    string `json:"phase"`
	Ready    bool   `json:"ready"`
	Restarts int32  `json:"restarts"`
	Age      string `json:"age"`
}

// StatusResult is one item of a batch status query. Err is set instead of
// Status when the application's workload could not be read.
type StatusResult struct {
	Application string             `json:"application"`
	Status      *ApplicationStatus `json:"status,omitempty"`
	Err         error              `json:"-"`
}

// Status reads the deployment and pods of the given application.
func (c *Cluster) Status(ctx context.Context, name string) (*ApplicationStatus, error) {
	deployment := &appsv1.Deployment{}
	if err := c.client.Get(ctx, types.NamespacedName{Namespace: name, Name: name}, deployment); err != nil {
		return nil, errors.FromCluster(err, "get deployment "+name)
	}

	pods := &corev1.PodList{}
	if err := c.client.List(ctx, pods,
		client.InNamespace(name), client.MatchingLabels{"app": name}); err != nil {
		return nil, errors.FromCluster(err, "list pods of "+name)
	}

	status := &ApplicationStatus{
		Application:       name,
		Replicas:          deployment.Status.Replicas,
		ReadyReplicas:     deployment.Status.ReadyReplicas,
		AvailableReplicas: deployment.Status.AvailableReplicas,
		Age:               FormatAge(deployment.CreationTimestamp.Time),
		Pods:              []PodStatus{},
	}
	for _, cond := range deployment.Status.Conditions {
		if cond.Status == corev1.ConditionTrue {
			status.Conditions = append(status.Conditions, string(cond.Type))
		}
	}
	for _, pod := range pods.Items {
		status.Pods = append(status.Pods, podStatus(pod))
	}
	return status, nil
}

// BatchStatus queries all applications with bounded concurrency. A failing
// application yields a result with Err set and never affects the others.
func (c *Cluster) BatchStatus(ctx context.Context, names []string) []StatusResult {
	results := make([]StatusResult, len(names))
	eg := &errgroup.Group{}
	eg.SetLimit(c.options.StatusConcurrency)
	for i, name := range names {
		i, name := i, name
		eg.Go(func() error {
			status, err := c.Status(ctx, name)
			results[i] = StatusResult{Application: name, Status: status, Err: err}
			return nil
		})
	}
	_ = eg.Wait()
	return results
}

func podStatus(pod corev1.Pod) PodStatus {
	restarts := int32(0)
	ready := len(pod.Status.ContainerStatuses) > 0
	for _, cs := range pod.Status.ContainerStatuses {
		restarts += cs.RestartCount
		if !cs.Ready {
			ready = false
		}
	}
	return PodStatus{
		Name:     pod.Name,
		Phase:    string(pod.Status.Phase),
		Ready:    ready,
		Restarts: restarts,
		Age:      FormatAge(pod.CreationTimestamp.Time),
	}
}

// FormatAge renders an age the way kubectl does at day, hour and minute
// granularity: 3d, 7h, 25m.
func FormatAge(created time.Time) string {
	return formatAgeSince(created, time.Now())
}

func formatAgeSince(created, now time.Time) string {
	age := now.Sub(created)
	switch {
	case age >= 24*time.Hour:
		return fmt.Sprintf("%dd", int(age.Hours()/24))
	case age >= time.Hour:
		return fmt.Sprintf("%dh", int(age.Hours()))
	default:
		minutes := int(age.Minutes())
		if minutes < 0 {
			minutes = 0
		}
		return fmt.Sprintf("%dm", minutes)
	}
}
