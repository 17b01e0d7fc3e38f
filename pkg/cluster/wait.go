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
	"time"

	appsv1 "k8s.io/api/apps/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/utils/pointer"

	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/errors"
	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/manifest"
)

const waitPollInterval = 5 * time.Second

// WaitUntilReady polls until every Deployment in the manifest set reports
// all desired replicas ready, or the timeout expires.
func (c *Cluster) WaitUntilReady(ctx context.Context, manifests []manifest.Manifest, timeout time.Duration) error {
	buckets, cerrs := manifest.Classify(manifests)
	if len(cerrs) > 0 {
		return errors.Wrap(errors.ValidationError, cerrs[0], "classify manifests")
	}
	for _, doc := range buckets.Deployments {
		namespace := doc.Object.GetNamespace()
		if namespace == "" {
			namespace = c.options.DefaultNamespace
		}
		key := types.NamespacedName{Namespace: namespace, Name: doc.Object.GetName()}
		err := wait.PollImmediate(waitPollInterval, timeout, func() (bool, error) {
			deployment := &appsv1.Deployment{}
			if err := c.client.Get(ctx, key, deployment); err != nil {
				return false, nil
			}
			desired := pointer.Int32Deref(deployment.Spec.Replicas, 1)
			return deployment.Status.ReadyReplicas >= desired, nil
		})
		if err != nil {
			return errors.Wrapf(errors.Timeout, err, "wait for deployment %s/%s", key.Namespace, key.Name)
		}
	}
	return nil
}
