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
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/errors"
	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/log"
	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/manifest"
)

// Apply classifies the manifests and applies them in dependency order,
// namespaces first. Each document is upserted idempotently; reapplying an
// unchanged set is a no-op on the cluster. The first failure aborts the run,
// but the names of the files already applied are always returned so a
// partial apply stays observable.
func (c *Cluster) Apply(ctx context.Context, manifests []manifest.Manifest) ([]string, error) {
	buckets, errs := manifest.Classify(manifests)
	if len(errs) > 0 {
		return nil, errors.Wrap(errors.ValidationError, errs[0], "classify manifests")
	}
	logger := log.FromContextOrDiscard(ctx)

	applied := []string{}
	for _, doc := range buckets.ApplyOrder() {
		obj := c.toObject(doc)
		logger.Info("applying resource", "kind", doc.Object.GetKind(), "name", doc.Object.GetName(), "namespace", obj.GetNamespace(), "file", doc.FileName)
		if err := c.applyResource(ctx, obj); err != nil {
			logger.Error(err, "apply resource", "file", doc.FileName)
			return applied, errors.FromCluster(err, "apply "+doc.FileName)
		}
		applied = append(applied, doc.FileName)
	}
	return applied, nil
}

// Delete removes the manifests in teardown order, dependents before their
// namespace. Missing resources count as deleted; every item is attempted and
// failures are aggregated into one error.
func (c *Cluster) Delete(ctx context.Context, manifests []manifest.Manifest) error {
	buckets, cerrs := manifest.Classify(manifests)
	if len(cerrs) > 0 {
		return errors.Wrap(errors.ValidationError, cerrs[0], "classify manifests")
	}
	logger := log.FromContextOrDiscard(ctx)

	errs := []string{}
	for _, doc := range buckets.DeleteOrder() {
		obj := c.toObject(doc)
		logger.Info("deleting resource", "kind", doc.Object.GetKind(), "name", doc.Object.GetName(), "namespace", obj.GetNamespace(), "file", doc.FileName)
		if err := c.client.Delete(ctx, obj); err != nil {
			if apierrors.IsNotFound(err) {
				continue
			}
			logger.Error(err, "delete resource", "file", doc.FileName)
			errs = append(errs, doc.FileName+": "+err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.Newf(errors.Unexpected, "delete resources: %s", strings.Join(errs, "; "))
	}
	return nil
}

// applyResource is the idempotent upsert: create when absent, otherwise
// server side apply with forced ownership so repeated applies converge.
func (c *Cluster) applyResource(ctx context.Context, obj client.Object) error {
	exists, _ := obj.DeepCopyObject().(client.Object)
	if err := c.client.Get(ctx, client.ObjectKeyFromObject(exists), exists); err != nil {
		if !apierrors.IsNotFound(err) {
			return err
		}
		return c.client.Create(ctx, obj)
	}
	obj.SetManagedFields(nil)
	return c.client.Patch(ctx, obj, client.Apply,
		client.FieldOwner(c.options.FieldOwner), client.ForceOwnership)
}

// toObject converts a classified document to the typed object for its kind,
// falling back to the raw unstructured form. The namespace is normalized on
// the way: cluster scoped kinds lose it, namespaced kinds without one get
// the default.
func (c *Cluster) toObject(doc manifest.Document) client.Object {
	obj := doc.Object.DeepCopy()
	if manifest.IsClusterScoped(obj.GetKind()) {
		obj.SetNamespace("")
	} else if obj.GetNamespace() == "" {
		obj.SetNamespace(c.options.DefaultNamespace)
	}

	var typed client.Object
	switch doc.Kind {
	case manifest.KindNamespace:
		typed = &corev1.Namespace{}
	case manifest.KindService:
		typed = &corev1.Service{}
	case manifest.KindDeployment:
		typed = &appsv1.Deployment{}
	case manifest.KindIngress:
		typed = &networkingv1.Ingress{}
	default:
		return obj
	}
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(obj.Object, typed); err != nil {
		return obj
	}
	return typed
}
