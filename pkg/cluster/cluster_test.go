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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/errors"
	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/manifest"
)

// recordingClient wraps the fake client to log mutating calls in order and
// to inject failures. Apply patches are rewritten to updates because the
// object tracker has no server side apply support.
type recordingClient struct {
	client.Client
	ops        []string
	failCreate map[string]error
}

func (r *recordingClient) Create(ctx context.Context, obj client.Object, opts ...client.CreateOption) error {
	kind := kindOf(obj)
	if err, ok := r.failCreate[kind]; ok {
		return err
	}
	r.ops = append(r.ops, "create "+kind+"/"+obj.GetName())
	return r.Client.Create(ctx, obj, opts...)
}

func (r *recordingClient) Patch(ctx context.Context, obj client.Object, patch client.Patch, opts ...client.PatchOption) error {
	r.ops = append(r.ops, "patch "+kindOf(obj)+"/"+obj.GetName())
	existing, _ := obj.DeepCopyObject().(client.Object)
	if err := r.Client.Get(ctx, client.ObjectKeyFromObject(obj), existing); err == nil {
		obj.SetResourceVersion(existing.GetResourceVersion())
	}
	return r.Client.Update(ctx, obj)
}

func (r *recordingClient) Delete(ctx context.Context, obj client.Object, opts ...client.DeleteOption) error {
	r.ops = append(r.ops, "delete "+kindOf(obj)+"/"+obj.GetName())
	return r.Client.Delete(ctx, obj, opts...)
}

func kindOf(obj client.Object) string {
	switch obj.(type) {
	case *corev1.Namespace:
		return "Namespace"
	case *corev1.Service:
		return "Service"
	case *appsv1.Deployment:
		return "Deployment"
	case *corev1.ConfigMap:
		return "ConfigMap"
	default:
		if kind := obj.GetObjectKind().GroupVersionKind().Kind; kind != "" {
			return kind
		}
		return fmt.Sprintf("%T", obj)
	}
}

func newTestCluster(t *testing.T, objs ...client.Object) (*Cluster, *recordingClient) {
	t.Helper()
	fakeClient := fake.NewClientBuilder().WithScheme(scheme.Scheme).WithObjects(objs...).Build()
	recorder := &recordingClient{Client: fakeClient, failCreate: map[string]error{}}
	return NewClusterWithClient(recorder, NewDefaultOptions()), recorder
}

func testManifests() []manifest.Manifest {
	return []manifest.Manifest{
		{FileName: "ingress.yaml", Content: "apiVersion: networking.k8s.io/v1\nkind: Ingress\nmetadata:\n  name: soomsil\n  namespace: soomsil\n"},
		{FileName: "deployment.yaml", Content: "apiVersion: apps/v1\nkind: Deployment\nmetadata:\n  name: soomsil\n  namespace: soomsil\nspec:\n  selector:\n    matchLabels:\n      app: soomsil\n  template:\n    metadata:\n      labels:\n        app: soomsil\n    spec:\n      containers:\n        - name: soomsil\n          image: registry.yourssu.com/soomsil:v1\n"},
		{FileName: "namespace.yaml", Content: "apiVersion: v1\nkind: Namespace\nmetadata:\n  name: soomsil\n"},
		{FileName: "service.yaml", Content: "apiVersion: v1\nkind: Service\nmetadata:\n  name: soomsil\n  namespace: soomsil\n"},
	}
}

func TestApplyOrdering(t *testing.T) {
	cluster, recorder := newTestCluster(t)

	applied, err := cluster.Apply(context.Background(), testManifests())
	require.NoError(t, err)
	assert.Equal(t, []string{"namespace.yaml", "service.yaml", "deployment.yaml", "ingress.yaml"}, applied)
	assert.Equal(t, []string{
		"create Namespace/soomsil",
		"create Service/soomsil",
		"create Deployment/soomsil",
		"create Ingress/soomsil",
	}, recorder.ops)
}

func TestApplyIdempotent(t *testing.T) {
	cluster, recorder := newTestCluster(t)

	_, err := cluster.Apply(context.Background(), testManifests())
	require.NoError(t, err)
	recorder.ops = nil

	applied, err := cluster.Apply(context.Background(), testManifests())
	require.NoError(t, err)
	assert.Len(t, applied, 4)
	// second run converges through patches, no duplicate creates
	assert.Equal(t, []string{
		"patch Namespace/soomsil",
		"patch Service/soomsil",
		"patch Deployment/soomsil",
		"patch Ingress/soomsil",
	}, recorder.ops)
}

func TestApplyPartialFailureObservable(t *testing.T) {
	cluster, recorder := newTestCluster(t)
	recorder.failCreate["Ingress"] = apierrors.NewForbidden(
		schema.GroupResource{Group: "networking.k8s.io", Resource: "ingresses"}, "soomsil", nil)

	applied, err := cluster.Apply(context.Background(), testManifests())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.PermissionDenied))
	// everything applied before the failure stays reported
	assert.Equal(t, []string{"namespace.yaml", "service.yaml", "deployment.yaml"}, applied)
}

func TestApplyConflictClassification(t *testing.T) {
	cluster, recorder := newTestCluster(t)
	recorder.failCreate["Service"] = apierrors.NewConflict(
		schema.GroupResource{Resource: "services"}, "soomsil", fmt.Errorf("edit conflict"))

	applied, err := cluster.Apply(context.Background(), testManifests())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.Conflict))
	assert.Equal(t, []string{"namespace.yaml"}, applied)
}

func TestApplyDefaultNamespace(t *testing.T) {
	cluster, recorder := newTestCluster(t)
	manifests := []manifest.Manifest{
		{FileName: "configmap.yaml", Content: "apiVersion: v1\nkind: ConfigMap\nmetadata:\n  name: conf\n"},
	}
	_, err := cluster.Apply(context.Background(), manifests)
	require.NoError(t, err)
	require.Equal(t, []string{"create ConfigMap/conf"}, recorder.ops)

	got := &corev1.ConfigMap{}
	require.NoError(t, recorder.Get(context.Background(),
		client.ObjectKey{Namespace: "default", Name: "conf"}, got))
}

func TestApplyRejectsUnparsable(t *testing.T) {
	cluster, _ := newTestCluster(t)
	applied, err := cluster.Apply(context.Background(), []manifest.Manifest{
		{FileName: "broken.yaml", Content: "{{ nope"},
	})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.ValidationError))
	assert.Empty(t, applied)
}

func TestDeleteOrderAndMissingTolerated(t *testing.T) {
	cluster, recorder := newTestCluster(t)
	_, err := cluster.Apply(context.Background(), testManifests())
	require.NoError(t, err)
	recorder.ops = nil

	// delete twice: second round hits only NotFound and still succeeds
	require.NoError(t, cluster.Delete(context.Background(), testManifests()))
	assert.Equal(t, []string{
		"delete Deployment/soomsil",
		"delete Service/soomsil",
		"delete Ingress/soomsil",
		"delete Namespace/soomsil",
	}, recorder.ops)

	require.NoError(t, cluster.Delete(context.Background(), testManifests()))
}

func newWorkload(name string, ready int32, created time.Time) []client.Object {
	replicas := ready
	return []client.Object{
		&appsv1.Deployment{
			ObjectMeta: metav1.ObjectMeta{
				Name: name, Namespace: name,
				CreationTimestamp: metav1.Time{Time: created},
			},
			Spec: appsv1.DeploymentSpec{Replicas: &replicas},
			Status: appsv1.DeploymentStatus{
				Replicas: replicas, ReadyReplicas: ready, AvailableReplicas: ready,
			},
		},
		&corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{
				Name: name + "-pod-0", Namespace: name,
				Labels:            map[string]string{"app": name},
				CreationTimestamp: metav1.Time{Time: created},
			},
			Status: corev1.PodStatus{
				Phase: corev1.PodRunning,
				ContainerStatuses: []corev1.ContainerStatus{
					{Name: name, Ready: true, RestartCount: 2},
				},
			},
		},
	}
}

func TestStatus(t *testing.T) {
	objs := newWorkload("soomsil", 2, time.Now().Add(-48*time.Hour))
	cluster, _ := newTestCluster(t, objs...)

	status, err := cluster.Status(context.Background(), "soomsil")
	require.NoError(t, err)
	assert.Equal(t, "soomsil", status.Application)
	assert.EqualValues(t, 2, status.ReadyReplicas)
	assert.Equal(t, "2d", status.Age)
	require.Len(t, status.Pods, 1)
	assert.True(t, status.Pods[0].Ready)
	assert.EqualValues(t, 2, status.Pods[0].Restarts)
	assert.Equal(t, "Running", status.Pods[0].Phase)
}

func TestStatusNotFound(t *testing.T) {
	cluster, _ := newTestCluster(t)
	_, err := cluster.Status(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.NotFound))
}

func TestBatchStatusPartialFailure(t *testing.T) {
	objs := append(
		newWorkload("soomsil", 1, time.Now().Add(-time.Hour)),
		newWorkload("signal", 1, time.Now().Add(-time.Minute))...)
	cluster, _ := newTestCluster(t, objs...)

	results := cluster.BatchStatus(context.Background(), []string{"soomsil", "missing", "signal"})
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.NotNil(t, results[0].Status)
	assert.Error(t, results[1].Err)
	assert.True(t, errors.IsKind(results[1].Err, errors.NotFound))
	assert.NoError(t, results[2].Err)
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		age  time.Duration
		want string
	}{
		{3 * 24 * time.Hour, "3d"},
		{25 * time.Hour, "1d"},
		{7 * time.Hour, "7h"},
		{90 * time.Minute, "1h"},
		{25 * time.Minute, "25m"},
		{0, "0m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatAgeSince(now.Add(-tt.age), now))
	}
}
