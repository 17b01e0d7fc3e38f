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

// Package manifest parses and classifies raw declarative documents before
// they reach the cluster applier. Each manifest is a (file name, content)
// pair holding a single yaml document with at least kind, apiVersion and
// metadata.name.
package manifest

import (
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/yaml"

	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/errors"
)

type Manifest struct {
	FileName string `json:"file_name" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

// ResourceKind is the closed variant set the applier dispatches on. Anything
// that is not one of the four well-known kinds is handled by the generic
// resource path.
type ResourceKind int

const (
	KindOther ResourceKind = iota
	KindNamespace
	KindService
	KindDeployment
	KindIngress
)

func (k ResourceKind) String() string {
	switch k {
	case KindNamespace:
		return "Namespace"
	case KindService:
		return "Service"
	case KindDeployment:
		return "Deployment"
	case KindIngress:
		return "Ingress"
	default:
		return "Other"
	}
}

// KindOf buckets a document kind string, case-insensitively.
func KindOf(kind string) ResourceKind {
	switch strings.ToLower(kind) {
	case "namespace":
		return KindNamespace
	case "service":
		return KindService
	case "deployment":
		return KindDeployment
	case "ingress":
		return KindIngress
	default:
		return KindOther
	}
}

// clusterScopedKinds is the fixed allow-list of kinds applied without a
// namespace; everything else defaults to namespace scope.
var clusterScopedKinds = map[string]struct{}{
	"persistentvolume":         {},
	"clusterrole":              {},
	"clusterrolebinding":       {},
	"customresourcedefinition": {},
	"node":                     {},
	"storageclass":             {},
	"namespace":                {},
}

func IsClusterScoped(kind string) bool {
	_, ok := clusterScopedKinds[strings.ToLower(kind)]
	return ok
}

// Document is a classified manifest. Object is nil when the content failed
// to parse; such documents land in the Other bucket and fail individually at
// apply time instead of aborting classification of the whole batch.
type Document struct {
	Manifest
	Kind   ResourceKind
	Object *unstructured.Unstructured
}

// Parse decodes the manifest content into an unstructured object. The full
// document map is retained, so re-serializing loses no fields.
func Parse(m Manifest) (*unstructured.Unstructured, error) {
	obj := &unstructured.Unstructured{}
	if err := yaml.Unmarshal([]byte(m.Content), obj); err != nil {
		return nil, errors.Wrapf(errors.ValidationError, err, "parse manifest %s", m.FileName)
	}
	if obj.Object == nil || obj.GetKind() == "" {
		return nil, errors.Newf(errors.ValidationError, "manifest %s has no kind", m.FileName)
	}
	return obj, nil
}

// Buckets groups documents by kind, preserving the original relative order
// within each bucket.
type Buckets struct {
	Namespaces  []Document
	Services    []Document
	Deployments []Document
	Ingresses   []Document
	Others      []Document
}

// Classify buckets the given manifests. Unparsable documents are routed to
// Others with a nil Object and reported in the returned error list, one per
// offending item; the batch itself always classifies.
func Classify(manifests []Manifest) (Buckets, []error) {
	buckets := Buckets{}
	errs := []error{}
	for _, m := range manifests {
		obj, err := Parse(m)
		if err != nil {
			errs = append(errs, err)
			buckets.Others = append(buckets.Others, Document{Manifest: m})
			continue
		}
		doc := Document{Manifest: m, Kind: KindOf(obj.GetKind()), Object: obj}
		switch doc.Kind {
		case KindNamespace:
			buckets.Namespaces = append(buckets.Namespaces, doc)
		case KindService:
			buckets.Services = append(buckets.Services, doc)
		case KindDeployment:
			buckets.Deployments = append(buckets.Deployments, doc)
		case KindIngress:
			buckets.Ingresses = append(buckets.Ingresses, doc)
		default:
			buckets.Others = append(buckets.Others, doc)
		}
	}
	return buckets, errs
}

// ApplyOrder returns documents in cluster apply order: namespaces first so
// later namespaced resources have a home, ingresses after the services and
// deployments they route to.
func (b Buckets) ApplyOrder() []Document {
	out := make([]Document, 0, b.len())
	out = append(out, b.Namespaces...)
	out = append(out, b.Services...)
	out = append(out, b.Deployments...)
	out = append(out, b.Ingresses...)
	out = append(out, b.Others...)
	return out
}

// DeleteOrder returns documents in teardown order: dependents before the
// namespace that would cascade them, namespace last.
func (b Buckets) DeleteOrder() []Document {
	out := make([]Document, 0, b.len())
	out = append(out, b.Deployments...)
	out = append(out, b.Services...)
	out = append(out, b.Ingresses...)
	out = append(out, b.Namespaces...)
	out = append(out, b.Others...)
	return out
}

func (b Buckets) len() int {
	return len(b.Namespaces) + len(b.Services) + len(b.Deployments) + len(b.Ingresses) + len(b.Others)
}
