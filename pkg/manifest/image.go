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

package manifest

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/yaml"

	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/errors"
)

// WithImage clones the manifest set, replacing the first container image of
// every Deployment-kind document with image. All other documents are copied
// verbatim. This is the CI hook path: the pipeline only ever moves the image
// reference, never the rest of the spec.
func WithImage(manifests []Manifest, image string) ([]Manifest, error) {
	out := make([]Manifest, 0, len(manifests))
	for _, m := range manifests {
		obj, err := Parse(m)
		if err != nil || KindOf(obj.GetKind()) != KindDeployment {
			out = append(out, m)
			continue
		}
		containers, found, err := unstructured.NestedSlice(obj.Object, "spec", "template", "spec", "containers")
		if err != nil || !found || len(containers) == 0 {
			return nil, errors.Newf(errors.ValidationError, "no containers found in deployment manifest %s", m.FileName)
		}
		container, ok := containers[0].(map[string]interface{})
		if !ok {
			return nil, errors.Newf(errors.ValidationError, "malformed container in deployment manifest %s", m.FileName)
		}
		container["image"] = image
		if err := unstructured.SetNestedSlice(obj.Object, containers, "spec", "template", "spec", "containers"); err != nil {
			return nil, errors.Wrapf(errors.Unexpected, err, "update deployment manifest %s", m.FileName)
		}
		content, err := yaml.Marshal(obj.Object)
		if err != nil {
			return nil, errors.Wrapf(errors.Unexpected, err, "serialize deployment manifest %s", m.FileName)
		}
		out = append(out, Manifest{FileName: m.FileName, Content: string(content)})
	}
	return out, nil
}
