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
	"net/http"
	"time"

	"github.com/spf13/pflag"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/utils"
)

type Options struct {
	Kubeconfig        string        `json:"kubeconfig,omitempty" description:"path to kubeconfig, in cluster config when empty"`
	DefaultNamespace  string        `json:"defaultNamespace,omitempty" description:"namespace for manifests that carry none"`
	Timeout           time.Duration `json:"timeout,omitempty" description:"apiserver request timeout"`
	Retries           int           `json:"retries,omitempty" description:"transport retries for idempotent requests"`
	QPS               float32       `json:"qps,omitempty" description:"apiserver client qps"`
	Burst             int           `json:"burst,omitempty" description:"apiserver client burst"`
	FieldOwner        string        `json:"fieldOwner,omitempty" description:"field manager name for server side apply"`
	StatusConcurrency int           `json:"statusConcurrency,omitempty" description:"max concurrent status queries"`
}

func NewDefaultOptions() *Options {
	return &Options{
		Kubeconfig:        "",
		DefaultNamespace:  "default",
		Timeout:           30 * time.Second,
		Retries:           3,
		QPS:               50,
		Burst:             100,
		FieldOwner:        "infra-api",
		StatusConcurrency: 8,
	}
}

func (o *Options) RegistFlags(prefix string, fs *pflag.FlagSet) {
	fs.StringVar(&o.Kubeconfig, utils.JoinFlagName(prefix, "kubeconfig"), o.Kubeconfig, "path to kubeconfig, in cluster config when empty")
	fs.StringVar(&o.DefaultNamespace, utils.JoinFlagName(prefix, "defaultnamespace"), o.DefaultNamespace, "namespace for manifests that carry none")
	fs.DurationVar(&o.Timeout, utils.JoinFlagName(prefix, "timeout"), o.Timeout, "apiserver request timeout")
	fs.IntVar(&o.Retries, utils.JoinFlagName(prefix, "retries"), o.Retries, "transport retries for idempotent requests")
	fs.Float32Var(&o.QPS, utils.JoinFlagName(prefix, "qps"), o.QPS, "apiserver client qps")
	fs.IntVar(&o.Burst, utils.JoinFlagName(prefix, "burst"), o.Burst, "apiserver client burst")
}

// RestConfig builds the apiserver config: in cluster service account first,
// explicit kubeconfig path second, default kubeconfig loading rules last.
func (o *Options) RestConfig() (*rest.Config, error) {
	cfg, err := o.loadRestConfig()
	if err != nil {
		return nil, err
	}
	cfg.Timeout = o.Timeout
	cfg.QPS = o.QPS
	cfg.Burst = o.Burst
	if o.Retries > 0 {
		retries := o.Retries
		cfg.Wrap(func(rt http.RoundTripper) http.RoundTripper {
			return &retryRoundTripper{next: rt, retries: retries}
		})
	}
	return cfg, nil
}

func (o *Options) loadRestConfig() (*rest.Config, error) {
	if o.Kubeconfig != "" {
		return clientcmd.BuildConfigFromFlags("", o.Kubeconfig)
	}
	if cfg, err := rest.InClusterConfig(); err == nil {
		return cfg, nil
	}
	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		clientcmd.NewDefaultClientConfigLoadingRules(), nil).ClientConfig()
}

// retryRoundTripper retries idempotent requests that failed before any
// response was received. Mutating verbs pass through untouched.
type retryRoundTripper struct {
	next    http.RoundTripper
	retries int
}

func (r *retryRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return r.next.RoundTrip(req)
	}
	var resp *http.Response
	var err error
	for i := 0; i <= r.retries; i++ {
		resp, err = r.next.RoundTrip(req)
		if err == nil {
			return resp, nil
		}
		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(time.Duration(i+1) * 100 * time.Millisecond):
		}
	}
	return resp, err
}
