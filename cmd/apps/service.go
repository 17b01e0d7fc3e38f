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

package apps

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/cluster"
	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/deploy"
	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/log"
	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/mail"
	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/utils/config"
	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/utils/database"
)

type ServiceOptions struct {
	LogLevel string            `json:"logLevel,omitempty" description:"log level: debug, info, warn, error"`
	Mysql    *database.Options `json:"mysql,omitempty" description:"database options"`
	Cluster  *cluster.Options  `json:"cluster,omitempty" description:"kubernetes cluster options"`
	Mail     *mail.Options     `json:"mail,omitempty" description:"smtp notifier options"`
	Deploy   *deploy.Options   `json:"deploy,omitempty" description:"deployment workflow options"`
}

func NewDefaultServiceOptions() *ServiceOptions {
	return &ServiceOptions{
		LogLevel: "info",
		Mysql:    database.NewDefaultOptions(),
		Cluster:  cluster.NewDefaultOptions(),
		Mail:     mail.NewDefaultOptions(),
		Deploy:   deploy.NewDefaultOptions(),
	}
}

func (o *ServiceOptions) RegistFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.LogLevel, "loglevel", o.LogLevel, "log level: debug, info, warn, error")
	o.Mysql.RegistFlags("mysql", fs)
	o.Cluster.RegistFlags("cluster", fs)
	o.Mail.RegistFlags("mail", fs)
	o.Deploy.RegistFlags("deploy", fs)
}

func NewServiceCmd() *cobra.Command {
	options := NewDefaultServiceOptions()

	cmd := &cobra.Command{
		Use:          "service",
		Short:        "run the deployment approval service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Parse(cmd.Flags()); err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runService(ctx, options)
		},
	}
	cmd.AddCommand(newGenCfgCmd())
	options.RegistFlags(cmd.Flags())
	return cmd
}

func runService(ctx context.Context, options *ServiceOptions) error {
	log.SetLevel(options.LogLevel)
	ctx = log.NewContext(ctx, log.LogrLogger)

	db, err := database.NewDatabase(options.Mysql)
	if err != nil {
		return err
	}
	kube, err := cluster.NewCluster(options.Cluster)
	if err != nil {
		return err
	}
	notifier := mail.NewNotifier(options.Mail)
	service := deploy.NewService(db.DB(), kube, notifier, options.Deploy)

	// startup connectivity check against the live workloads
	statuses, err := service.StatusAll(ctx)
	if err != nil {
		return err
	}
	log.Info("deployment service ready", "applied_applications", len(statuses))

	<-ctx.Done()
	log.Info("shutting down")
	return nil
}

func newGenCfgCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gencfg",
		Short: "generate config template",
		Run: func(_ *cobra.Command, _ []string) {
			config.GenerateConfig(NewDefaultServiceOptions())
		},
	}
}
