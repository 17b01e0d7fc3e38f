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
	"github.com/spf13/cobra"

	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/models"
	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/utils/config"
	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/utils/database"
)

type MigrateOptions struct {
	Mysql    *database.Options `json:"mysql,omitempty" description:"database options"`
	InitData bool              `json:"initData,omitempty" description:"seed the admin account after migration"`
}

func NewMigrateCmd() *cobra.Command {
	options := &MigrateOptions{
		Mysql:    database.NewDefaultOptions(),
		InitData: true,
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "migrate database schema and seed base data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Parse(cmd.Flags()); err != nil {
				return err
			}
			db, err := database.NewDatabase(options.Mysql)
			if err != nil {
				return err
			}
			if err := models.MigrateModels(db.DB()); err != nil {
				return err
			}
			if options.InitData {
				return models.InitBaseData(db.DB())
			}
			return nil
		},
	}
	options.Mysql.RegistFlags("mysql", cmd.Flags())
	cmd.Flags().BoolVar(&options.InitData, "initdata", options.InitData, "seed the admin account after migration")
	return cmd
}
