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

package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/errors"
	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.MigrateModels(db))
	require.NoError(t, models.InitBaseData(db))
	return db
}

func newApplication(t *testing.T, repos *Repositories, name string) *models.Application {
	t.Helper()
	app := &models.Application{Name: name, Description: "test application", UserID: 1}
	require.NoError(t, repos.Application.Create(context.Background(), app))
	return app
}

func TestApplicationNameValidation(t *testing.T) {
	repos := New(setupDB(t))
	ctx := context.Background()

	for _, name := range []string{"", "Invalid_NAME!", "1soomsil", "-soomsil", "soomsil.dev"} {
		err := repos.Application.Create(ctx, &models.Application{Name: name, UserID: 1})
		require.Error(t, err, "name %q", name)
		assert.True(t, errors.IsKind(err, errors.ValidationError), "name %q", name)
	}

	// rejected names leave no row behind
	_, err := repos.Application.GetByName(ctx, "Invalid_NAME!")
	assert.True(t, errors.IsKind(err, errors.NotFound))
}

func TestApplicationNameConflict(t *testing.T) {
	repos := New(setupDB(t))
	ctx := context.Background()

	newApplication(t, repos, "soomsil")

	err := repos.Application.Create(ctx, &models.Application{Name: "soomsil", UserID: 1})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.Conflict))
}

func TestApplicationNameReuseAfterDelete(t *testing.T) {
	repos := New(setupDB(t))
	ctx := context.Background()

	app := newApplication(t, repos, "soomsil")
	require.NoError(t, repos.Application.Delete(ctx, app.ID))

	// soft deleted rows release the name
	require.NoError(t, repos.Application.Create(ctx, &models.Application{Name: "soomsil", UserID: 1}))

	_, err := repos.Application.Get(ctx, app.ID)
	assert.True(t, errors.IsKind(err, errors.NotFound))
}

func TestDeploymentInFlight(t *testing.T) {
	repos := New(setupDB(t))
	ctx := context.Background()
	app := newApplication(t, repos, "soomsil")

	_, err := repos.Deployment.GetInFlight(ctx, app.ID)
	assert.True(t, errors.IsKind(err, errors.NotFound))

	deployment := &models.Deployment{ApplicationID: app.ID, UserID: 1, Port: 8080}
	require.NoError(t, repos.Deployment.Create(ctx, deployment))

	got, err := repos.Deployment.GetInFlight(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, deployment.ID, got.ID)
	assert.Equal(t, models.StateRequest, got.State)

	// RETURN still occupies the slot
	adminID := uint(1)
	require.NoError(t, repos.Deployment.UpdateState(ctx, deployment.ID, models.StateReturn, "fix resources", &adminID))
	got, err = repos.Deployment.GetInFlight(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateReturn, got.State)
	assert.Equal(t, "fix resources", got.Comment)

	// APPROVAL frees it
	require.NoError(t, repos.Deployment.UpdateState(ctx, deployment.ID, models.StateApproval, "ok", &adminID))
	_, err = repos.Deployment.GetInFlight(ctx, app.ID)
	assert.True(t, errors.IsKind(err, errors.NotFound))
}

func TestSetAppliedMovesFlag(t *testing.T) {
	db := setupDB(t)
	repos := New(db)
	ctx := context.Background()
	app := newApplication(t, repos, "soomsil")

	first := &models.Deployment{ApplicationID: app.ID, UserID: 1}
	second := &models.Deployment{ApplicationID: app.ID, UserID: 1}
	require.NoError(t, repos.Deployment.Create(ctx, first))
	require.NoError(t, repos.Deployment.Create(ctx, second))

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repos.WithTransaction(tx).Deployment.SetApplied(ctx, app.ID, first.ID)
	}))
	got, err := repos.Deployment.GetApplied(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repos.WithTransaction(tx).Deployment.SetApplied(ctx, app.ID, second.ID)
	}))
	got, err = repos.Deployment.GetApplied(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	// at most one applied deployment per application
	var count int64
	require.NoError(t, db.Model(&models.Deployment{}).
		Where("application_id = ? AND is_applied = ?", app.ID, true).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSetAppliedConcurrent(t *testing.T) {
	db := setupDB(t)
	// every connection to an in-memory sqlite database sees its own database,
	// so pin the pool to one connection before fanning out
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	repos := New(db)
	ctx := context.Background()
	app := newApplication(t, repos, "soomsil")

	first := &models.Deployment{ApplicationID: app.ID, UserID: 1}
	second := &models.Deployment{ApplicationID: app.ID, UserID: 1}
	require.NoError(t, repos.Deployment.Create(ctx, first))
	require.NoError(t, repos.Deployment.Create(ctx, second))

	var wg sync.WaitGroup
	for _, id := range []uint{first.ID, second.ID} {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.Transaction(func(tx *gorm.DB) error {
				return repos.WithTransaction(tx).Deployment.SetApplied(ctx, app.ID, id)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// whichever transaction committed last wins; never both
	var count int64
	require.NoError(t, db.Model(&models.Deployment{}).
		Where("application_id = ? AND is_applied = ?", app.ID, true).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)

	got, err := repos.Deployment.GetApplied(ctx, app.ID)
	require.NoError(t, err)
	assert.Contains(t, []uint{first.ID, second.ID}, got.ID)
}

func TestManifestReplaceForDeployment(t *testing.T) {
	repos := New(setupDB(t))
	ctx := context.Background()
	app := newApplication(t, repos, "soomsil")
	deployment := &models.Deployment{ApplicationID: app.ID, UserID: 1}
	require.NoError(t, repos.Deployment.Create(ctx, deployment))

	require.NoError(t, repos.Manifest.ReplaceForDeployment(ctx, deployment.ID, []models.Manifest{
		{FileName: "namespace.yaml", Content: "kind: Namespace"},
		{FileName: "deployment.yaml", Content: "kind: Deployment"},
	}))

	manifests, err := repos.Manifest.ListByDeployment(ctx, deployment.ID)
	require.NoError(t, err)
	require.Len(t, manifests, 2)

	require.NoError(t, repos.Manifest.ReplaceForDeployment(ctx, deployment.ID, []models.Manifest{
		{FileName: "deployment.yaml", Content: "kind: Deployment\nmetadata: {}"},
	}))
	manifests, err = repos.Manifest.ListByDeployment(ctx, deployment.ID)
	require.NoError(t, err)
	require.Len(t, manifests, 1)
	assert.Equal(t, "deployment.yaml", manifests[0].FileName)
}

func TestUserListAdminEmails(t *testing.T) {
	repos := New(setupDB(t))
	ctx := context.Background()

	active, inactive := true, false
	require.NoError(t, repos.User.Create(ctx, &models.User{
		Email: "user@yourssu.com", Nickname: "user", Role: models.RoleUser, IsActive: &active,
	}))
	require.NoError(t, repos.User.Create(ctx, &models.User{
		Email: "gone@yourssu.com", Nickname: "gone", Role: models.RoleAdmin, IsActive: &inactive,
	}))

	emails, err := repos.User.ListAdminEmails(ctx)
	require.NoError(t, err)
	// seed admin only; inactive admins and plain users excluded
	assert.Equal(t, []string{"admin@yourssu.com"}, emails)
}
