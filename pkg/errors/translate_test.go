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

package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/VividCortex/mysqlerr"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

func TestFromCluster(t *testing.T) {
	gr := schema.GroupResource{Group: "apps", Resource: "deployments"}
	tests := []struct {
		err  error
		want Kind
	}{
		{apierrors.NewNotFound(gr, "soomsil"), NotFound},
		{apierrors.NewForbidden(gr, "soomsil", nil), PermissionDenied},
		{apierrors.NewUnauthorized("no token"), PermissionDenied},
		{apierrors.NewConflict(gr, "soomsil", fmt.Errorf("stale")), Conflict},
		{apierrors.NewAlreadyExists(gr, "soomsil"), Conflict},
		{apierrors.NewBadRequest("bad spec"), ValidationError},
		{apierrors.NewTimeoutError("too slow", 1), Timeout},
		{context.DeadlineExceeded, Timeout},
		{fmt.Errorf("connection refused"), Unexpected},
	}
	for _, tt := range tests {
		got := FromCluster(tt.err, "apply deployment.yaml")
		assert.Equal(t, tt.want, got.Kind, "for %v", tt.err)
		assert.True(t, Is(got, tt.err), "cause preserved for %v", tt.err)
	}
}

func TestFromStorage(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{gorm.ErrRecordNotFound, NotFound},
		{&mysql.MySQLError{Number: mysqlerr.ER_DUP_ENTRY, Message: "duplicate"}, Conflict},
		{&mysql.MySQLError{Number: mysqlerr.ER_DATA_TOO_LONG, Message: "too long"}, ValidationError},
		{&mysql.MySQLError{Number: mysqlerr.ER_LOCK_DEADLOCK, Message: "deadlock"}, Unexpected},
		{fmt.Errorf("connection refused"), Unexpected},
	}
	for _, tt := range tests {
		got := FromStorage(tt.err, "deployment")
		assert.Equal(t, tt.want, got.Kind, "for %v", tt.err)
	}
}

func TestKindOf(t *testing.T) {
	err := Newf(InvalidState, "deployment %d is not under review", 3)
	assert.Equal(t, InvalidState, KindOf(fmt.Errorf("wrap: %w", err)))
	assert.True(t, IsKind(err, InvalidState))
	assert.Equal(t, Unexpected, KindOf(fmt.Errorf("plain")))
}
