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

	"github.com/VividCortex/mysqlerr"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// FromCluster classifies an apiserver error into one of the stable kinds.
func FromCluster(err error, message string) *Error {
	switch {
	case apierrors.IsNotFound(err):
		return Wrap(NotFound, err, message)
	case apierrors.IsForbidden(err) || apierrors.IsUnauthorized(err):
		return Wrap(PermissionDenied, err, message)
	case apierrors.IsConflict(err) || apierrors.IsAlreadyExists(err):
		return Wrap(Conflict, err, message)
	case apierrors.IsInvalid(err) || apierrors.IsBadRequest(err):
		return Wrap(ValidationError, err, message)
	case apierrors.IsTimeout(err) || apierrors.IsServerTimeout(err) ||
		Is(err, context.DeadlineExceeded):
		return Wrap(Timeout, err, message)
	default:
		return Wrap(Unexpected, err, message)
	}
}

// FromStorage classifies a persistence error into one of the stable kinds.
func FromStorage(err error, message string) *Error {
	if Is(err, gorm.ErrRecordNotFound) {
		return Wrap(NotFound, err, message)
	}
	me := &mysql.MySQLError{}
	if As(err, &me) {
		switch me.Number {
		case mysqlerr.ER_DUP_ENTRY:
			return Wrap(Conflict, err, message)
		case mysqlerr.ER_DATA_TOO_LONG, mysqlerr.ER_TRUNCATED_WRONG_VALUE:
			return Wrap(ValidationError, err, message)
		}
	}
	return Wrap(Unexpected, err, message)
}
