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

package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppName(t *testing.T) {
	a := assert.New(t)
	a.True(AppName("soomsil"))
	a.True(AppName("soomsil-v2"))
	a.True(AppName("a1"))
	a.False(AppName(""))
	a.False(AppName("Soomsil"))
	a.False(AppName("1soomsil"))
	a.False(AppName("-soomsil"))
	a.False(AppName("soomsil_v2"))
}
