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
	"regexp"

	"github.com/go-playground/validator/v10"
)

// appNameRegexp is the application-name grammar. The name becomes the
// kubernetes namespace of the application, so it is restricted to namespace
// compatible names.
var appNameRegexp = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

var instance *Validator

func init() {
	v, err := NewValidator()
	if err != nil {
		panic(err)
	}
	instance = v
}

func Get() *Validator {
	return instance
}

type Validator struct {
	Validator *validator.Validate
}

func NewValidator() (*Validator, error) {
	vali := validator.New()
	v := &Validator{Validator: vali}
	if err := vali.RegisterValidation("appname", appname); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Validator) Struct(obj interface{}) error {
	return v.Validator.Struct(obj)
}

func appname(fl validator.FieldLevel) bool {
	return appNameRegexp.MatchString(fl.Field().String())
}

// AppName validates a bare application name outside struct binding.
func AppName(name string) bool {
	return appNameRegexp.MatchString(name)
}
