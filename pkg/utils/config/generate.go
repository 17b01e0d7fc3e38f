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

package config

import (
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// GenerateConfig prints a yaml config template for the given options struct,
// using struct json tags as keys and description tags as head comments.
func GenerateConfig(opt interface{}) {
	root := getYamlNode(opt)
	o, e := yaml.Marshal(root)
	if e != nil {
		panic(e)
	}
	fmt.Println(string(o))
}

func getYamlNode(v interface{}) *yaml.Node {
	node := &yaml.Node{}
	vv := reflect.ValueOf(v)
	switch vv.Kind() {
	case reflect.Ptr:
		node = getYamlNode(vv.Elem().Interface())
	case reflect.Map:
		node.Kind = yaml.MappingNode
		nodes := []*yaml.Node{}
		for _, k := range vv.MapKeys() {
			nodes = append(nodes, &yaml.Node{
				Kind:  yaml.ScalarNode,
				Value: k.String(),
			})
			nodes = append(nodes, getYamlNode(vv.MapIndex(k).Interface()))
		}
		node.Content = nodes
	case reflect.Array, reflect.Slice:
		nodes := []*yaml.Node{}
		for idx := 0; idx < vv.Len(); idx++ {
			nodes = append(nodes, getYamlNode(vv.Index(idx).Interface()))
		}
		node.Kind = yaml.SequenceNode
		node.Content = nodes
	case reflect.Struct:
		node.Kind = yaml.MappingNode
		nodes := []*yaml.Node{}
		t := vv.Type()
		for idx := 0; idx < t.NumField(); idx++ {
			field := t.Field(idx)
			if !vv.Field(idx).CanInterface() {
				continue
			}
			fieldname := strings.Split(field.Tag.Get("json"), ",")[0]
			if fieldname == "" {
				fieldname = strings.ToLower(field.Name)
			}
			keynode := &yaml.Node{
				Kind:        yaml.ScalarNode,
				Value:       fieldname,
				HeadComment: field.Tag.Get("description"),
			}
			nodes = append(nodes, keynode, getYamlNode(vv.Field(idx).Interface()))
		}
		node.Content = nodes
	default:
		node.Kind = yaml.ScalarNode
		node.Value = fmt.Sprintf("%v", vv.Interface())
	}
	return node
}
