/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"strings"

	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/builtin/aspect"
	"github.com/spf13/viper"
)

// aspectDefaults sets the configuration defaults of the built-in aspects.
func aspectDefaults(v *viper.Viper) {
	v.SetDefault("aspects", "")
	v.SetDefault("limiter.max", 100)
	v.SetDefault("fallback.errorCountLimit", 3)
	v.SetDefault("fallback.limitDuration", "10s")
}

// buildAspects creates the named built-in aspects, configured from the viper keys under their type.
func buildAspects(v *viper.Viper, logger types.Logger) ([]types.Aspect, error) {
	var aspects []types.Aspect
	settings := v.AllSettings()
	for _, name := range splitList(v.GetString("aspects")) {
		configuration, _ := settings[name].(map[string]interface{})
		instance, err := aspect.Registry.New(name, configuration)
		if err != nil {
			return nil, err
		}
		if debug, ok := instance.(*aspect.Debug); ok {
			debug.Logger = logger
		}
		if script, ok := instance.(*aspect.ScriptAspect); ok {
			script.Logger = logger
		}
		aspects = append(aspects, instance)
	}
	return aspects, nil
}

func splitList(s string) []string {
	var list []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
