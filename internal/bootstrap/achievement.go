// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"fmt"

	"github.com/msksk8cool/sk8school-bot/pkg/achievement"
	achievementBuiltin "github.com/msksk8cool/sk8school-bot/pkg/achievement/builtin"
	"github.com/msksk8cool/sk8school-bot/pkg/catalog"
	"github.com/sirupsen/logrus"
)

// InitAchievementEngine registers the builtin rule types and builds an engine
// from the catalog's achievement definitions.
//
// To add a new achievement kind, implement achievement.Rule in
// pkg/achievement/builtin, register its type in builtin/init.go and declare
// it under achievements in config/catalog.yaml.
func InitAchievementEngine(cat *catalog.Catalog) (*achievement.Engine, error) {
	achievementBuiltin.RegisterRuleTypes()

	for _, a := range cat.Achievements {
		if !achievement.IsRegisteredType(a.Type) {
			return nil, fmt.Errorf("achievement %s has unknown type %s", a.ID, a.Type)
		}
	}

	registry := achievement.NewRegistry()
	if err := achievement.RegisterRules(registry, ConvertAchievementConfigs(cat.Achievements)); err != nil {
		return nil, fmt.Errorf("failed to register achievements: %w", err)
	}

	engine := achievement.NewEngine(registry)
	logrus.Infof("initialized achievement engine with %d achievements", engine.Total())

	return engine, nil
}

// ConvertAchievementConfigs maps catalog entries to rule configs.
func ConvertAchievementConfigs(configs []catalog.AchievementConfig) []achievement.RuleConfig {
	result := make([]achievement.RuleConfig, len(configs))
	for i, ac := range configs {
		result[i] = achievement.RuleConfig{
			ID:          ac.ID,
			Name:        ac.Name,
			Type:        ac.Type,
			Description: ac.Description,
			Icon:        ac.Icon,
			Enabled:     ac.IsEnabled(),
			Parameters:  ac.Parameters,
		}
	}
	return result
}
