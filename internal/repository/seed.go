package repository

import (
	"github.com/kutbudev/ctdp/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnsureDefaults makes sure the baseline rows exist: the settings singleton,
// the starter contexts (only when the table is empty), and the common tags.
// Safe to call on every startup.
func EnsureDefaults(db *gorm.DB) error {
	var settings models.Settings
	err := db.Where("id = ?", models.DefaultSettingsID).
		Attrs(models.DefaultSettings()).
		FirstOrCreate(&settings).Error
	if err != nil {
		return err
	}

	var contextCount int64
	if err := db.Model(&models.SacredContext{}).Count(&contextCount).Error; err != nil {
		return err
	}
	if contextCount == 0 {
		for _, ctx := range defaultContexts() {
			if err := db.Create(ctx).Error; err != nil {
				return err
			}
		}
	}

	for _, tag := range defaultTags() {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"color"}),
		}).Create(tag).Error
		if err != nil {
			return err
		}
	}

	return nil
}

func defaultContexts() []*models.SacredContext {
	specs := []struct {
		id, name, description, icon, color string
		rules                              models.ContextRules
		env                                models.ContextEnvironment
	}{
		{
			id: "deep-work", name: "Deep Work",
			description: "Tasks demanding full concentration: programming, writing, research",
			icon:        "🧠", color: "#3B82F6",
			rules: models.ContextRules{
				Items: []string{
					"Close all social apps",
					"Phone on silent, face down",
					"Single task only",
				},
				DefaultDuration: 60,
				TriggerAction:   "Take three deep breaths",
				PresetTime:      15,
			},
			env: models.ContextEnvironment{StrictMode: true},
		},
		{
			id: "study", name: "Study",
			description: "Reading, learning new material, coursework",
			icon:        "📚", color: "#10B981",
			rules: models.ContextRules{
				Items: []string{
					"Study materials ready",
					"Find a quiet spot",
					"Take notes as you go",
				},
				DefaultDuration: 45,
				TriggerAction:   "Clear the desk",
				PresetTime:      10,
			},
		},
		{
			id: "fitness", name: "Fitness",
			description: "Strength training, cardio, conditioning",
			icon:        "💪", color: "#F59E0B",
			rules: models.ContextRules{
				Items: []string{
					"Warm up first",
					"Have water within reach",
					"Stay within your limits",
				},
				DefaultDuration: 30,
				TriggerAction:   "Change into workout clothes",
				PresetTime:      5,
			},
		},
	}

	contexts := make([]*models.SacredContext, 0, len(specs))
	for _, s := range specs {
		rules, _ := models.MarshalJSONValue(s.rules)
		env, _ := models.MarshalJSONValue(s.env)
		contexts = append(contexts, &models.SacredContext{
			ID:          s.id,
			Name:        s.name,
			Description: s.description,
			Icon:        s.icon,
			Color:       s.color,
			Rules:       rules,
			Environment: env,
		})
	}
	return contexts
}

func defaultTags() []*models.Tag {
	return []*models.Tag{
		{Name: "coding", Color: "#3B82F6"},
		{Name: "writing", Color: "#10B981"},
		{Name: "reading", Color: "#8B5CF6"},
		{Name: "research", Color: "#F59E0B"},
		{Name: "learning", Color: "#EF4444"},
		{Name: "workout", Color: "#F97316"},
		{Name: "meditation", Color: "#06B6D4"},
		{Name: "review", Color: "#84CC16"},
	}
}
