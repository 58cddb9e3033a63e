package database

import (
	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

func component(name string, cents int64) models.Component {
	return models.Component{Name: name, PriceCents: cents}
}

// SeedCatalog fills an empty catalog with a small demo menu. It does nothing
// when any base already exists.
func SeedCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Base{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Debug("Catalog already populated, skipping seed")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		bases := []models.Base{
			{Component: component("Classic", 1000)},
			{Component: component("Thin & Crispy", 1000)},
			{Component: component("Gluten Free", 1200)},
		}
		sauces := []models.Sauce{
			{Component: component("Tomato", 150)},
			{Component: component("BBQ", 150)},
			{Component: component("Garlic", 200)},
		}
		toppings := []models.Topping{
			{Component: component("Mozzarella", 150)},
			{Component: component("Mushroom", 150)},
			{Component: component("Olive", 150)},
			{Component: component("Pepperoni", 200)},
			{Component: component("Bacon", 250)},
			{Component: component("Pineapple", 150)},
			{Component: component("Ham", 200)},
		}
		if err := tx.Create(&bases).Error; err != nil {
			return err
		}
		if err := tx.Create(&sauces).Error; err != nil {
			return err
		}
		if err := tx.Create(&toppings).Error; err != nil {
			return err
		}

		byName := make(map[string]int, len(toppings))
		for _, t := range toppings {
			byName[t.Name] = t.ID
		}
		ids := func(names ...string) []int {
			out := make([]int, 0, len(names))
			for _, n := range names {
				out = append(out, byName[n])
			}
			return out
		}

		pizzas := []models.Pizza{
			{
				Name:        "Margherita",
				Description: strPtr("Tomato, mozzarella and a classic base."),
				BaseID:      bases[0].ID,
				SauceID:     sauces[0].ID,
				ToppingIDs:  ids("Mozzarella"),
				PriceCents:  1200,
			},
			{
				Name:        "Pepperoni",
				Description: strPtr("Loaded with pepperoni and mozzarella."),
				BaseID:      bases[0].ID,
				SauceID:     sauces[0].ID,
				ToppingIDs:  ids("Mozzarella", "Pepperoni"),
				PriceCents:  1500,
			},
			{
				Name:        "Forest",
				Description: strPtr("Mushrooms and olives on a thin base."),
				BaseID:      bases[1].ID,
				SauceID:     sauces[2].ID,
				ToppingIDs:  ids("Mushroom", "Olive"),
				PriceCents:  1400,
			},
			{
				Name:        "Hawaiian",
				Description: strPtr("Ham and pineapple with BBQ sauce."),
				BaseID:      bases[0].ID,
				SauceID:     sauces[1].ID,
				ToppingIDs:  ids("Mozzarella", "Ham", "Pineapple"),
				PriceCents:  1600,
			},
		}
		if err := tx.Create(&pizzas).Error; err != nil {
			return err
		}

		log.WithFields(logrus.Fields{
			"bases":    len(bases),
			"sauces":   len(sauces),
			"toppings": len(toppings),
			"pizzas":   len(pizzas),
		}).Info("Demo catalog seeded")
		return nil
	})
}
