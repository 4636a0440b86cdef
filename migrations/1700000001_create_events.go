package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("events")
		collection.Fields.Add(
			&core.TextField{Name: "gameId", Required: true},
			&core.TextField{Name: "type", Required: true},
			&core.JSONField{Name: "payload"},
		)
		collection.AddIndex("idx_events_gameId", false, "gameId", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
