package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("snapshots")
		collection.Fields.Add(
			&core.TextField{Name: "gameId", Required: true},
			&core.JSONField{Name: "state", Required: true},
			&core.NumberField{Name: "version", Required: true},
			&core.TextField{Name: "status", Required: true},
		)
		collection.AddIndex("idx_snapshots_gameId", true, "gameId", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("snapshots")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
