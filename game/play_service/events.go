package playservice

import (
	"github.com/beka-birhanu/vinom-haunt/game"
	"github.com/beka-birhanu/vinom-haunt/game/collision"
)

// ToEventBatch flattens a resolution result into its wire form, keeping event order.
func ToEventBatch(res collision.Result, version int64) game.EventBatch {
	batch := game.EventBatch{
		Version:    version,
		Collisions: make([]game.Event, 0, len(res.Collisions)),
		Updates:    make([]game.Event, 0, len(res.Updates)),
	}

	for _, c := range res.Collisions {
		e := game.Event{Kind: string(c.Kind())}
		switch v := c.(type) {
		case collision.OverlapCollision:
			e.PlayerID, e.OtherID, e.X, e.Y = v.PlayerID, v.OtherPlayerID, v.X, v.Y
		case collision.CoinCollision:
			e.PlayerID, e.EntityID, e.EntityType = v.PlayerID, v.CoinID, v.CoinType
			e.X, e.Y, e.Value = v.X, v.Y, v.Value
			e.Priority, e.Contested, e.Contestants = v.Priority, v.Contested, v.Contestants
		case collision.EnemyCollision:
			e.PlayerID, e.EntityID, e.X, e.Y, e.Damage = v.PlayerID, v.EnemyID, v.X, v.Y, v.Damage
		case collision.BombCollision:
			e.PlayerID, e.EntityID, e.X, e.Y, e.Damage = v.PlayerID, v.BombID, v.X, v.Y, v.Damage
		}
		batch.Collisions = append(batch.Collisions, e)
	}

	for _, u := range res.Updates {
		e := game.Event{Kind: string(u.Kind())}
		switch v := u.(type) {
		case collision.CoinCollected:
			e.PlayerID, e.EntityID, e.EntityType, e.Value = v.PlayerID, v.CoinID, v.CoinType, v.Value
		case collision.BombExploded:
			e.PlayerID, e.EntityID, e.X, e.Y = v.TriggeredBy, v.BombID, v.X, v.Y
		}
		batch.Updates = append(batch.Updates, e)
	}
	return batch
}
