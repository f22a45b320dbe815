package catalog

import (
	"context"
	"encoding/json"

	"lookbook/internal/models"
	"lookbook/internal/store"
)

func load[T any](ctx context.Context, docs store.KeyValueStore, collection models.Collection, id string) (T, error) {
	var out T
	if err := store.GetJSON(ctx, docs, collection, id, &out); err != nil {
		return out, err
	}
	return out, nil
}

func decode[T any](body []byte) (T, error) {
	var out T
	err := json.Unmarshal(body, &out)
	return out, err
}
