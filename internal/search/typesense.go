package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/typesense/typesense-go/typesense"
	"github.com/typesense/typesense-go/typesense/api"
	"github.com/typesense/typesense-go/typesense/api/pointer"
)

// Typesense implements Engine against a Typesense cluster.
type Typesense struct {
	client *typesense.Client
}

func NewTypesense(apiKey, url string) *Typesense {
	client := typesense.NewClient(
		typesense.WithServer(url),
		typesense.WithAPIKey(apiKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)
	return &Typesense{client: client}
}

func (t *Typesense) Upsert(ctx context.Context, collection string, document any) error {
	_, err := t.client.Collection(collection).Documents().Upsert(ctx, document)
	if err != nil {
		// Wrap errors so the caller knows it came from the search layer
		return fmt.Errorf("typesense upsert failed: %w", err)
	}
	return nil
}

func (t *Typesense) Delete(ctx context.Context, collection string, id string) error {
	_, err := t.client.Collection(collection).Document(id).Delete(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("typesense delete failed: %w", err)
	}
	return nil
}

func (t *Typesense) BulkUpsert(ctx context.Context, collection string, documents []any) error {
	if len(documents) == 0 {
		return nil
	}

	params := &api.ImportDocumentsParams{
		Action:    pointer.String("upsert"),
		BatchSize: pointer.Int(len(documents)),
	}
	responses, err := t.client.Collection(collection).Documents().Import(ctx, documents, params)
	if err != nil {
		return fmt.Errorf("typesense bulk upsert failed: %w", err)
	}

	// Import reports per-item outcomes with a 200; a rejected item
	// fails the whole call.
	for _, resp := range responses {
		if !resp.Success {
			return fmt.Errorf("typesense bulk upsert rejected a document: %s", resp.Error)
		}
	}
	return nil
}

func (t *Typesense) BulkDelete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	filter := fmt.Sprintf("id: [%s]", strings.Join(ids, ", "))
	params := &api.DeleteDocumentsParams{
		FilterBy:  pointer.String(filter),
		BatchSize: pointer.Int(len(ids)),
	}
	_, err := t.client.Collection(collection).Documents().Delete(ctx, params)
	if err != nil {
		return fmt.Errorf("typesense bulk delete failed: %w", err)
	}
	return nil
}

func (t *Typesense) CreateCollection(ctx context.Context, name string, schema *Schema) error {
	_, err := t.client.Collections().Create(ctx, collectionSchema(name, schema))
	if err != nil {
		return fmt.Errorf("typesense create collection failed: %w", err)
	}
	return nil
}

func (t *Typesense) DropCollection(ctx context.Context, name string) error {
	_, err := t.client.Collection(name).Delete(ctx)
	if err != nil {
		return fmt.Errorf("typesense drop collection failed: %w", err)
	}
	return nil
}

func (t *Typesense) UpsertAlias(ctx context.Context, alias string, collection string) error {
	// A single alias upsert both detaches the alias from its previous
	// collection and attaches it to the new one; there is no window
	// where the alias resolves to nothing.
	_, err := t.client.Aliases().Upsert(ctx, alias, &api.CollectionAliasSchema{
		CollectionName: collection,
	})
	if err != nil {
		return fmt.Errorf("typesense alias upsert failed: %w", err)
	}
	return nil
}

func (t *Typesense) ResolveAlias(ctx context.Context, alias string) (string, error) {
	resp, err := t.client.Alias(alias).Retrieve(ctx)
	if err != nil {
		if isNotFound(err) {
			return "", ErrAliasNotFound
		}
		return "", fmt.Errorf("typesense alias retrieve failed: %w", err)
	}
	return resp.CollectionName, nil
}

func (t *Typesense) AliasExists(ctx context.Context, alias string) (bool, error) {
	_, err := t.ResolveAlias(ctx, alias)
	if errors.Is(err, ErrAliasNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (t *Typesense) Get(ctx context.Context, collection string, id string) (any, bool, error) {
	document, err := t.client.Collection(collection).Document(id).Retrieve(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("typesense get failed: %w", err)
	}
	return document, true, nil
}

func (t *Typesense) Count(ctx context.Context, collection string) (int64, error) {
	resp, err := t.client.Collection(collection).Retrieve(ctx)
	if err != nil {
		return 0, fmt.Errorf("typesense count failed: %w", err)
	}
	return *resp.NumDocuments, nil
}

func (t *Typesense) HealthCheck(ctx context.Context) error {
	isHealthy, err := t.client.Health(ctx, time.Second*5)
	if err != nil {
		return fmt.Errorf("typesense health check failed: %w", err)
	}
	if !isHealthy {
		return fmt.Errorf("typesense is unhealthy")
	}
	return nil
}

func (t *Typesense) Close() error {
	// Typesense client does not require explicit closure
	return nil
}

// collectionSchema maps our Schema onto the Typesense body. An empty
// schema turns on automatic field detection.
func collectionSchema(name string, schema *Schema) *api.CollectionSchema {
	if schema == nil || len(schema.Fields) == 0 {
		return &api.CollectionSchema{
			Name:   name,
			Fields: []api.Field{{Name: ".*", Type: "auto"}},
		}
	}

	fields := make([]api.Field, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		field := api.Field{Name: f.Name, Type: f.Type}
		if f.Facet {
			field.Facet = pointer.True()
		}
		if f.Sort {
			field.Sort = pointer.True()
		}
		fields = append(fields, field)
	}

	out := &api.CollectionSchema{Name: name, Fields: fields}
	if schema.DefaultSortingField != "" {
		out.DefaultSortingField = pointer.String(schema.DefaultSortingField)
	}
	return out
}

func isNotFound(err error) bool {
	var httpErr *typesense.HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound
}
