package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/omhauth/internal/server/models"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/repomanager"
)

// ScopeValidator decides whether a scope names a known data schema.
type ScopeValidator interface {
	ValidateScope(ctx context.Context, scope string) (bool, error)
}

// SchemaRegistry validates scopes against the registered schemas. A scope
// is the schema ID; any registered version makes it valid.
type SchemaRegistry struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewSchemaRegistry(db *sql.DB, m repomanager.RepositoryManager) *SchemaRegistry {
	return &SchemaRegistry{db: db, repomanager: m}
}

func (r *SchemaRegistry) ValidateScope(ctx context.Context, scope string) (bool, error) {
	if strings.TrimSpace(scope) == "" {
		return false, nil
	}
	versions, err := r.repomanager.Schemas(r.db).Versions(ctx, scope)
	if err != nil {
		return false, storeError("listing schema versions", err)
	}
	return len(versions) > 0, nil
}

// Register adds a schema version.
func (r *SchemaRegistry) Register(ctx context.Context, id string, version int64) error {
	if strings.TrimSpace(id) == "" {
		return reject(ReasonInvalidRequest, "schema id is required")
	}
	if err := r.repomanager.Schemas(r.db).Create(ctx, &models.Schema{ID: id, Version: version}); err != nil {
		return storeError("registering schema", err)
	}
	return nil
}
